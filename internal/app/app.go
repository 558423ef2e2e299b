package app

import (
	"context"

	"github.com/Adda-Baaj/fdp-http-api/internal/config"
	"github.com/Adda-Baaj/fdp-http-api/internal/domain"
	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
	"github.com/Adda-Baaj/fdp-http-api/internal/tunnel"
	"github.com/Adda-Baaj/fdp-http-api/pkg/fdp"
	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
)

// API is the subset of the FDP client the programs drive.
type API interface {
	ListServiceOnboarding(ctx context.Context, f fdp.OnboardingFilter) (int, fdp.Body, error)
	RequestServiceOnboarding(ctx context.Context, req fdp.OnboardingRequest) (int, string, error)
	ApproveServiceOnboarding(ctx context.Context, a fdp.OnboardingApproval) (int, string, error)
	DeleteTableDefinition(ctx context.Context, ref fdp.TableRef) (int, string, error)
	CreateTableDefinition(ctx context.Context, def fdp.TableDefinition) (int, string, error)
	PopulateDataForTableDefinition(ctx context.Context, ref fdp.TableRef, queryParams map[string]any, noTableTruncating *bool) (int, string, error)
	QueryData(ctx context.Context, req fdp.QueryDataRequest) (int, fdp.Body, error)
}

// Preparer makes the FDP endpoint reachable before any call is made.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// TableSource yields certified tables with their statement templates loaded.
type TableSource interface {
	Load(names ...string) ([]domain.CertifiedTable, error)
}

type noopPreparer struct{}

func (noopPreparer) Prepare(context.Context) error { return nil }

// newClient builds the FDP client described by cfg.
func newClient(cfg *config.Config, log logger.Logger) *fdp.Client {
	return fdp.New(cfg.UserName, cfg.Host, cfg.Port,
		fdp.WithHTTPClient(httpclient.NewRestyClient(cfg.HTTPTimeout)),
		fdp.WithSource(cfg.Source),
		fdp.WithLogger(log),
	)
}

// newPreparer returns the tunnel helper, or a no-op when tunnelling is disabled.
func newPreparer(cfg *config.Config, log logger.Logger) Preparer {
	if !cfg.TunnelEnabled {
		return noopPreparer{}
	}
	return tunnel.New(tunnel.Config{
		JumpHost:   cfg.TunnelJumpHost,
		LocalPort:  cfg.Port,
		RemoteHost: cfg.TunnelRemoteHost,
		RemotePort: cfg.TunnelRemotePort,
	}, nil, nil, log)
}
