package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Adda-Baaj/fdp-http-api/internal/config"
	"github.com/Adda-Baaj/fdp-http-api/internal/domain"
	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
	"github.com/Adda-Baaj/fdp-http-api/internal/resources"
	"github.com/Adda-Baaj/fdp-http-api/internal/storage"
	"github.com/Adda-Baaj/fdp-http-api/pkg/fdp"
)

// RecreateOptions selects what a recreate run does.
type RecreateOptions struct {
	Tables         []string
	Force          bool
	SkipOnboarding bool
}

// Recreator onboards the owning service and recreates its certified tables
// from local statement templates.
type Recreator struct {
	api       API
	tunnel    Preparer
	tables    TableSource
	journal   storage.Journal
	onboarder *Onboarder
	log       logger.Logger
	service   string
	owners    []string
}

// NewRecreator builds a recreate runtime from config.
func NewRecreator(cfg *config.Config, log logger.Logger) (*Recreator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)

	manifest, err := resources.LoadManifest(cfg.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("load tables manifest: %w", err)
	}
	log.InfoObj("tables manifest loaded", "tables_meta", map[string]any{
		"path":  cfg.TablesFile,
		"count": len(manifest.Entries()),
	})

	journal, err := storage.NewJournal(cfg.StorageType, cfg.BBoltPath, storage.Options{EntryTTL: cfg.StorageTTL})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":        cfg.StorageType,
		"path":        cfg.BBoltPath,
		"ttl_seconds": int(cfg.StorageTTL.Seconds()),
	})

	client := newClient(cfg, log)
	owners := cfg.TableOwners
	if len(owners) == 0 {
		owners = []string{client.Email()}
	}

	onboarder := NewOnboarder(client, log, cfg.ServiceName, cfg.OnboardingRequester, cfg.OnboardingDescription)
	return newRecreator(client, newPreparer(cfg, log), manifest, journal, onboarder, log, cfg.ServiceName, owners), nil
}

func newRecreator(api API, prep Preparer, tables TableSource, journal storage.Journal, onboarder *Onboarder, log logger.Logger, service string, owners []string) *Recreator {
	if prep == nil {
		prep = noopPreparer{}
	}
	if journal == nil {
		journal, _ = storage.NewJournal("none", "", storage.Options{})
	}
	log = logger.Ensure(log)
	return &Recreator{
		api:       api,
		tunnel:    prep,
		tables:    tables,
		journal:   journal,
		onboarder: onboarder,
		log:       log,
		service:   service,
		owners:    owners,
	}
}

// Run prepares the tunnel, onboards the service and recreates the selected tables.
func (r *Recreator) Run(ctx context.Context, opts RecreateOptions) error {
	if r == nil || r.api == nil || r.tables == nil {
		return fmt.Errorf("recreator is not initialized")
	}
	defer r.closeJournal()

	if err := r.tunnel.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare environment: %w", err)
	}

	if !opts.SkipOnboarding && r.onboarder != nil {
		if _, err := r.onboarder.Ensure(ctx); err != nil {
			return err
		}
	}

	tables, err := r.tables.Load(opts.Tables...)
	if err != nil {
		return fmt.Errorf("load table resources: %w", err)
	}
	return r.Recreate(ctx, tables, opts.Force)
}

// Recreate deletes, creates and populates every table, collecting failures.
func (r *Recreator) Recreate(ctx context.Context, tables []domain.CertifiedTable, force bool) error {
	var errs []error
	for _, t := range tables {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if err := r.recreateOne(ctx, t, force); err != nil {
			errs = append(errs, err)
			r.log.ErrorObj("table recreate failed", "table_error", map[string]any{
				"table_name": t.Name,
				"error":      err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

func (r *Recreator) recreateOne(ctx context.Context, t domain.CertifiedTable, force bool) error {
	key := t.Key(r.service)
	fingerprint := t.Fingerprint(r.service, r.owners)
	if !force {
		seen, err := r.journal.Seen(key, fingerprint)
		if err != nil {
			r.log.WarnObj("journal lookup failed", "journal_error", map[string]any{
				"table_name": t.Name,
				"error":      err.Error(),
			})
		} else if seen {
			r.log.InfoObj("table unchanged; skipping", "table_name", t.Name)
			return nil
		}
	}

	start := time.Now()
	ref := fdp.TableByName(r.service, t.Name)

	status, text, err := r.api.DeleteTableDefinition(ctx, ref)
	if err != nil {
		return fmt.Errorf("delete table definition %s: %w", t.Name, err)
	}
	r.logStep("prior table definition deleted", t.Name, status, text)
	if err := r.journal.Forget(key); err != nil {
		r.log.WarnObj("journal forget failed", "journal_error", map[string]any{
			"table_name": t.Name,
			"error":      err.Error(),
		})
	}

	def := fdp.NewTableDefinition(r.service, t.Name, t.Description, r.owners, t.CreateTableStatement)
	def.FullQueryStatement = &fdp.QueryStatement{
		QueryType:    t.QueryType,
		DataQuery:    t.QueryStatement,
		SQLDataTable: t.Name,
	}
	def.IncrementalQueryStatement = nil

	status, text, err = r.api.CreateTableDefinition(ctx, def)
	if err != nil {
		return fmt.Errorf("create table definition %s: %w", t.Name, err)
	}
	r.logStep("table definition created", t.Name, status, text)
	if status != http.StatusOK {
		return fmt.Errorf("create table definition %s: status %d: %s", t.Name, status, snippet(text))
	}

	status, text, err = r.api.PopulateDataForTableDefinition(ctx, ref, nil, nil)
	switch {
	case err != nil:
		// Full queries can outlast the HTTP call; the service keeps populating.
		r.log.WarnObj("populate request did not complete", "populate_error", map[string]any{
			"table_name": t.Name,
			"error":      err.Error(),
		})
	case status != http.StatusOK:
		r.logStep("table population rejected", t.Name, status, text)
		return fmt.Errorf("populate table %s: status %d: %s", t.Name, status, snippet(text))
	default:
		r.logStep("table population started", t.Name, status, text)
	}

	if err := r.journal.Mark(key, fingerprint); err != nil {
		r.log.WarnObj("journal mark failed", "journal_error", map[string]any{
			"table_name": t.Name,
			"error":      err.Error(),
		})
	}
	r.log.InfoObj("table recreated", "table_result", map[string]any{
		"table_name": t.Name,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (r *Recreator) logStep(msg, table string, status int, text string) {
	r.log.InfoObj(msg, "fdp_response", map[string]any{
		"table_name": table,
		"status":     status,
		"text":       snippet(text),
	})
}

func (r *Recreator) closeJournal() {
	if r.journal == nil {
		return
	}
	if err := r.journal.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}

// snippet trims text for log fields without splitting a UTF-8 sequence.
func snippet(text string) string {
	const maxLen = 512
	s := strings.TrimSpace(text)
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
