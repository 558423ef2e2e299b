package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Adda-Baaj/fdp-http-api/internal/config"
	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
	"github.com/Adda-Baaj/fdp-http-api/pkg/fdp"
)

// Querier runs one query against a certified data table and prints the result.
type Querier struct {
	api     API
	tunnel  Preparer
	out     io.Writer
	log     logger.Logger
	service string
}

// NewQuerier builds a query runtime from config writing results to stdout.
func NewQuerier(cfg *config.Config, log logger.Logger) (*Querier, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	return newQuerier(newClient(cfg, log), newPreparer(cfg, log), os.Stdout, log, cfg.ServiceName), nil
}

func newQuerier(api API, prep Preparer, out io.Writer, log logger.Logger, service string) *Querier {
	if prep == nil {
		prep = noopPreparer{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Querier{api: api, tunnel: prep, out: out, log: logger.Ensure(log), service: service}
}

// Run queries the service's data tables with statement, in format (CSV or JSON).
func (q *Querier) Run(ctx context.Context, statement, format string) error {
	if q == nil || q.api == nil {
		return fmt.Errorf("querier is not initialized")
	}
	if strings.TrimSpace(statement) == "" {
		return fmt.Errorf("query statement is empty")
	}
	format = strings.ToUpper(strings.TrimSpace(format))
	if format == "" {
		format = fdp.FormatCSV
	}

	if err := q.tunnel.Prepare(ctx); err != nil {
		return fmt.Errorf("prepare environment: %w", err)
	}

	status, body, err := q.api.QueryData(ctx, fdp.QueryDataRequest{
		OwningService:  q.service,
		QueryStatement: statement,
		ResponseFormat: format,
	})
	if err != nil {
		return fmt.Errorf("query data: %w", err)
	}
	q.log.InfoObj("query completed", "query_meta", map[string]any{
		"service_name": q.service,
		"status":       status,
		"structured":   body.Structured,
	})

	fmt.Fprintln(q.out, "query results:")
	fmt.Fprintln(q.out, body.Text)
	if status != http.StatusOK {
		return fmt.Errorf("query data: status %d", status)
	}
	return nil
}
