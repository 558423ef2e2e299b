package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/fdp-http-api/internal/app"
	"github.com/Adda-Baaj/fdp-http-api/internal/config"
	"github.com/Adda-Baaj/fdp-http-api/internal/logger"
)

var (
	statement string
	format    string
)

var rootCmd = &cobra.Command{
	Use:   "query-tables",
	Short: "Query the owning service's certified FDP tables",
	Long: `query-tables runs one SQL statement against the service's data tables
and prints the result to stdout. The statement and format default to the
QUERY_STATEMENT and QUERY_FORMAT settings.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&statement, "statement", "s", "", "SQL statement to run")
	rootCmd.Flags().StringVar(&format, "format", "", "Response format: CSV or JSON")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "query-tables failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	log.InfoObj("query-tables starting", "run", map[string]any{
		"run_id": uuid.NewString(),
		"config": cfg,
	})

	if statement == "" {
		statement = cfg.QueryStatement
	}
	if format == "" {
		format = cfg.QueryFormat
	}

	querier, err := app.NewQuerier(cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize querier", "error", err)
		return err
	}

	if err := querier.Run(ctx, statement, format); err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	return nil
}
