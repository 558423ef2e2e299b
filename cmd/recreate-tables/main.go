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

var opts app.RecreateOptions

var rootCmd = &cobra.Command{
	Use:   "recreate-tables",
	Short: "Onboard the owning service and recreate its certified FDP tables",
	Long: `recreate-tables deletes, recreates and populates the certified tables
listed in the tables manifest. Tables whose statements have not changed since
the last successful run are skipped unless --force is given.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringSliceVarP(&opts.Tables, "table", "t", nil, "Recreate only the named tables (repeatable)")
	rootCmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Recreate tables even when unchanged")
	rootCmd.Flags().BoolVar(&opts.SkipOnboarding, "skip-onboarding", false, "Do not check or request service onboarding")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "recreate-tables failed: %v\n", err)
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

	log.InfoObj("recreate-tables starting", "run", map[string]any{
		"run_id": uuid.NewString(),
		"config": cfg,
	})

	recreator, err := app.NewRecreator(cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize recreator", "error", err)
		return err
	}

	if err := recreator.Run(ctx, opts); err != nil {
		return fmt.Errorf("recreate run: %w", err)
	}

	log.InfoObj("recreate-tables finished", "tables", opts.Tables)
	return nil
}
