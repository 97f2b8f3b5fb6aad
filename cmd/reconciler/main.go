package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/services"
	"github.com/vncsmyrnk/ballot/internal/logging"
	"github.com/vncsmyrnk/ballot/internal/storage"
)

func main() {
	var (
		backfill  bool
		batchSize int
		timeout   time.Duration
	)

	rootCmd := &cobra.Command{
		Use:          "reconciler",
		Short:        "Flag, and optionally backfill, ledger transactions without a vote record",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogFormat)

			// bound the job so it cannot hang indefinitely
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			stores, err := storage.Open(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer stores.Close()

			tokenizer, err := services.NewVoterTokenizer([]byte(cfg.VoterTokenKey))
			if err != nil {
				return err
			}

			reconciler := services.NewReconcileService(stores.Ledger, stores.Votes, stores.Audit, tokenizer, logger, services.NewMetrics(nil), batchSize)

			logger.Info().Bool("backfill", backfill).Msg("starting reconciliation")
			report, err := reconciler.Reconcile(ctx, backfill)
			if err != nil {
				return err
			}
			if report.Flagged < report.Scanned {
				logger.Warn().Int("unflagged", report.Scanned-report.Flagged).Msg("some orphaned transactions could not be flagged")
			}

			logger.Info().
				Int("scanned", report.Scanned).
				Int("flagged", report.Flagged).
				Int("backfilled", report.Backfilled).
				Msg("reconciliation completed")
			return nil
		},
	}
	rootCmd.Flags().BoolVar(&backfill, "backfill", false, "insert the missing vote record for each orphaned transaction")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", services.DefaultReconcileBatchSize, "maximum transactions examined per run")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "job deadline")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
