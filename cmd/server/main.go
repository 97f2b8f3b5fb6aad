package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vncsmyrnk/ballot/internal/adapters/handler/http"
	"github.com/vncsmyrnk/ballot/internal/config"
	"github.com/vncsmyrnk/ballot/internal/core/services"
	"github.com/vncsmyrnk/ballot/internal/logging"
	"github.com/vncsmyrnk/ballot/internal/storage"
)

func main() {
	var (
		addr   string
		driver string
	)

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the ballot HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if driver != "" {
				cfg.StorageDriver = driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return run(cmd.Context(), cfg)
		},
	}
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ADDR")
	rootCmd.Flags().StringVar(&driver, "storage", "", "storage driver (postgres or sqlite), overrides STORAGE_DRIVER")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(parent context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer stores.Close()

	tokenizer, err := services.NewVoterTokenizer([]byte(cfg.VoterTokenKey))
	if err != nil {
		return err
	}
	if cfg.VoterTokenKey == "" {
		logger.Warn().Msg("VOTER_TOKEN_KEY is empty, voter tokens are unkeyed digests")
	}
	if cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET is empty, admin routes reject every request")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(reg)

	recorder := services.NewAuditRecorder(stores.Audit, logger, metrics, cfg.AuditBufferSize)

	eligibility := services.NewEligibilityChecker(stores.Elections, stores.Candidates, nil)
	voteService := services.NewVoteService(
		eligibility,
		stores.UnitOfWork,
		stores.Ledger,
		stores.Votes,
		recorder,
		tokenizer,
		services.WithStorageTimeout(cfg.StorageTimeout),
		services.WithOneVotePerVoter(cfg.OneVotePerVoter),
		services.WithLogger(logger),
		services.WithMetrics(metrics),
	)
	resultService := services.NewResultService(stores.Elections, stores.Candidates, stores.Votes, logger)
	electionService := services.NewElectionService(stores.Elections, stores.Candidates, recorder)
	auditService := services.NewAuditService(stores.Audit)

	handler := http.NewHandler(logger, http.Handlers{
		Votes:     http.NewVoteHandler(voteService),
		Elections: http.NewElectionHandler(electionService, resultService),
		Admin:     http.NewAdminHandler(electionService, auditService),
		Auth:      http.NewAdminAuth(cfg.JWTSecret),
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:      stores.Ping,
	})
	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("storage", cfg.StorageDriver).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	logger.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("audit recorder did not drain")
	}
	return nil
}
