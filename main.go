package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnldd/orbflow/engine"
	"github.com/dnldd/orbflow/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/cobra"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt, syscall.SIGTERM}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)
	defer signal.Stop(interrupt)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

// newLogger creates the service logger at the configured level.
func newLogger(cfg *Config) *zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := log.Level(level).With().Str("service", "orbflow").Logger()
	return &logger
}

// newRootCmd creates the orbflow command tree.
func newRootCmd() (*cobra.Command, error) {
	cfg := DefaultConfig()

	rootCmd := &cobra.Command{
		Use:           "orbflow",
		Short:         "orbflow scans a watchlist for opening range breakouts confirmed by options flow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}

	err := loadConfig(&cfg, rootCmd.PersistentFlags(), "")
	if err != nil {
		return nil, err
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Scan the watchlist on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), &cfg)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "scan",
		Short: "Refresh the watchlist and run a single scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanOnce(cmd.Context(), &cfg)
		},
	})

	return rootCmd, nil
}

// run runs the service until an interrupt signal is received.
func run(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		logger.Info().Msgf("serving metrics on %s", cfg.MetricsAddr)

		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*5)
			defer shutdownCancel()

			err := srv.Shutdown(shutdownCtx)
			if err != nil {
				logger.Error().Err(err).Msg("shutting down metrics server")
			}
		}()
	}

	go handleTermination(ctx, cancel)

	return svc.Run(ctx)
}

// scanOnce refreshes the watchlist and prints the decisions of a single scan.
func scanOnce(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	svc.RefreshWatchlist(ctx)

	report, err := svc.ScanOnce(ctx)
	if err != nil {
		return fmt.Errorf("scanning watchlist: %w", err)
	}

	if report.MarketClosed {
		fmt.Println("market is closed")
		return nil
	}

	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			fmt.Printf("%s: error: %v\n", outcome.Ticker, outcome.Err)
			continue
		}

		fmt.Println(outcome.Decision.String())
	}

	fmt.Printf("%d symbols, %d entries, %d exits, %d errors\n", len(report.Outcomes),
		report.Count(engine.Enter), report.Count(engine.Exit), report.Errors())

	return nil
}

func main() {
	rootCmd, err := newRootCmd()
	if err != nil {
		log.Error().Err(err).Msg("loading config")
		os.Exit(1)
	}

	err = rootCmd.ExecuteContext(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("orbflow")
		os.Exit(1)
	}
}
