package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/saashqdev/foresight/internal/config"
	"github.com/saashqdev/foresight/internal/forecast"
	"github.com/saashqdev/foresight/internal/logging"
	"github.com/saashqdev/foresight/internal/sampler"
	"github.com/saashqdev/foresight/internal/scheduler"
	"github.com/saashqdev/foresight/internal/store"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "foresight",
	Short:   "Foresight - metric forecasting and exhaustion prediction daemon",
	Long:    `Foresight samples host resource utilisation, forecasts metric trends and predicts threshold crossings before they happen`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		runDaemon()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Foresight %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDaemon() {
	// Baseline logger for early startup logs
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "foresight",
	})

	cfg := config.Load()

	// Re-initialize logging with configuration-driven settings
	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "foresight",
	})

	log.Info().Str("entity", cfg.EntityID).Msg("Starting Foresight daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, cfg.MetricsAddr)

	storeCfg := store.DefaultConfig(cfg.DataDir)
	storeCfg.Retention = cfg.Retention
	sampleStore, err := store.New(storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sample store")
	}
	defer sampleStore.Close()

	engineCfg := forecast.DefaultConfig()
	engineCfg.MinimumSamples = cfg.MinimumSamples
	engineCfg.Alpha = cfg.Alpha
	engineCfg.CrossingGate = cfg.CrossingGate
	engineCfg.MaxLookahead = cfg.MaxLookahead
	engineCfg.Lookback = cfg.Lookback

	cache := forecast.NewCache(cfg.CacheTTL)
	engine := forecast.NewEngine(engineCfg, sampleStore, cache)

	hostSampler := sampler.New(cfg.EntityID, "/", sampleStore)

	sweeper := scheduler.New(scheduler.Config{
		Interval: cfg.SweepInterval,
	}, engine, scheduler.LogSink{}, []string{cfg.EntityID})

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return hostSampler.Run(runCtx, cfg.SampleInterval) })
	g.Go(func() error { return sweeper.Run(runCtx) })

	// Shut down on SIGTERM or SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("Shutting down...")
	case <-runCtx.Done():
	}

	cancel()
	g.Wait()

	log.Info().Msg("Daemon stopped")
}
