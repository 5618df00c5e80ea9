package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/beacon/internal/config"
	"github.com/nextlevelbuilder/beacon/internal/runtime"
	"github.com/nextlevelbuilder/beacon/internal/store"
	"github.com/nextlevelbuilder/beacon/internal/store/pg"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the gateway, topology sync, forwarder, and scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe is the process entry point: load config,
// open the store, assemble the runtime supervisor, start it, and block
// until an interrupt or termination signal arrives.
func runServe() error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if cfg.Database.PostgresDSN == "" {
		return fmt.Errorf("BEACON_POSTGRES_DSN is not set")
	}

	stores, err := pg.NewStores(store.Config{
		PostgresDSN:  cfg.Database.PostgresDSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var tick time.Duration
	if cfg.Scheduler.TickInterval != "" {
		tick, err = time.ParseDuration(cfg.Scheduler.TickInterval)
		if err != nil {
			return fmt.Errorf("parse scheduler.tickInterval: %w", err)
		}
	}

	sup := runtime.New(runtime.Options{
		Token:                       cfg.Discord.Token,
		Stores:                      stores,
		SchedulerTickInterval:       tick,
		DefaultMaxMessagesPerMinute: cfg.Gateway.DefaultMaxMessagesPerMinute,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}

	<-ctx.Done()
	slog.Info("beacon: shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sup.Stop(stopCtx)

	return nil
}
