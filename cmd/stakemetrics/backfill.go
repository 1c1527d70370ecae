package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeMetrics/internal/config"
	"stakeMetrics/internal/poller"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBackfill(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Step == 0 {
		return fmt.Errorf("step must be greater than zero")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	to := cfg.To
	if to == 0 {
		to, err = eng.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}
	if to < cfg.From {
		return fmt.Errorf("to block must be >= from block")
	}

	out, err := openOutputs(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer out.Close()

	runner := poller.NewRunner(eng.runnerConfig(cfg.Common), eng.chain, eng.reader, eng.params, poller.Options{
		Sink:   out.sinks,
		State:  out.state,
		Logger: logger,
	})

	logger.Info("backfill start",
		zap.Uint64("from", cfg.From),
		zap.Uint64("to", to),
		zap.Uint64("step", cfg.Step),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	_, err = runner.Backfill(ctx, cfg.From, to, cfg.Step)
	return err
}
