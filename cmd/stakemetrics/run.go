package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakeMetrics/internal/config"
	"stakeMetrics/internal/httpapi"
	"stakeMetrics/internal/poller"
)

func runPoller(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	// Postgres carries the state when configured.
	if cfg.PGDSN != "" && !cmd.Flags().Changed("state-file") {
		cfg.StateFile = ""
	}
	out, err := openOutputs(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer out.Close()

	sharedCache, err := openCache(cfg.Redis)
	if err != nil {
		return err
	}

	opts := poller.Options{Sink: out.sinks, State: out.state, Logger: logger}
	var source httpapi.Source
	var ready []httpapi.Pinger
	if sharedCache != nil {
		defer sharedCache.Close()
		opts.Cache = sharedCache
		source = sharedCache
		ready = append(ready, sharedCache)
	} else {
		recorder := &httpapi.Recorder{}
		opts.Sink = append(out.sinks, recorder)
		source = recorder
	}
	if out.store != nil {
		ready = append(ready, out.store)
	}

	runnerCfg := eng.runnerConfig(cfg.Common)
	runnerCfg.PollInterval = cfg.PollInterval
	runnerCfg.ClaimHold = cfg.ClaimHold
	runner := poller.NewRunner(runnerCfg, eng.chain, eng.reader, eng.params, opts)

	logger.Info("poller start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("account", eng.account.Hex()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("out", cfg.Out),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("redis", sharedCache != nil),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	if cfg.HTTPAddr != "" {
		router := httpapi.NewRouter(httpapi.Deps{
			Source: source,
			Params: eng.params,
			Ready:  ready,
			Logger: logger,
		})
		g.Go(func() error { return httpapi.Serve(gctx, cfg.HTTPAddr, router, logger) })
	}

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("poller stopped")
		return nil
	}
	return err
}
