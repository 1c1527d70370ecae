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
	"stakeMetrics/internal/httpapi"
	"stakeMetrics/internal/reader"
	"stakeMetrics/internal/storage/postgres"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	params, err := cfg.Params.AggregateParams()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := httpapi.Deps{Params: params, Logger: logger}
	switch {
	case cfg.Redis.URL != "":
		c, err := openCache(cfg.Redis)
		if err != nil {
			return err
		}
		defer c.Close()
		deps.Source = c
		deps.Ready = append(deps.Ready, c)
	case cfg.PGDSN != "":
		account, err := reader.ParseAddress(cfg.Account)
		if err != nil {
			return fmt.Errorf("account: %w", err)
		}
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		deps.Source = pgSource{store: store, chainID: cfg.ChainID, account: account.Hex()}
		deps.Ready = append(deps.Ready, store)
	default:
		return fmt.Errorf("redis url or pg dsn is required")
	}

	logger.Info("serve start",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Bool("redis", cfg.Redis.URL != ""),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)
	return httpapi.Serve(ctx, cfg.HTTPAddr, httpapi.NewRouter(deps), logger)
}
