package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeMetrics/internal/aggregate"
	"stakeMetrics/internal/cache"
	"stakeMetrics/internal/chain"
	"stakeMetrics/internal/config"
	"stakeMetrics/internal/poller"
	"stakeMetrics/internal/reader"
	"stakeMetrics/internal/storage"
	"stakeMetrics/internal/storage/postgres"
)

// engine bundles what every chain-reading command builds from Common.
type engine struct {
	chain   *chain.Client
	reader  *reader.Reader
	params  aggregate.Params
	account common.Address
}

func newEngine(ctx context.Context, cfg config.Common, logger *zap.Logger) (*engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	account, err := reader.ParseAddress(cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	params, err := cfg.Params.AggregateParams()
	if err != nil {
		return nil, err
	}
	contracts, err := reader.ParseContracts(cfg.Contracts, params.Layout)
	if err != nil {
		return nil, fmt.Errorf("contracts: %w", err)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	r, err := reader.NewReader(chainClient, contracts, logger)
	if err != nil {
		chainClient.Close()
		return nil, err
	}
	return &engine{chain: chainClient, reader: r, params: params, account: account}, nil
}

func (e *engine) Close() {
	e.chain.Close()
}

func (e *engine) runnerConfig(cfg config.Common) poller.Config {
	return poller.Config{
		Account:      e.account,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}
}

// outputs holds the sinks and state store selected by config.Storage.
type outputs struct {
	sinks storage.MultiSink
	state poller.StateStore
	store *postgres.Store
}

func openOutputs(ctx context.Context, cfg config.Storage, logger *zap.Logger) (*outputs, error) {
	out := &outputs{}
	if cfg.Out != "" {
		out.sinks = append(out.sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		out.store = store
		out.sinks = append(out.sinks, store)
		logger.Info("postgres connected and migrated", zap.String("pg_dsn", redactDSN(cfg.PGDSN)))
	}

	switch {
	case cfg.StateFile != "":
		out.state = &poller.FileStateStore{Path: cfg.StateFile}
	case out.store != nil:
		out.state = &poller.DBStateStore{Backend: out.store, Name: cfg.StateName}
	}
	return out, nil
}

func (o *outputs) Close() {
	if o.store != nil {
		o.store.Close()
	}
}

func openCache(redis config.Redis) (*cache.Cache, error) {
	if redis.URL == "" {
		return nil, nil
	}
	c, err := cache.New(redis.URL, redis.Password, redis.Prefix, redis.TTL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return c, nil
}

// pgSource serves the newest Postgres row for one chain and account.
type pgSource struct {
	store   *postgres.Store
	chainID uint64
	account string
}

func (s pgSource) Latest(ctx context.Context) (cache.Entry, bool, error) {
	record, ok, err := s.store.LatestMetrics(ctx, s.chainID, s.account)
	if err != nil || !ok {
		return cache.Entry{}, ok, err
	}
	return cache.Entry{Record: record}, true, nil
}
