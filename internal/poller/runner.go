package poller

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeMetrics/internal/aggregate"
	"stakeMetrics/internal/cache"
	"stakeMetrics/internal/model"
	"stakeMetrics/internal/storage"
	"stakeMetrics/internal/telemetry"
)

// Config holds runtime settings for the poller.
type Config struct {
	Account      common.Address
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// ClaimHold is how long a block claim in the shared cache stays valid.
	ClaimHold time.Duration
}

// Chain is the subset of chain.Client the poller uses.
type Chain interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// Fetcher reads one snapshot set. reader.Reader implements it.
type Fetcher interface {
	Fetch(ctx context.Context, account common.Address, block uint64) (model.SnapshotSet, error)
}

// SharedCache is the subset of cache.Cache the poller uses.
type SharedCache interface {
	LastBlock(ctx context.Context) (uint64, bool, error)
	ClaimBlock(ctx context.Context, block uint64, hold time.Duration) (bool, error)
	ReleaseBlock(ctx context.Context, block uint64) error
	Store(ctx context.Context, entry cache.Entry) error
}

// Runner refreshes staking metrics whenever the chain head advances.
type Runner struct {
	cfg     Config
	chain   Chain
	fetcher Fetcher
	params  aggregate.Params
	sink    storage.Sink
	cache   SharedCache
	state   StateStore
	logger  *zap.Logger
	retry   retryPolicy

	chainID   uint64
	lastBlock uint64
}

// Options carries the optional collaborators of a Runner.
type Options struct {
	Sink   storage.Sink
	Cache  SharedCache
	State  StateStore
	Logger *zap.Logger
}

func NewRunner(cfg Config, chainClient Chain, fetcher Fetcher, params aggregate.Params, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ClaimHold <= 0 {
		cfg.ClaimHold = 10 * time.Minute
	}
	return &Runner{
		cfg:     cfg,
		chain:   chainClient,
		fetcher: fetcher,
		params:  params,
		sink:    opts.Sink,
		cache:   opts.Cache,
		state:   opts.State,
		logger:  logger,
		retry: retryPolicy{
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.RetryBackoff,
			MaxBackoff: 30 * time.Second,
		},
	}
}

func (r *Runner) init(ctx context.Context) error {
	if r.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.fetcher == nil {
		return fmt.Errorf("fetcher is nil")
	}
	if r.chainID != 0 {
		return nil
	}

	var chainID *big.Int
	err := r.retry.do(ctx, func(ctx context.Context) error {
		var err error
		chainID, err = r.chain.GetChainID(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	r.chainID = chainID.Uint64()

	if r.state != nil {
		last, ok, err := r.state.Load(ctx)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		if ok {
			r.lastBlock = last
			r.logger.Info("resume from state", zap.Uint64("last_processed", last))
		}
	}
	return nil
}

// Run polls until ctx ends. Refresh failures are logged and retried on the
// next tick.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	interval := r.cfg.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick refreshes once if the head block advanced past the last processed
// block. It reports whether a refresh ran.
func (r *Runner) Tick(ctx context.Context) (bool, error) {
	if err := r.init(ctx); err != nil {
		return false, err
	}

	var latest uint64
	err := r.retry.do(ctx, func(ctx context.Context) error {
		var err error
		latest, err = r.chain.LatestBlockNumber(ctx)
		if err != nil {
			r.logger.Warn("latest block fetch failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return false, fmt.Errorf("latest block: %w", err)
	}
	if latest <= r.lastBlock {
		return false, nil
	}

	claimed := false
	if r.cache != nil {
		cached, ok, err := r.cache.LastBlock(ctx)
		if err != nil {
			r.logger.Warn("cache last block failed", zap.Error(err))
		} else if ok && cached >= latest {
			r.lastBlock = cached
			return false, nil
		}
		ok, err = r.cache.ClaimBlock(ctx, latest, r.cfg.ClaimHold)
		if err != nil {
			r.logger.Warn("cache claim failed", zap.Error(err))
		} else if !ok {
			r.logger.Debug("block claimed by another poller", zap.Uint64("block", latest))
			r.lastBlock = latest
			return false, nil
		} else {
			claimed = true
		}
	}

	if _, err := r.refresh(ctx, latest, true); err != nil {
		if claimed {
			// let the next tick, here or on another poller, retry the block
			if relErr := r.cache.ReleaseBlock(context.WithoutCancel(ctx), latest); relErr != nil {
				r.logger.Warn("cache release failed", zap.Uint64("block", latest), zap.Error(relErr))
			}
		}
		return false, err
	}
	return true, nil
}

// refresh fetches, aggregates and persists the metrics at block.
func (r *Runner) refresh(ctx context.Context, block uint64, publish bool) (model.MetricsRecord, error) {
	start := time.Now()
	defer func() { telemetry.PollDuration.Observe(time.Since(start).Seconds()) }()

	set, err := r.fetch(ctx, block)
	if err != nil {
		telemetry.PollTotal.WithLabelValues("error").Inc()
		return model.MetricsRecord{}, err
	}

	metrics := aggregate.Process(set, r.params)
	if !metrics.Ready {
		r.lastBlock = block
		missing := set.Missing()
		for _, input := range missing {
			telemetry.MissingInputs.WithLabelValues(input).Inc()
		}
		telemetry.PollTotal.WithLabelValues("not_ready").Inc()
		r.logger.Info("snapshot not ready", zap.Uint64("block", block), zap.Strings("missing", missing))
		return model.MetricsRecord{}, nil
	}

	ts, err := r.blockTimestamp(ctx, block)
	if err != nil {
		r.logger.Warn("block timestamp unavailable", zap.Uint64("block", block), zap.Error(err))
	}
	record := buildRecord(r.chainID, r.cfg.Account, block, ts, metrics, time.Now())

	if r.sink != nil {
		if err := r.sink.PutMetrics(ctx, []model.MetricsRecord{record}); err != nil {
			telemetry.PollTotal.WithLabelValues("error").Inc()
			return model.MetricsRecord{}, fmt.Errorf("store metrics: %w", err)
		}
	}
	if publish && r.cache != nil {
		if err := r.cache.Store(ctx, cache.Entry{Snapshot: set, Record: record}); err != nil {
			r.logger.Warn("cache store failed", zap.Error(err))
		}
	}
	if r.state != nil {
		if err := r.state.Save(ctx, block); err != nil {
			return record, fmt.Errorf("save state: %w", err)
		}
	}
	r.lastBlock = block

	if publish {
		telemetry.ObserveMetrics(metrics)
		telemetry.LastBlock.Set(float64(block))
	}
	telemetry.PollTotal.WithLabelValues("ok").Inc()
	r.logger.Info("metrics refreshed",
		zap.Uint64("block", block),
		zap.Duration("took", time.Since(start)),
	)
	return record, nil
}

// fetch retries while inputs are missing and falls back to the last partial
// set once retries run out.
func (r *Runner) fetch(ctx context.Context, block uint64) (model.SnapshotSet, error) {
	var set model.SnapshotSet
	err := r.retry.do(ctx, func(ctx context.Context) error {
		s, err := r.fetcher.Fetch(ctx, r.cfg.Account, block)
		if err != nil {
			return err
		}
		set = s
		if missing := s.Missing(); len(missing) > 0 {
			return fmt.Errorf("incomplete snapshot at %d: %v", block, missing)
		}
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.SnapshotSet{}, ctxErr
	}
	if err != nil {
		r.logger.Warn("snapshot incomplete after retries", zap.Uint64("block", block), zap.Error(err))
	}
	return set, nil
}

func (r *Runner) blockTimestamp(ctx context.Context, block uint64) (uint64, error) {
	var ts uint64
	err := r.retry.do(ctx, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, block)
		return err
	})
	return ts, err
}

// Backfill computes metrics at the last block of every step-sized range in
// [from, to], resuming after the stored state when it lies inside the range.
// It needs an archive node for historical reads.
func (r *Runner) Backfill(ctx context.Context, from, to, step uint64) (int, error) {
	if err := r.init(ctx); err != nil {
		return 0, err
	}
	if r.lastBlock >= from && r.lastBlock < to {
		from = r.lastBlock + 1
	}
	if from > to {
		r.logger.Info("nothing to backfill", zap.Uint64("from", from), zap.Uint64("to", to))
		return 0, nil
	}

	ranges, err := SplitRange(from, to, step)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		record, err := r.refresh(ctx, blockRange.To, false)
		if err != nil {
			return written, fmt.Errorf("backfill block %d: %w", blockRange.To, err)
		}
		if record.Metrics.Ready {
			written++
		}
	}
	r.logger.Info("backfill complete", zap.Int("records", written), zap.Int("ranges", len(ranges)))
	return written, nil
}

// Compute runs one refresh at block without consulting or updating shared
// state. A zero block means the current head.
func (r *Runner) Compute(ctx context.Context, block uint64) (model.MetricsRecord, model.SnapshotSet, error) {
	if err := r.init(ctx); err != nil {
		return model.MetricsRecord{}, model.SnapshotSet{}, err
	}
	if block == 0 {
		var latest uint64
		err := r.retry.do(ctx, func(ctx context.Context) error {
			var err error
			latest, err = r.chain.LatestBlockNumber(ctx)
			return err
		})
		if err != nil {
			return model.MetricsRecord{}, model.SnapshotSet{}, fmt.Errorf("latest block: %w", err)
		}
		block = latest
	}
	set, err := r.fetch(ctx, block)
	if err != nil {
		return model.MetricsRecord{}, model.SnapshotSet{}, err
	}
	ts, err := r.blockTimestamp(ctx, block)
	if err != nil {
		r.logger.Warn("block timestamp unavailable", zap.Uint64("block", block), zap.Error(err))
	}
	record := buildRecord(r.chainID, r.cfg.Account, block, ts, aggregate.Process(set, r.params), time.Now())
	return record, set, nil
}

func buildRecord(chainID uint64, account common.Address, block, ts uint64, metrics model.ProcessedMetrics, computedAt time.Time) model.MetricsRecord {
	return model.MetricsRecord{
		ChainID:        chainID,
		BlockNumber:    block,
		BlockTimestamp: ts,
		Account:        account.Hex(),
		ComputedAt:     computedAt.UTC().Format(time.RFC3339Nano),
		Metrics:        metrics,
	}
}
