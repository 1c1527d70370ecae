package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stakeMetrics/internal/model"
)

// Store provides Postgres persistence for stake metrics and poller state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// PutMetrics lets the store act as a storage sink.
func (s *Store) PutMetrics(ctx context.Context, records []model.MetricsRecord) error {
	return s.UpsertMetrics(ctx, records)
}

// UpsertMetrics inserts or replaces metrics records keyed by chain, account and block.
func (s *Store) UpsertMetrics(ctx context.Context, records []model.MetricsRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		payload, err := json.Marshal(r.Metrics)
		if err != nil {
			return fmt.Errorf("marshal metrics %d: %w", r.BlockNumber, err)
		}
		computedAt, err := time.Parse(time.RFC3339Nano, r.ComputedAt)
		if err != nil {
			computedAt = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO stake_metrics (
				chain_id, account, block_number, block_timestamp, ready, metrics, computed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (chain_id, account, block_number)
			DO UPDATE SET
				block_timestamp = EXCLUDED.block_timestamp,
				ready = EXCLUDED.ready,
				metrics = EXCLUDED.metrics,
				computed_at = EXCLUDED.computed_at
		`,
			int64(r.ChainID),
			r.Account,
			int64(r.BlockNumber),
			int64(r.BlockTimestamp),
			r.Metrics.Ready,
			payload,
			computedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert metrics: %w", err)
		}
	}
	return nil
}

// LatestMetrics returns the most recent ready record for an account.
func (s *Store) LatestMetrics(ctx context.Context, chainID uint64, account string) (model.MetricsRecord, bool, error) {
	var (
		blockNumber    int64
		blockTimestamp int64
		payload        []byte
		computedAt     time.Time
	)
	row := s.pool.QueryRow(ctx, `
		SELECT block_number, block_timestamp, metrics, computed_at
		FROM stake_metrics
		WHERE chain_id = $1 AND account = $2 AND ready
		ORDER BY block_number DESC
		LIMIT 1
	`, int64(chainID), account)
	if err := row.Scan(&blockNumber, &blockTimestamp, &payload, &computedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MetricsRecord{}, false, nil
		}
		return model.MetricsRecord{}, false, fmt.Errorf("query latest metrics: %w", err)
	}

	var metrics model.ProcessedMetrics
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return model.MetricsRecord{}, false, fmt.Errorf("decode metrics: %w", err)
	}
	return model.MetricsRecord{
		ChainID:        chainID,
		BlockNumber:    uint64(blockNumber),
		BlockTimestamp: uint64(blockTimestamp),
		Account:        account,
		ComputedAt:     computedAt.UTC().Format(time.RFC3339Nano),
		Metrics:        metrics,
	}, true, nil
}

// LoadState returns the last processed block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last processed block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}
