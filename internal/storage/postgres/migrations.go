package postgres

import (
	"context"
	"fmt"
)

const migrationSQL = `
CREATE TABLE IF NOT EXISTS stake_metrics (
    chain_id BIGINT NOT NULL,
    account TEXT NOT NULL,
    block_number BIGINT NOT NULL,
    block_timestamp BIGINT NOT NULL DEFAULT 0,
    ready BOOLEAN NOT NULL DEFAULT false,
    metrics JSONB NOT NULL,
    computed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (chain_id, account, block_number)
);

CREATE INDEX IF NOT EXISTS stake_metrics_latest_idx
    ON stake_metrics (chain_id, account, block_number DESC)
    WHERE ready;

CREATE TABLE IF NOT EXISTS indexer_state (
    name TEXT PRIMARY KEY,
    last_processed_block BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the tables the store uses. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
