package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"stakeMetrics/internal/model"
)

// Entry is the latest refresh result shared between pollers and the API.
type Entry struct {
	Snapshot model.SnapshotSet   `json:"snapshot"`
	Record   model.MetricsRecord `json:"record"`
}

// Cache keeps the most recent snapshot and metrics in Redis.
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to redisURL. A zero ttl keeps entries until overwritten.
func New(redisURL, password, prefix string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if prefix == "" {
		prefix = "stakemetrics"
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) key(name string) string {
	return c.prefix + ":" + name
}

// Store writes the entry and advances the last seen block in one round trip.
func (c *Cache) Store(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key("latest"), payload, c.ttl)
		pipe.Set(ctx, c.key("last_block"), entry.Record.BlockNumber, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// LastBlock returns the block of the most recent stored entry.
func (c *Cache) LastBlock(ctx context.Context) (uint64, bool, error) {
	val, err := c.rdb.Get(ctx, c.key("last_block")).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get last block: %w", err)
	}
	block, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse last block %q: %w", val, err)
	}
	return block, true, nil
}

// Latest returns the most recent stored entry.
func (c *Cache) Latest(ctx context.Context) (Entry, bool, error) {
	payload, err := c.rdb.Get(ctx, c.key("latest")).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get latest: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode latest: %w", err)
	}
	return entry, true, nil
}

// ClaimBlock reports whether this caller is the first to claim block. Pollers
// sharing one Redis use it so only one of them refreshes per block.
func (c *Cache) ClaimBlock(ctx context.Context, block uint64, hold time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, c.key("claim:"+strconv.FormatUint(block, 10)), "1", hold).Result()
	if err != nil {
		return false, fmt.Errorf("claim block %d: %w", block, err)
	}
	return ok, nil
}

// ReleaseBlock drops a claim so the block can be claimed again.
func (c *Cache) ReleaseBlock(ctx context.Context, block uint64) error {
	if err := c.rdb.Del(ctx, c.key("claim:"+strconv.FormatUint(block, 10))).Err(); err != nil {
		return fmt.Errorf("release block %d: %w", block, err)
	}
	return nil
}
