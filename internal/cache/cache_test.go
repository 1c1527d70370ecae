package cache

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"stakeMetrics/internal/model"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	c, err := New("redis://"+mr.Addr(), "", "test", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("New: %v", err)
	}
	return c, mr
}

func TestLatestEmpty(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	if _, ok, err := c.Latest(ctx); err != nil || ok {
		t.Fatalf("expected empty cache, ok=%v err=%v", ok, err)
	}
	if _, ok, err := c.LastBlock(ctx); err != nil || ok {
		t.Fatalf("expected no last block, ok=%v err=%v", ok, err)
	}
}

func TestStoreAndLatest(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	m := model.ProcessedMetrics{Ready: true}
	m.AutoUsdgApr = model.Defined(big.NewInt(0))
	entry := Entry{
		Snapshot: model.SnapshotSet{
			BlockNumber:    120,
			TotalStaked:    model.RawSnapshot{big.NewInt(1), big.NewInt(2)},
			ExternalSupply: big.NewInt(99),
		},
		Record: model.MetricsRecord{ChainID: 56, BlockNumber: 120, Metrics: m},
	}
	if err := c.Store(ctx, entry); err != nil {
		t.Fatalf("store: %v", err)
	}

	block, ok, err := c.LastBlock(ctx)
	if err != nil || !ok || block != 120 {
		t.Fatalf("unexpected last block: %d %v %v", block, ok, err)
	}
	if got := mr.Exists("test:latest"); !got {
		t.Fatalf("expected prefixed key")
	}

	got, ok, err := c.Latest(ctx)
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if !got.Record.Metrics.Equal(m) {
		t.Fatalf("metrics mismatch")
	}
	if got.Snapshot.ExternalSupply.Int64() != 99 || len(got.Snapshot.TotalStaked) != 2 {
		t.Fatalf("snapshot mismatch: %+v", got.Snapshot)
	}
	if missing := got.Snapshot.Missing(); len(missing) != 3 {
		t.Fatalf("expected three absent inputs, got %v", missing)
	}
}

func TestClaimBlock(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	first, err := c.ClaimBlock(ctx, 7, time.Minute)
	if err != nil || !first {
		t.Fatalf("expected first claim to win, ok=%v err=%v", first, err)
	}
	second, err := c.ClaimBlock(ctx, 7, time.Minute)
	if err != nil || second {
		t.Fatalf("expected second claim to lose, ok=%v err=%v", second, err)
	}

	mr.FastForward(2 * time.Minute)
	again, err := c.ClaimBlock(ctx, 7, time.Minute)
	if err != nil || !again {
		t.Fatalf("expected claim after expiry, ok=%v err=%v", again, err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not-a-url", "", "", 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReleaseBlock(t *testing.T) {
	c, mr := setupTestCache(t)
	defer mr.Close()
	defer c.Close()

	ctx := context.Background()
	if ok, err := c.ClaimBlock(ctx, 42, time.Minute); err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	if err := c.ReleaseBlock(ctx, 42); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, err := c.ClaimBlock(ctx, 42, time.Minute); err != nil || !ok {
		t.Fatalf("claim after release: ok=%v err=%v", ok, err)
	}
}
