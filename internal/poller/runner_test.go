package poller

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stakeMetrics/internal/aggregate"
	"stakeMetrics/internal/cache"
	"stakeMetrics/internal/model"
)

type fakeChain struct {
	mu     sync.Mutex
	head   uint64
	headFn func() (uint64, error)
}

func (f *fakeChain) GetChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(56), nil
}

func (f *fakeChain) LatestBlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headFn != nil {
		return f.headFn()
	}
	return f.head, nil
}

func (f *fakeChain) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	return 1700000000 + number, nil
}

type fakeFetcher struct {
	blocks  []uint64
	partial map[uint64]bool
}

func unitSlots(n int) model.RawSnapshot {
	out := make(model.RawSnapshot, n)
	for i := range out {
		out[i] = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	}
	return out
}

func (f *fakeFetcher) Fetch(ctx context.Context, account common.Address, block uint64) (model.SnapshotSet, error) {
	f.blocks = append(f.blocks, block)
	set := model.SnapshotSet{
		BlockNumber:    block,
		Balances:       unitSlots(18),
		Staking:        unitSlots(16),
		TotalStaked:    unitSlots(2),
		Pairs:          unitSlots(8),
		ExternalSupply: big.NewInt(1000),
	}
	if f.partial[block] {
		set.Pairs = nil
	}
	return set, nil
}

type memorySink struct {
	records []model.MetricsRecord
	err     error
}

func (m *memorySink) PutMetrics(ctx context.Context, records []model.MetricsRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

type memoryCache struct {
	last    uint64
	hasLast bool
	claims  map[uint64]bool
	entries []cache.Entry
}

func (m *memoryCache) LastBlock(ctx context.Context) (uint64, bool, error) {
	return m.last, m.hasLast, nil
}

func (m *memoryCache) ClaimBlock(ctx context.Context, block uint64, hold time.Duration) (bool, error) {
	if m.claims == nil {
		m.claims = make(map[uint64]bool)
	}
	if m.claims[block] {
		return false, nil
	}
	m.claims[block] = true
	return true, nil
}

func (m *memoryCache) ReleaseBlock(ctx context.Context, block uint64) error {
	delete(m.claims, block)
	return nil
}

func (m *memoryCache) Store(ctx context.Context, entry cache.Entry) error {
	m.entries = append(m.entries, entry)
	m.last, m.hasLast = entry.Record.BlockNumber, true
	return nil
}

func newTestRunner(chainClient Chain, fetcher Fetcher, opts Options) *Runner {
	cfg := Config{
		Account:      common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	}
	return NewRunner(cfg, chainClient, fetcher, aggregate.DefaultParams(), opts)
}

func TestTickRefreshesOnlyOnNewBlocks(t *testing.T) {
	chainClient := &fakeChain{head: 100}
	fetcher := &fakeFetcher{}
	sink := &memorySink{}
	c := &memoryCache{}
	r := newTestRunner(chainClient, fetcher, Options{Sink: sink, Cache: c})
	ctx := context.Background()

	ran, err := r.Tick(ctx)
	if err != nil || !ran {
		t.Fatalf("first tick: ran=%v err=%v", ran, err)
	}
	ran, err = r.Tick(ctx)
	if err != nil || ran {
		t.Fatalf("second tick on same block: ran=%v err=%v", ran, err)
	}

	chainClient.head = 101
	ran, err = r.Tick(ctx)
	if err != nil || !ran {
		t.Fatalf("third tick: ran=%v err=%v", ran, err)
	}

	if len(sink.records) != 2 || sink.records[1].BlockNumber != 101 {
		t.Fatalf("unexpected records: %+v", sink.records)
	}
	record := sink.records[0]
	if record.ChainID != 56 || record.BlockTimestamp != 1700000100 || !record.Metrics.Ready {
		t.Fatalf("unexpected record: %+v", record)
	}
	if len(c.entries) != 2 {
		t.Fatalf("expected cache writes, got %d", len(c.entries))
	}
}

func TestTickSkipsBlocksHandledElsewhere(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := &memoryCache{last: 200, hasLast: true}
	r := newTestRunner(&fakeChain{head: 200}, fetcher, Options{Cache: c})

	ran, err := r.Tick(context.Background())
	if err != nil || ran {
		t.Fatalf("expected skip, ran=%v err=%v", ran, err)
	}

	c = &memoryCache{claims: map[uint64]bool{300: true}}
	r = newTestRunner(&fakeChain{head: 300}, fetcher, Options{Cache: c})
	ran, err = r.Tick(context.Background())
	if err != nil || ran {
		t.Fatalf("expected skip for claimed block, ran=%v err=%v", ran, err)
	}
	if len(fetcher.blocks) != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.blocks)
	}
}

func TestTickNotReadyIsNotPersisted(t *testing.T) {
	fetcher := &fakeFetcher{partial: map[uint64]bool{50: true}}
	sink := &memorySink{}
	state := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	r := newTestRunner(&fakeChain{head: 50}, fetcher, Options{Sink: sink, State: state})

	if _, err := r.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
	// one initial attempt plus one retry
	if len(fetcher.blocks) != 2 {
		t.Fatalf("expected 2 fetch attempts, got %d", len(fetcher.blocks))
	}
	if _, ok, _ := state.Load(context.Background()); ok {
		t.Fatalf("state must not advance for incomplete snapshots")
	}
}

func TestTickSinkErrorRetriesBlock(t *testing.T) {
	ctx := context.Background()
	for _, withCache := range []bool{false, true} {
		sink := &memorySink{err: errors.New("db down")}
		state := &FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
		opts := Options{Sink: sink, State: state}
		var c *memoryCache
		if withCache {
			c = &memoryCache{}
			opts.Cache = c
		}
		r := newTestRunner(&fakeChain{head: 10}, &fakeFetcher{}, opts)

		if _, err := r.Tick(ctx); err == nil {
			t.Fatalf("cache=%v: expected sink error", withCache)
		}
		if _, ok, _ := state.Load(ctx); ok {
			t.Fatalf("cache=%v: state must not advance after a failed write", withCache)
		}
		if withCache && c.claims[10] {
			t.Fatalf("claim must be released after a failed refresh")
		}

		sink.err = nil
		ran, err := r.Tick(ctx)
		if err != nil || !ran {
			t.Fatalf("cache=%v: retry tick ran=%v err=%v", withCache, ran, err)
		}
		if len(sink.records) != 1 || sink.records[0].BlockNumber != 10 {
			t.Fatalf("cache=%v: expected block 10 written on retry, got %+v", withCache, sink.records)
		}
		if block, ok, _ := state.Load(ctx); !ok || block != 10 {
			t.Fatalf("cache=%v: expected state 10, got %d %v", withCache, block, ok)
		}
	}
}

func TestTickHeadError(t *testing.T) {
	chainClient := &fakeChain{headFn: func() (uint64, error) { return 0, errors.New("rpc down") }}
	r := newTestRunner(chainClient, &fakeFetcher{}, Options{})
	if _, err := r.Tick(context.Background()); err == nil {
		t.Fatalf("expected head error")
	}
}

func TestBackfillResumesFromState(t *testing.T) {
	ctx := context.Background()
	state := &FileStateStore{Path: filepath.Join(t.TempDir(), "backfill.json")}
	fetcher := &fakeFetcher{}
	sink := &memorySink{}
	r := newTestRunner(&fakeChain{head: 1000}, fetcher, Options{Sink: sink, State: state})

	written, err := r.Backfill(ctx, 10, 15, 2)
	if err != nil || written != 3 {
		t.Fatalf("backfill: written=%d err=%v", written, err)
	}
	want := []uint64{11, 13, 15}
	for i, block := range want {
		if fetcher.blocks[i] != block {
			t.Fatalf("expected fetch at %v, got %v", want, fetcher.blocks)
		}
	}

	if err := state.Save(ctx, 13); err != nil {
		t.Fatalf("save: %v", err)
	}
	fetcher = &fakeFetcher{}
	r = newTestRunner(&fakeChain{head: 1000}, fetcher, Options{Sink: sink, State: state})
	written, err = r.Backfill(ctx, 10, 15, 2)
	if err != nil || written != 1 {
		t.Fatalf("resumed backfill: written=%d err=%v", written, err)
	}
	if len(fetcher.blocks) != 1 || fetcher.blocks[0] != 15 {
		t.Fatalf("expected only block 15, got %v", fetcher.blocks)
	}
}

func TestCompute(t *testing.T) {
	r := newTestRunner(&fakeChain{head: 77}, &fakeFetcher{}, Options{})
	record, set, err := r.Compute(context.Background(), 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if record.BlockNumber != 77 || set.BlockNumber != 77 || !record.Metrics.Ready {
		t.Fatalf("unexpected compute result: %+v", record)
	}
}

func TestComputeRetriesHead(t *testing.T) {
	calls := 0
	chainClient := &fakeChain{headFn: func() (uint64, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("timeout")
		}
		return 88, nil
	}}
	r := newTestRunner(chainClient, &fakeFetcher{}, Options{})
	record, _, err := r.Compute(context.Background(), 0)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if record.BlockNumber != 88 || calls != 2 {
		t.Fatalf("block=%d calls=%d", record.BlockNumber, calls)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &memorySink{}
	r := newTestRunner(&fakeChain{head: 5}, &fakeFetcher{}, Options{Sink: sink})
	r.cfg.PollInterval = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("run did not stop")
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected exactly one refresh, got %d", len(sink.records))
	}
}
