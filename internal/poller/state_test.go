package poller

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStateStore(t *testing.T) {
	ctx := context.Background()
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "dir", "state.json")}

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty state, ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, 12345); err != nil {
		t.Fatalf("save: %v", err)
	}
	block, ok, err := store.Load(ctx)
	if err != nil || !ok || block != 12345 {
		t.Fatalf("unexpected state: %d %v %v", block, ok, err)
	}
}

type memoryBackend map[string]uint64

func (m memoryBackend) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	v, ok := m[name]
	return v, ok, nil
}

func (m memoryBackend) SaveState(ctx context.Context, name string, block uint64) error {
	m[name] = block
	return nil
}

func TestDBStateStore(t *testing.T) {
	ctx := context.Background()
	backend := memoryBackend{}
	store := &DBStateStore{Backend: backend, Name: "poller"}
	if err := store.Save(ctx, 9); err != nil {
		t.Fatalf("save: %v", err)
	}
	if backend["poller"] != 9 {
		t.Fatalf("expected backend write, got %v", backend)
	}
	block, ok, err := store.Load(ctx)
	if err != nil || !ok || block != 9 {
		t.Fatalf("unexpected state: %d %v %v", block, ok, err)
	}

	var empty *DBStateStore
	if _, ok, err := empty.Load(ctx); ok || err != nil {
		t.Fatalf("nil store must be empty")
	}
}
