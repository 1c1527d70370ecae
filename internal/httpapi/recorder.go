package httpapi

import (
	"context"
	"sync"

	"stakeMetrics/internal/cache"
	"stakeMetrics/internal/model"
)

// Recorder is an in-process Source fed as a storage sink. It serves the API
// when no shared cache is configured.
type Recorder struct {
	mu    sync.RWMutex
	entry cache.Entry
	ok    bool
}

// PutMetrics keeps the newest ready record.
func (r *Recorder) PutMetrics(ctx context.Context, records []model.MetricsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		if !record.Metrics.Ready {
			continue
		}
		if r.ok && record.BlockNumber < r.entry.Record.BlockNumber {
			continue
		}
		r.entry = cache.Entry{Record: record}
		r.ok = true
	}
	return nil
}

func (r *Recorder) Latest(ctx context.Context) (cache.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entry, r.ok, nil
}
