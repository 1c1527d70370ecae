package storage

import (
	"context"

	"stakeMetrics/internal/model"
)

// Sink receives processed metrics records.
type Sink interface {
	PutMetrics(ctx context.Context, records []model.MetricsRecord) error
}

// MultiSink fans records out to every sink in order and stops at the first error.
type MultiSink []Sink

func (m MultiSink) PutMetrics(ctx context.Context, records []model.MetricsRecord) error {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutMetrics(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
