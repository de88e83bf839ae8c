package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/observability"
)

// memoLookup memoises an external lookup per key.
// Concurrent first lookups of the same key share one fetch. Only successful
// fetches are memoised, including ones that found nothing, so a transient
// failure is retried on the next lookup.
type memoLookup[V any] struct {
	name    string
	store   driven.MemoStore[V]
	group   singleflight.Group
	metrics *observability.Metrics
}

func newMemoLookup[V any](name string, store driven.MemoStore[V], metrics *observability.Metrics) *memoLookup[V] {
	return &memoLookup[V]{name: name, store: store, metrics: metrics}
}

// get returns the memoised value for key, fetching it on a miss.
func (m *memoLookup[V]) get(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if m.store != nil {
		if v, ok := m.store.Get(key); ok {
			m.metrics.ObserveMemo(m.name, observability.MemoHit)
			return v, nil
		}
	}

	res, err, _ := m.group.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		if m.store != nil {
			m.store.Put(key, v)
		}
		return v, nil
	})
	if err != nil {
		m.metrics.ObserveMemo(m.name, observability.MemoError)
		var zero V
		return zero, err
	}
	m.metrics.ObserveMemo(m.name, observability.MemoMiss)
	return res.(V), nil
}
