package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
	"github.com/custodia-labs/factsheets/internal/logger"
	"github.com/custodia-labs/factsheets/internal/observability"
)

// Ensure Refresher implements the interface.
var _ driving.Refresher = (*Refresher)(nil)

var refreshLog = logger.For("refresh")

// RefresherDeps groups the collaborators of a Refresher.
// Sources left nil make the matching refresh fail with domain.ErrSourceUnavailable.
type RefresherDeps struct {
	Cache      driven.CacheStore
	Substances driven.SubstanceSource
	Combos     driven.ComboSource
	Erowid     driven.ErowidSource
	Annotator  *Annotator
	Metrics    *observability.Metrics
}

// Refresher fetches datasets and publishes them to the cache.
type Refresher struct {
	cache      driven.CacheStore
	substances driven.SubstanceSource
	combos     driven.ComboSource
	erowid     driven.ErowidSource
	annotator  *Annotator
	metrics    *observability.Metrics
}

// NewRefresher creates a refresher.
func NewRefresher(deps RefresherDeps) *Refresher {
	annotator := deps.Annotator
	if annotator == nil {
		annotator = NewAnnotator(nil)
	}
	return &Refresher{
		cache:      deps.Cache,
		substances: deps.Substances,
		combos:     deps.Combos,
		erowid:     deps.Erowid,
		annotator:  annotator,
		metrics:    deps.Metrics,
	}
}

// RefreshSubstances fetches substances, annotates their summaries, derives
// the alias index and publishes both together.
func (r *Refresher) RefreshSubstances(ctx context.Context) (int, error) {
	return r.observe(ctx, domain.DatasetSubstances, func(ctx context.Context) (int, error) {
		if r.substances == nil {
			return 0, domain.ErrSourceUnavailable
		}
		subs, err := r.substances.FetchSubstances(ctx)
		if err != nil {
			return 0, err
		}

		set, skipped := NewSubstanceSet(subs)
		if set.Len() == 0 {
			return 0, domain.ErrEmptyDataset
		}

		stats := r.annotator.AnnotateAll(set.ByName)
		r.metrics.AddMalformed(domain.DatasetSubstances.String(), skipped+stats.Malformed)
		refreshLog.Debug("annotated %d summaries, %d curated, %d without summary, %d unnamed",
			stats.Annotated, stats.Curated, stats.Malformed, skipped)

		if err := r.cache.ReplaceSubstances(set); err != nil {
			return 0, err
		}
		return set.Len(), nil
	})
}

// RefreshCategories fetches and publishes the category dataset.
func (r *Refresher) RefreshCategories(ctx context.Context) (int, error) {
	return r.observe(ctx, domain.DatasetCategories, func(ctx context.Context) (int, error) {
		if r.substances == nil {
			return 0, domain.ErrSourceUnavailable
		}
		cats, err := r.substances.FetchCategories(ctx)
		if err != nil {
			return 0, err
		}
		if err := r.cache.ReplaceCategories(cats); err != nil {
			return 0, err
		}
		return len(cats), nil
	})
}

// RefreshErowid fetches and publishes the Erowid reference index.
func (r *Refresher) RefreshErowid(ctx context.Context) (int, error) {
	return r.observe(ctx, domain.DatasetErowid, func(ctx context.Context) (int, error) {
		if r.erowid == nil {
			return 0, domain.ErrSourceUnavailable
		}
		index, err := r.erowid.FetchErowid(ctx)
		if err != nil {
			return 0, err
		}
		if err := r.cache.ReplaceErowid(index); err != nil {
			return 0, err
		}
		return len(index), nil
	})
}

// RefreshCombos fetches and publishes the combination-risk dataset.
func (r *Refresher) RefreshCombos(ctx context.Context) (int, error) {
	return r.observe(ctx, domain.DatasetCombos, func(ctx context.Context) (int, error) {
		if r.combos == nil {
			return 0, domain.ErrSourceUnavailable
		}
		combos, err := r.combos.FetchCombos(ctx)
		if err != nil {
			return 0, err
		}
		if err := r.cache.ReplaceCombos(combos); err != nil {
			return 0, err
		}
		return len(combos), nil
	})
}

// Refresh dispatches to the refresh method for a dataset.
func (r *Refresher) Refresh(ctx context.Context, dataset domain.Dataset) (int, error) {
	switch dataset {
	case domain.DatasetSubstances:
		return r.RefreshSubstances(ctx)
	case domain.DatasetCategories:
		return r.RefreshCategories(ctx)
	case domain.DatasetErowid:
		return r.RefreshErowid(ctx)
	case domain.DatasetCombos:
		return r.RefreshCombos(ctx)
	default:
		return 0, fmt.Errorf("unknown dataset %q: %w", dataset, domain.ErrInvalidInput)
	}
}

// WarmUp refreshes every dataset concurrently.
// All refreshes run to completion; the first error is returned.
func (r *Refresher) WarmUp(ctx context.Context) error {
	var g errgroup.Group
	for _, d := range domain.AllDatasets() {
		g.Go(func() error {
			_, err := r.Refresh(ctx, d)
			return err
		})
	}
	return g.Wait()
}

// observe wraps a refresh with timing, metrics and logging.
// On error the cache has not been touched.
func (r *Refresher) observe(
	ctx context.Context,
	dataset domain.Dataset,
	fn func(context.Context) (int, error),
) (int, error) {
	start := time.Now()
	n, err := fn(ctx)
	elapsed := time.Since(start)
	r.metrics.ObserveRefresh(dataset.String(), elapsed, n, err)

	if err != nil {
		refreshLog.Warn("%s refresh failed after %s: %v", dataset, elapsed.Round(time.Millisecond), err)
		return 0, fmt.Errorf("refresh %s: %w", dataset, err)
	}
	refreshLog.Info("%s refreshed: %d records in %s", dataset, n, elapsed.Round(time.Millisecond))
	return n, nil
}
