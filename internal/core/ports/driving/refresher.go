package driving

import (
	"context"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// Refresher fetches a dataset from its source and publishes it to the cache.
// Every method returns the number of records published. On error the cache
// keeps its previous value for that dataset.
type Refresher interface {
	RefreshSubstances(ctx context.Context) (int, error)
	RefreshCategories(ctx context.Context) (int, error)
	RefreshErowid(ctx context.Context) (int, error)
	RefreshCombos(ctx context.Context) (int, error)

	// Refresh dispatches to the method for a dataset.
	Refresh(ctx context.Context, dataset domain.Dataset) (int, error)

	// WarmUp refreshes every dataset concurrently and returns the first error.
	WarmUp(ctx context.Context) error
}
