package driving

import (
	"context"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// FactsheetService answers queries against the cached datasets.
type FactsheetService interface {
	// Lookup resolves an identifier case-insensitively.
	// A canonical name yields the annotated substance; an alias yields a
	// redirect to the canonical name. Returns domain.ErrNotFound otherwise.
	Lookup(ctx context.Context, id string) (*domain.LookupResult, error)

	// ListCategory returns the substances tagged with a category, sorted by display name.
	ListCategory(ctx context.Context, category string) ([]domain.Substance, error)

	// GetCategory returns the description of a category.
	GetCategory(ctx context.Context, category string) (*domain.Category, error)

	// ListCategories returns every category, sorted by name.
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ListAll returns every substance sorted by display name.
	ListAll(ctx context.Context) ([]domain.Substance, error)

	// Status lists substances missing structured dose, onset, duration or after-effects.
	Status(ctx context.Context) (*domain.StatusReport, error)

	// MissingSources lists common substances lacking citations.
	MissingSources(ctx context.Context) ([]domain.MissingSources, error)

	// Raw fetches a single record straight from the substance provider.
	Raw(ctx context.Context, name string) (map[string]any, error)
}
