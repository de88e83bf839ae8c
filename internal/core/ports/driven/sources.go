package driven

import (
	"context"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// SubstanceSource fetches the substance and category datasets.
// Records that cannot be decoded are skipped; only transport and
// envelope failures are returned as errors.
type SubstanceSource interface {
	// FetchSubstances returns every substance the provider publishes.
	FetchSubstances(ctx context.Context) ([]domain.Substance, error)

	// FetchCategories returns every category keyed by name.
	FetchCategories(ctx context.Context) (map[string]domain.Category, error)

	// FetchRaw returns a single record exactly as the provider serves it.
	// Returns domain.ErrNotFound when the provider has no such record.
	FetchRaw(ctx context.Context, name string) (map[string]any, error)
}

// ComboSource fetches the combination-risk dataset.
type ComboSource interface {
	FetchCombos(ctx context.Context) (domain.Combos, error)
}

// ErowidSource fetches the Erowid reference index.
type ErowidSource interface {
	FetchErowid(ctx context.Context) (domain.ErowidIndex, error)
}

// WikiSearcher resolves a search term to a wiki page URL.
type WikiSearcher interface {
	// Search returns the URL of the best matching page.
	// An empty string with a nil error means the wiki has no match.
	Search(ctx context.Context, query string) (string, error)
}

// EffectsSource resolves the effect pages listed for a substance.
type EffectsSource interface {
	// FetchEffects returns effect name to page URL for a display name.
	// An empty map with a nil error means no effects are listed.
	FetchEffects(ctx context.Context, prettyName string) (map[string]string, error)
}

// GlossaryLoader loads the glossary.
type GlossaryLoader interface {
	Load(ctx context.Context) (domain.Glossary, error)
}
