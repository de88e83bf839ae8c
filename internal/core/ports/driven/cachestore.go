package driven

import "github.com/custodia-labs/factsheets/internal/core/domain"

// CacheStore holds the current value of every cached dataset.
//
// Each Replace call swaps exactly one field atomically. Readers always see
// either the old or the new value of a field, never a mix, and never block
// on writers. Fields are independent: replacing one leaves the others as
// they were.
type CacheStore interface {
	// Snapshot returns the currently visible value of every field.
	Snapshot() domain.CacheSnapshot

	// ReplaceSubstances swaps the substance set and its alias index together.
	// Returns domain.ErrEmptyDataset for a nil or empty set.
	ReplaceSubstances(set *domain.SubstanceSet) error

	// ReplaceCategories swaps the category dataset.
	ReplaceCategories(categories map[string]domain.Category) error

	// ReplaceErowid swaps the Erowid reference index.
	ReplaceErowid(index domain.ErowidIndex) error

	// ReplaceCombos swaps the combination-risk dataset.
	ReplaceCombos(combos domain.Combos) error
}
