package domain

import "time"

// Dataset names one independently refreshed field of the cache.
type Dataset string

// Cached datasets.
const (
	DatasetSubstances Dataset = "substances"
	DatasetCategories Dataset = "categories"
	DatasetErowid     Dataset = "erowid"
	DatasetCombos     Dataset = "combos"
)

// AllDatasets lists every cached dataset.
func AllDatasets() []Dataset {
	return []Dataset{DatasetSubstances, DatasetCategories, DatasetErowid, DatasetCombos}
}

// String returns the string representation.
func (d Dataset) String() string {
	return string(d)
}

// CacheSnapshot is the currently visible set of cached datasets.
//
// Each field is independently refreshed and may come from a different
// refresh generation. Every field value is immutable once published; callers
// must treat maps reachable from a snapshot as read-only.
type CacheSnapshot struct {
	Substances *SubstanceSet
	Categories map[string]Category
	Erowid     ErowidIndex
	Combos     Combos

	// UpdatedAt records when each field was last replaced. Missing means never.
	UpdatedAt map[Dataset]time.Time
}

// Age returns how long ago a dataset was replaced, and false if it never was.
func (s CacheSnapshot) Age(d Dataset, now time.Time) (time.Duration, bool) {
	t, ok := s.UpdatedAt[d]
	if !ok || t.IsZero() {
		return 0, false
	}
	return now.Sub(t), true
}
