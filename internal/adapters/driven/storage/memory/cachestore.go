package memory

import (
	"sync/atomic"
	"time"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// stamped pairs a published value with the time it was published.
type stamped[T any] struct {
	value T
	at    time.Time
}

// CacheStore is the in-memory dataset cache.
//
// Every field is an atomic pointer to an immutable value. Writers publish a
// new value with a single pointer store; readers load pointers without
// locking. Fields are swapped independently of one another.
type CacheStore struct {
	substances atomic.Pointer[stamped[*domain.SubstanceSet]]
	categories atomic.Pointer[stamped[map[string]domain.Category]]
	erowid     atomic.Pointer[stamped[domain.ErowidIndex]]
	combos     atomic.Pointer[stamped[domain.Combos]]

	now func() time.Time
}

// NewCacheStore creates an empty cache.
func NewCacheStore() *CacheStore {
	return &CacheStore{now: time.Now}
}

// Snapshot returns the currently published value of every field.
func (c *CacheStore) Snapshot() domain.CacheSnapshot {
	snap := domain.CacheSnapshot{UpdatedAt: make(map[domain.Dataset]time.Time, 4)}

	if p := c.substances.Load(); p != nil {
		snap.Substances = p.value
		snap.UpdatedAt[domain.DatasetSubstances] = p.at
	}
	if p := c.categories.Load(); p != nil {
		snap.Categories = p.value
		snap.UpdatedAt[domain.DatasetCategories] = p.at
	}
	if p := c.erowid.Load(); p != nil {
		snap.Erowid = p.value
		snap.UpdatedAt[domain.DatasetErowid] = p.at
	}
	if p := c.combos.Load(); p != nil {
		snap.Combos = p.value
		snap.UpdatedAt[domain.DatasetCombos] = p.at
	}
	return snap
}

// ReplaceSubstances publishes a substance set together with its alias index.
func (c *CacheStore) ReplaceSubstances(set *domain.SubstanceSet) error {
	if set.Len() == 0 {
		return domain.ErrEmptyDataset
	}
	if set.Aliases == nil {
		set.Aliases = domain.AliasIndex{}
	}
	c.substances.Store(&stamped[*domain.SubstanceSet]{value: set, at: c.now()})
	return nil
}

// ReplaceCategories publishes the category dataset.
func (c *CacheStore) ReplaceCategories(categories map[string]domain.Category) error {
	if len(categories) == 0 {
		return domain.ErrEmptyDataset
	}
	c.categories.Store(&stamped[map[string]domain.Category]{value: categories, at: c.now()})
	return nil
}

// ReplaceErowid publishes the Erowid reference index.
func (c *CacheStore) ReplaceErowid(index domain.ErowidIndex) error {
	if len(index) == 0 {
		return domain.ErrEmptyDataset
	}
	c.erowid.Store(&stamped[domain.ErowidIndex]{value: index, at: c.now()})
	return nil
}

// ReplaceCombos publishes the combination-risk dataset.
func (c *CacheStore) ReplaceCombos(combos domain.Combos) error {
	if len(combos) == 0 {
		return domain.ErrEmptyDataset
	}
	c.combos.Store(&stamped[domain.Combos]{value: combos, at: c.now()})
	return nil
}
