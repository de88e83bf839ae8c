package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
)

// --- Mock implementations shared by service tests ---

var errUpstream = errors.New("upstream unavailable")

// mockCacheStore implements driven.CacheStore for testing.
type mockCacheStore struct {
	mu   sync.RWMutex
	snap domain.CacheSnapshot
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{}
}

func (m *mockCacheStore) Snapshot() domain.CacheSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *mockCacheStore) ReplaceSubstances(set *domain.SubstanceSet) error {
	if set.Len() == 0 {
		return domain.ErrEmptyDataset
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Substances = set
	return nil
}

func (m *mockCacheStore) ReplaceCategories(categories map[string]domain.Category) error {
	if len(categories) == 0 {
		return domain.ErrEmptyDataset
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Categories = categories
	return nil
}

func (m *mockCacheStore) ReplaceErowid(index domain.ErowidIndex) error {
	if len(index) == 0 {
		return domain.ErrEmptyDataset
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Erowid = index
	return nil
}

func (m *mockCacheStore) ReplaceCombos(combos domain.Combos) error {
	if len(combos) == 0 {
		return domain.ErrEmptyDataset
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Combos = combos
	return nil
}

// mockSubstanceSource implements driven.SubstanceSource for testing.
type mockSubstanceSource struct {
	subs    []domain.Substance
	cats    map[string]domain.Category
	raw     map[string]map[string]any
	err     error
	rawErr  error
	panicky bool
	calls   atomic.Int32
}

func (m *mockSubstanceSource) FetchSubstances(_ context.Context) ([]domain.Substance, error) {
	m.calls.Add(1)
	if m.panicky {
		panic("decoder exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.subs, nil
}

func (m *mockSubstanceSource) FetchCategories(_ context.Context) (map[string]domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cats, nil
}

func (m *mockSubstanceSource) FetchRaw(_ context.Context, name string) (map[string]any, error) {
	if m.rawErr != nil {
		return nil, m.rawErr
	}
	rec, ok := m.raw[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// mockComboSource implements driven.ComboSource for testing.
type mockComboSource struct {
	combos domain.Combos
	err    error
}

func (m *mockComboSource) FetchCombos(_ context.Context) (domain.Combos, error) {
	return m.combos, m.err
}

// mockErowidSource implements driven.ErowidSource for testing.
type mockErowidSource struct {
	index domain.ErowidIndex
	err   error
}

func (m *mockErowidSource) FetchErowid(_ context.Context) (domain.ErowidIndex, error) {
	return m.index, m.err
}

// mockWikiSearcher implements driven.WikiSearcher for testing.
type mockWikiSearcher struct {
	pages map[string]string
	err   error
	calls atomic.Int32
}

func (m *mockWikiSearcher) Search(_ context.Context, query string) (string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return "", m.err
	}
	return m.pages[query], nil
}

// mockEffectsSource implements driven.EffectsSource for testing.
type mockEffectsSource struct {
	effects map[string]map[string]string
	err     error
	calls   atomic.Int32
}

func (m *mockEffectsSource) FetchEffects(_ context.Context, prettyName string) (map[string]string, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if e, ok := m.effects[prettyName]; ok {
		return e, nil
	}
	return map[string]string{}, nil
}

// mockMemoStore implements driven.MemoStore for testing.
type mockMemoStore[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

func newMockMemoStore[V any]() *mockMemoStore[V] {
	return &mockMemoStore[V]{entries: make(map[string]V)}
}

func (m *mockMemoStore[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *mockMemoStore[V]) Put(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *mockMemoStore[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := append([]domain.TaskResult(nil), m.results[taskID]...)
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

func (m *mockSchedulerStore) task(id string) domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tasks[id]; ok {
		return *t
	}
	return domain.ScheduledTask{}
}

// mockRefresher implements driving.Refresher for testing.
type mockRefresher struct {
	mu      sync.Mutex
	calls   map[domain.Dataset]int
	errs    map[domain.Dataset]error
	panicOn domain.Dataset
}

func newMockRefresher() *mockRefresher {
	return &mockRefresher{
		calls: make(map[domain.Dataset]int),
		errs:  make(map[domain.Dataset]error),
	}
}

func (m *mockRefresher) RefreshSubstances(ctx context.Context) (int, error) {
	return m.Refresh(ctx, domain.DatasetSubstances)
}

func (m *mockRefresher) RefreshCategories(ctx context.Context) (int, error) {
	return m.Refresh(ctx, domain.DatasetCategories)
}

func (m *mockRefresher) RefreshErowid(ctx context.Context) (int, error) {
	return m.Refresh(ctx, domain.DatasetErowid)
}

func (m *mockRefresher) RefreshCombos(ctx context.Context) (int, error) {
	return m.Refresh(ctx, domain.DatasetCombos)
}

func (m *mockRefresher) Refresh(_ context.Context, dataset domain.Dataset) (int, error) {
	m.mu.Lock()
	m.calls[dataset]++
	err := m.errs[dataset]
	m.mu.Unlock()

	if dataset == m.panicOn {
		panic("boom")
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (m *mockRefresher) WarmUp(ctx context.Context) error {
	for _, d := range domain.AllDatasets() {
		if _, err := m.Refresh(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRefresher) callCount(d domain.Dataset) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[d]
}

// Ensure mocks implement interfaces
var (
	_ driven.CacheStore        = (*mockCacheStore)(nil)
	_ driven.SubstanceSource   = (*mockSubstanceSource)(nil)
	_ driven.ComboSource       = (*mockComboSource)(nil)
	_ driven.ErowidSource      = (*mockErowidSource)(nil)
	_ driven.WikiSearcher      = (*mockWikiSearcher)(nil)
	_ driven.EffectsSource     = (*mockEffectsSource)(nil)
	_ driven.MemoStore[string] = (*mockMemoStore[string])(nil)
	_ driven.SchedulerStore    = (*mockSchedulerStore)(nil)
	_ driving.Refresher        = (*mockRefresher)(nil)
)

// --- Fixtures ---

func summaryOf(s *domain.Substance) string {
	v, _ := s.Properties.Summary()
	return v
}

func substance(name, pretty, summary string, categories ...string) domain.Substance {
	return domain.Substance{
		Name:       name,
		PrettyName: pretty,
		Categories: categories,
		Properties: domain.Properties{domain.PropertySummary: summary},
	}
}

func substanceSet(subs ...domain.Substance) *domain.SubstanceSet {
	set, _ := NewSubstanceSet(subs)
	return set
}
