package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/factsheets/internal/core/domain"
	"github.com/custodia-labs/factsheets/internal/core/ports/driven"
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
	"github.com/custodia-labs/factsheets/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

var schedulerLog = logger.For("scheduler")

// taskNames are the display names of the built-in tasks, in start order.
var taskNames = []struct {
	id   string
	name string
}{
	{domain.TaskIDSubstanceRefresh, "Substance Refresh"},
	{domain.TaskIDCategoryRefresh, "Category Refresh"},
	{domain.TaskIDErowidRefresh, "Erowid Refresh"},
	{domain.TaskIDComboRefresh, "Combination Refresh"},
}

// Scheduler keeps datasets fresh by running refresh tasks on their intervals.
//
// Each due task runs in its own goroutine. The next run is scheduled when a
// run starts, so a fetch slower than its interval overlaps the next run and
// the last one to finish wins. A failing or panicking run is recorded on the
// task and never affects other tasks.
type Scheduler struct {
	config    domain.SchedulerConfig
	store     driven.SchedulerStore
	refresher driving.Refresher
	now       func() time.Time

	// stateMu serialises read-modify-write of task state in the store.
	stateMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	refresher driving.Refresher,
) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = domain.DefaultSchedulerConfig().TickInterval
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = domain.DefaultSchedulerConfig().HistoryLimit
	}
	return &Scheduler{
		config:    config,
		store:     store,
		refresher: refresher,
		now:       time.Now,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		schedulerLog.Info("disabled; datasets will not refresh in the background")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		schedulerLog.Error("failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Wait blocks until every launched task run has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Tasks returns the current state of every task, ordered by ID.
func (s *Scheduler) Tasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// History returns the most recent results of a task.
func (s *Scheduler) History(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	return s.store.GetTaskHistory(ctx, taskID, limit)
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	for _, t := range taskNames {
		cfg := s.config.GetTaskConfig(t.id)
		if !cfg.Enabled {
			continue
		}
		if err := s.ensureTask(ctx, t.id, t.name, cfg); err != nil {
			return fmt.Errorf("ensure task %s: %w", t.id, err)
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
// New tasks are due immediately so every dataset is fetched at startup.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			RunOnce:  cfg.RunOnce,
			Enabled:  cfg.Enabled,
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = s.now().Add(cfg.Interval)
		}
		task.RunOnce = cfg.RunOnce
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and launches tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		schedulerLog.Error("failed to list tasks: %v", err)
		return
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	now := s.now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled || task.Done() {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.launch(ctx, task, now)
		}
	}
}

// launch schedules the next run and starts this one in its own goroutine.
func (s *Scheduler) launch(ctx context.Context, task *domain.ScheduledTask, now time.Time) {
	dataset, ok := domain.TaskDataset(task.ID)
	if !ok {
		schedulerLog.Warn("unknown task ID: %s", task.ID)
		return
	}

	s.updateTask(ctx, task.ID, func(t *domain.ScheduledTask) {
		t.LastRun = now
		t.NextRun = now.Add(t.Interval)
		t.Runs++
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runTask(ctx, task.ID, dataset)
	}()
}

// runTask executes one refresh and records its result.
func (s *Scheduler) runTask(ctx context.Context, taskID string, dataset domain.Dataset) {
	result := &domain.TaskResult{
		RunID:     uuid.NewString(),
		TaskID:    taskID,
		StartedAt: s.now(),
	}

	n, err := s.refresh(ctx, dataset)
	result.EndedAt = s.now()
	result.ItemsProcessed = n
	if err != nil {
		result.Error = err.Error()
		schedulerLog.Warn("task %s failed: %v", taskID, err)
	} else {
		result.Success = true
		schedulerLog.Debug("task %s finished: %d records in %s", taskID, n, result.Duration())
	}

	s.updateTask(ctx, taskID, func(t *domain.ScheduledTask) {
		if err != nil {
			t.LastError = err.Error()
			return
		}
		t.LastError = ""
		t.LastSuccess = result.EndedAt
	})

	if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
		schedulerLog.Error("failed to record result for %s: %v", taskID, recordErr)
	}
	if pruneErr := s.store.PruneHistory(ctx, s.config.HistoryLimit); pruneErr != nil {
		schedulerLog.Error("failed to prune history: %v", pruneErr)
	}
}

// refresh runs the refresher, turning a panic into an error.
func (s *Scheduler) refresh(ctx context.Context, dataset domain.Dataset) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("refresh %s panicked: %v", dataset, r)
		}
	}()
	if s.refresher == nil {
		return 0, domain.ErrSourceUnavailable
	}
	return s.refresher.Refresh(ctx, dataset)
}

// updateTask applies fn to the stored state of a task.
func (s *Scheduler) updateTask(ctx context.Context, taskID string, fn func(*domain.ScheduledTask)) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	task, err := s.store.GetTask(ctx, taskID)
	if err != nil || task == nil {
		schedulerLog.Error("failed to load task %s: %v", taskID, err)
		return
	}
	fn(task)
	if err := s.store.SaveTask(ctx, task); err != nil {
		schedulerLog.Error("failed to save task %s: %v", taskID, err)
	}
}
