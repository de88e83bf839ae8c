package domain

import "time"

// ScheduledTask represents a recurring background refresh.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// RunOnce marks a task that runs at startup and is never rescheduled.
	RunOnce bool

	// LastRun is when the task last started.
	LastRun time.Time

	// NextRun is when the task should run next. Zero means due now.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Runs counts launches, including ones still in flight.
	Runs int

	// Enabled indicates whether the task is active.
	Enabled bool
}

// Done reports whether a run-once task has already been launched.
func (t *ScheduledTask) Done() bool {
	return t.RunOnce && t.Runs > 0
}

// TaskResult represents the outcome of one task execution.
type TaskResult struct {
	// RunID uniquely identifies this execution.
	RunID string

	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is the number of records in the refreshed dataset.
	ItemsProcessed int
}

// Duration returns how long the run took.
func (r *TaskResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TickInterval is how often the scheduler checks for due tasks.
	TickInterval time.Duration

	// HistoryLimit is the number of results kept per task.
	HistoryLimit int

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Interval defines how often the task should run.
	Interval time.Duration

	// RunOnce runs the task a single time at startup.
	RunOnce bool
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns the refresh cadence of each dataset.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:      true,
		TickInterval: 5 * time.Second,
		HistoryLimit: 100,
		TaskConfigs: map[string]TaskConfig{
			TaskIDSubstanceRefresh: {
				Enabled:  true,
				Interval: 60 * time.Second,
			},
			TaskIDCategoryRefresh: {
				Enabled:  true,
				Interval: 60 * time.Second,
			},
			TaskIDErowidRefresh: {
				Enabled:  true,
				Interval: time.Hour,
			},
			TaskIDComboRefresh: {
				Enabled: true,
				RunOnce: true,
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	TaskIDSubstanceRefresh = "substance-refresh"
	TaskIDCategoryRefresh  = "category-refresh"
	TaskIDErowidRefresh    = "erowid-refresh"
	TaskIDComboRefresh     = "combo-refresh"
)

// TaskDataset returns the dataset a built-in task refreshes.
func TaskDataset(taskID string) (Dataset, bool) {
	switch taskID {
	case TaskIDSubstanceRefresh:
		return DatasetSubstances, true
	case TaskIDCategoryRefresh:
		return DatasetCategories, true
	case TaskIDErowidRefresh:
		return DatasetErowid, true
	case TaskIDComboRefresh:
		return DatasetCombos, true
	default:
		return "", false
	}
}
