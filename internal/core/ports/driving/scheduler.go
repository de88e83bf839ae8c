package driving

import (
	"context"

	"github.com/custodia-labs/factsheets/internal/core/domain"
)

// Scheduler keeps the cached datasets fresh in the background.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Tasks returns the current state of every task.
	Tasks(ctx context.Context) ([]domain.ScheduledTask, error)
}
