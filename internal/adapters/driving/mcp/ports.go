package mcp

import (
	"github.com/custodia-labs/factsheets/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Factsheet answers lookups and listings.
	Factsheet driving.FactsheetService

	// Scheduler reports background refresh state. Optional.
	Scheduler driving.Scheduler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Factsheet == nil {
		return ErrMissingFactsheetService
	}
	return nil
}
