// Package gather downloads market data into the local bar store. Gatherers
// are long-running batch jobs driven by a context; they are resumable because
// the store merges and deduplicates on write.
package gather

import "context"

// Gatherer is the interface for all data gathering processes.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run executes the gathering process, blocking until done or ctx is
	// cancelled.
	Run(ctx context.Context) error
}
