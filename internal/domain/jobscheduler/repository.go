package jobscheduler

import "context"

// Repository keeps the latest state of every dispatch id.
type Repository interface {
	// Record stores event unless the stored state is newer, see
	// DispatchEvent.Supersedes.
	Record(ctx context.Context, event DispatchEvent) error
}
