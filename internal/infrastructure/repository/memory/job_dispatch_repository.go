package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-stats/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	db *Database
}

func NewJobDispatchRepository(db *Database) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) Record(_ context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if current, ok := r.db.dispatches[dispatchID]; ok {
		if !event.Supersedes(current) {
			return nil
		}
		event.Mode = current.Mode
	}
	r.db.dispatches[dispatchID] = event
	return nil
}
