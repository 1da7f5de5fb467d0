package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
)

type ExternalIDRepository struct {
	db *Database
}

func NewExternalIDRepository(db *Database) *ExternalIDRepository {
	return &ExternalIDRepository{db: db}
}

func (r *ExternalIDRepository) Resolve(_ context.Context, kind externalid.Kind, externalID int64) (externalid.Record, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	item, ok := r.db.findExternal(kind, func(rec externalid.Record) bool { return rec.ExternalID == externalID })
	return item, ok, nil
}

func (r *ExternalIDRepository) LookupByInternal(_ context.Context, kind externalid.Kind, entityID int64) (externalid.Record, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	item, ok := r.db.findExternal(kind, func(rec externalid.Record) bool { return rec.EntityID == entityID })
	return item, ok, nil
}

func (r *ExternalIDRepository) Register(_ context.Context, kind externalid.Kind, externalID, entityID int64) (externalid.Record, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.registerExternal(kind, externalID, entityID)
}

func (r *ExternalIDRepository) Remove(_ context.Context, kind externalid.Kind, entityID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	return r.db.removeExternal(kind, entityID), nil
}

// must hold db.mu
func (db *Database) findExternal(kind externalid.Kind, match func(externalid.Record) bool) (externalid.Record, bool) {
	for _, item := range db.externalIDs {
		if item.Kind == kind && match(item) {
			return item, true
		}
	}
	return externalid.Record{}, false
}

// registerExternal keeps the mapping one-to-one within a kind, like the
// external_ids unique constraints. Caller must hold db.mu.
func (db *Database) registerExternal(kind externalid.Kind, externalID, entityID int64) (externalid.Record, error) {
	if !kind.Valid() {
		return externalid.Record{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	for _, item := range db.externalIDs {
		if item.Kind != kind {
			continue
		}
		if item.ExternalID == externalID {
			return externalid.Record{}, fmt.Errorf("%w: kind=%s external_id=%d", externalid.ErrAlreadyRegistered, kind, externalID)
		}
		if item.EntityID == entityID {
			return externalid.Record{}, fmt.Errorf("%w: kind=%s entity_id=%d", externalid.ErrAlreadyRegistered, kind, entityID)
		}
	}

	item := externalid.Record{
		ID:         db.allocID(),
		Kind:       kind,
		EntityID:   entityID,
		ExternalID: externalID,
		CreatedAt:  time.Now().UTC(),
	}
	db.externalIDs[item.ID] = item
	return item, nil
}

// must hold db.mu
func (db *Database) removeExternal(kind externalid.Kind, entityID int64) bool {
	removed := false
	for id, item := range db.externalIDs {
		if item.Kind == kind && item.EntityID == entityID {
			delete(db.externalIDs, id)
			removed = true
		}
	}
	return removed
}

// SeedExternalID registers a mapping, for fixtures and local runs.
func (db *Database) SeedExternalID(kind externalid.Kind, externalID, entityID int64) externalid.Record {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, err := db.registerExternal(kind, externalID, entityID)
	if err != nil {
		panic(err)
	}
	return item
}
