package memory

import (
	"context"

	"github.com/riskibarqy/football-stats/internal/domain/rawdata"
)

type RawDataRepository struct {
	db *Database
}

func NewRawDataRepository(db *Database) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Archive(_ context.Context, item rawdata.Payload) (bool, error) {
	key := item.Source + "|" + item.RequestKey

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if current, ok := r.db.payloads[key]; ok && current.PayloadHash == item.PayloadHash {
		return false, nil
	}
	r.db.payloads[key] = item
	return true, nil
}
