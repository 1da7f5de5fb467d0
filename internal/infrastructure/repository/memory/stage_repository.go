package memory

import (
	"context"
	"strings"

	"github.com/riskibarqy/football-stats/internal/domain/stage"
)

type StageRepository struct {
	db *Database
}

func NewStageRepository(db *Database) *StageRepository {
	return &StageRepository{db: db}
}

func (r *StageRepository) GetOrCreate(_ context.Context, providerTitle string) (stage.Stage, error) {
	key := stage.NormalizeProviderTitle(providerTitle)

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, item := range r.db.stages {
		if stage.NormalizeProviderTitle(item.ProviderTitle) == key {
			return item, nil
		}
	}

	title := strings.TrimSpace(providerTitle)
	item := stage.Stage{ID: r.db.allocID(), Title: title, ProviderTitle: title}
	r.db.stages[item.ID] = item
	return item, nil
}
