package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/stage"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type StageRepository struct {
	db *sqlx.DB
}

func NewStageRepository(db *sqlx.DB) *StageRepository {
	return &StageRepository{db: db}
}

type stageTableModel struct {
	ID            int64  `db:"id"`
	Title         string `db:"title"`
	ProviderTitle string `db:"provider_title"`
}

// GetOrCreate keys stages by the normalized provider label. The no-op update
// on conflict makes RETURNING yield the existing row.
func (r *StageRepository) GetOrCreate(ctx context.Context, providerTitle string) (stage.Stage, error) {
	title := strings.TrimSpace(providerTitle)
	key := stage.NormalizeProviderTitle(title)
	if key == "" {
		return stage.Stage{}, fmt.Errorf("stage provider title is required")
	}

	query, args, err := qb.InsertInto("stages").
		Columns("title", "provider_title").
		Values(title, key).
		Suffix(`ON CONFLICT (provider_title) DO UPDATE SET provider_title = EXCLUDED.provider_title
RETURNING id, title, provider_title`).
		ToSQL()
	if err != nil {
		return stage.Stage{}, fmt.Errorf("build get or create stage query: %w", err)
	}

	var row stageTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return stage.Stage{}, fmt.Errorf("get or create stage title=%s: %w", title, err)
	}

	return stage.Stage{ID: row.ID, Title: row.Title, ProviderTitle: row.ProviderTitle}, nil
}
