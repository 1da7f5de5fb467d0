package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament id=%d: %w", id, err)
	}

	return tournamentFromRow(row), true, nil
}

func (r *TournamentRepository) ListCurrent(ctx context.Context) ([]tournament.Tournament, error) {
	return r.list(ctx, "current", qb.Eq("is_current", true))
}

func (r *TournamentRepository) ListByIDs(ctx context.Context, ids []int64) ([]tournament.Tournament, error) {
	return r.list(ctx, "by ids", qb.In("id", ids))
}

func (r *TournamentRepository) list(ctx context.Context, label string, conditions ...qb.Condition) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From("tournaments").
		Where(conditions...).
		OrderBy("sort_order", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournaments %s query: %w", label, err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tournaments %s: %w", label, err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournamentFromRow(row))
	}
	return out, nil
}

func tournamentFromRow(row tournamentTableModel) tournament.Tournament {
	return tournament.Tournament{
		ID:             row.ID,
		Title:          row.Title,
		Slug:           row.Slug,
		Season:         row.Season,
		ProviderSeason: row.ProviderSeason,
		CountryID:      nullInt64Ptr(row.CountryID),
		Current:        row.Current,
		IsRegular:      row.IsRegular,
		ToursCount:     row.ToursCount,
		PointsPerWin:   row.PointsPerWin,
		PointsPerDraw:  row.PointsPerDraw,
		Order:          row.Order,
		LogoPath:       row.LogoPath,
	}
}
