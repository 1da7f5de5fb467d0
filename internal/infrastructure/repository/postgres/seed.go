package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
)

// BootstrapSeed inserts the default countries, tournaments and their
// provider league ids into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM tournaments`); err != nil {
		return fmt.Errorf("count tournaments for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, seed := range memory.DefaultTournaments() {
		t := seed.Tournament

		var countryID int64
		if err := tx.GetContext(ctx, &countryID, `
INSERT INTO countries (title, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title
RETURNING id`, seed.Country.Title, seed.Country.Slug); err != nil {
			return fmt.Errorf("seed country %s: %w", seed.Country.Slug, err)
		}

		sqlQuery, args, err := sqlx.Named(`
INSERT INTO tournaments (title, slug, season, country_id, is_current, is_regular, tours_count, points_per_win, points_per_draw, sort_order)
VALUES (:title, :slug, :season, :country_id, :is_current, :is_regular, :tours_count, :points_per_win, :points_per_draw, :sort_order)
ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
RETURNING id`, map[string]any{
			"title":           t.Title,
			"slug":            t.Slug,
			"season":          t.Season,
			"country_id":      countryID,
			"is_current":      t.Current,
			"is_regular":      t.IsRegular,
			"tours_count":     t.ToursCount,
			"points_per_win":  t.PointsPerWin,
			"points_per_draw": t.PointsPerDraw,
			"sort_order":      t.Order,
		})
		if err != nil {
			return fmt.Errorf("bind seed tournament %s query: %w", t.Slug, err)
		}

		var id int64
		if err := tx.GetContext(ctx, &id, tx.Rebind(sqlQuery), args...); err != nil {
			return fmt.Errorf("seed tournament %s: %w", t.Slug, err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO external_ids (kind, entity_id, external_id)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING`, string(externalid.KindTournament), id, seed.LeagueID); err != nil {
			return fmt.Errorf("seed tournament %s external id: %w", t.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
