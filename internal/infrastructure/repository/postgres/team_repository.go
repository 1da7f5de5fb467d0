package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/team"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team id=%d: %w", id, err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) CreateWithExternalID(ctx context.Context, item team.Team, externalID int64) (team.Team, error) {
	if err := item.Validate(); err != nil {
		return team.Team{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return team.Team{}, fmt.Errorf("begin tx create team: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("teams", teamInsertModel{
		Title:       item.Title,
		Slug:        item.Slug,
		City:        item.City,
		CountryID:   int64PtrToNull(item.CountryID),
		IsModerated: item.IsModerated,
		LogoPath:    item.LogoPath,
	}, "RETURNING id")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}

	if err := tx.GetContext(ctx, &item.ID, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == "teams_slug_key" {
			return team.Team{}, fmt.Errorf("%w: slug=%s", team.ErrSlugTaken, item.Slug)
		}
		return team.Team{}, fmt.Errorf("insert team slug=%s: %w", item.Slug, err)
	}

	if _, err := registerExternalID(ctx, tx, externalid.KindTeam, externalID, item.ID); err != nil {
		return team.Team{}, err
	}

	if err := tx.Commit(); err != nil {
		return team.Team{}, fmt.Errorf("commit create team tx: %w", err)
	}

	return item, nil
}

func (r *TeamRepository) UpdateLogo(ctx context.Context, id int64, logoPath string) error {
	query, args, err := qb.Update("teams").
		Set("logo_path", logoPath).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team logo query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team logo id=%d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team=%d not found", id)
	}

	return nil
}

func (r *TeamRepository) ListMissingLogo(ctx context.Context, ids []int64) ([]team.Team, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("teams").
		Where(qb.In("id", ids), qb.Eq("logo_path", "")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams missing logo query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams missing logo: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		City:        row.City,
		CountryID:   nullInt64Ptr(row.CountryID),
		IsModerated: row.IsModerated,
		LogoPath:    row.LogoPath,
	}
}
