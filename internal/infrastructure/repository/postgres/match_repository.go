package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	return getMatch(ctx, r.db, id)
}

func (r *MatchRepository) CreatePair(ctx context.Context, home, away match.Match, externalID int64) (match.Pair, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Pair{}, fmt.Errorf("begin tx create match pair: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	homeID, err := insertMatch(ctx, tx, home, 0)
	if err != nil {
		return match.Pair{}, err
	}
	awayID, err := insertMatch(ctx, tx, away, homeID)
	if err != nil {
		return match.Pair{}, err
	}

	query, args, err := qb.Update("matches").
		Set("opposite_match_id", awayID).
		Where(qb.Eq("id", homeID)).
		ToSQL()
	if err != nil {
		return match.Pair{}, fmt.Errorf("build link match pair query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return match.Pair{}, fmt.Errorf("link match pair home=%d away=%d: %w", homeID, awayID, err)
	}

	if _, err := registerExternalID(ctx, tx, externalid.KindMatch, externalID, homeID); err != nil {
		if errors.Is(err, externalid.ErrAlreadyRegistered) {
			return match.Pair{}, fmt.Errorf("%w: fixture=%d", match.ErrConflict, externalID)
		}
		return match.Pair{}, err
	}

	pair, err := loadPair(ctx, tx, homeID, awayID)
	if err != nil {
		return match.Pair{}, err
	}

	if err := tx.Commit(); err != nil {
		return match.Pair{}, fmt.Errorf("commit create match pair tx: %w", err)
	}

	return pair, nil
}

func (r *MatchRepository) UpdatePair(ctx context.Context, home, away match.Match) (match.Pair, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Pair{}, fmt.Errorf("begin tx update match pair: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stored, found, err := getMatch(ctx, tx, home.ID)
	if err != nil {
		return match.Pair{}, err
	}
	if !found {
		return match.Pair{}, fmt.Errorf("match=%d not found", home.ID)
	}

	mirrorID, found, err := findMirrorID(ctx, tx, stored)
	if err != nil {
		return match.Pair{}, err
	}
	if !found {
		return match.Pair{}, fmt.Errorf("%w: home=%d", match.ErrMirrorMissing, home.ID)
	}

	if err := updateMutable(ctx, tx, home.ID, home); err != nil {
		return match.Pair{}, err
	}
	if err := updateMutable(ctx, tx, mirrorID, away); err != nil {
		return match.Pair{}, err
	}

	pair, err := loadPair(ctx, tx, home.ID, mirrorID)
	if err != nil {
		return match.Pair{}, err
	}

	if err := tx.Commit(); err != nil {
		return match.Pair{}, fmt.Errorf("commit update match pair tx: %w", err)
	}

	return pair, nil
}

func (r *MatchRepository) DeletePair(ctx context.Context, homeID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx delete match pair: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	home, found, err := getMatch(ctx, tx, homeID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("match=%d not found", homeID)
	}

	mirrorID, mirrorFound, err := findMirrorID(ctx, tx, home)
	if err != nil {
		return false, err
	}
	if mirrorFound {
		if err := deleteMatch(ctx, tx, mirrorID); err != nil {
			return false, err
		}
	}
	if _, err := removeExternalID(ctx, tx, externalid.KindMatch, homeID); err != nil {
		return false, err
	}
	if err := deleteMatch(ctx, tx, homeID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete match pair tx: %w", err)
	}

	return mirrorFound, nil
}

func (r *MatchRepository) ListCompletedByTournamentAndDate(ctx context.Context, tournamentID int64, day time.Time) ([]match.Match, error) {
	from := day.UTC()
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Eq("at_home", true),
			qb.Eq("status", string(match.StatusFullTime)),
			qb.Expr("match_date >= ? AND match_date < ?", from, from.Add(24*time.Hour)),
		).
		OrderBy("match_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select completed matches query: %w", err)
	}

	return r.selectMatches(ctx, "completed matches", query, args)
}

func (r *MatchRepository) ListMissingGoalStats(ctx context.Context, limit int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("at_home", true),
			qb.Eq("status", string(match.StatusFullTime)),
			qb.IsNull("goals_stats"),
		).
		OrderBy("id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches missing goal stats query: %w", err)
	}

	return r.selectMatches(ctx, "matches missing goal stats", query, args)
}

func (r *MatchRepository) UpdateGoalStats(ctx context.Context, id int64, stats match.GoalsStats) error {
	encoded, err := encodeGoalsStats(stats)
	if err != nil {
		return fmt.Errorf("encode goals stats match=%d: %w", id, err)
	}

	query, args, err := qb.Update("matches").
		Set("goals_stats", encoded).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update goals stats query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update goals stats match=%d: %w", id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("match=%d not found", id)
	}

	return nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, label, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", label, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func getMatch(ctx context.Context, db querier, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match id=%d: %w", id, err)
	}

	return matchFromRow(row), true, nil
}

func loadPair(ctx context.Context, db querier, homeID, awayID int64) (match.Pair, error) {
	home, found, err := getMatch(ctx, db, homeID)
	if err != nil {
		return match.Pair{}, err
	}
	if !found {
		return match.Pair{}, fmt.Errorf("match=%d not found after write", homeID)
	}
	away, found, err := getMatch(ctx, db, awayID)
	if err != nil {
		return match.Pair{}, err
	}
	if !found {
		return match.Pair{}, fmt.Errorf("match=%d not found after write", awayID)
	}
	return match.Pair{Home: home, Away: away}, nil
}

// findMirrorID follows opposite_match_id first and falls back to the reverse
// link for rows written before both sides were linked.
func findMirrorID(ctx context.Context, db querier, home match.Match) (int64, bool, error) {
	conditions := []qb.Condition{qb.Eq("opposite_match_id", home.ID)}
	if home.OppositeMatchID > 0 {
		conditions = []qb.Condition{qb.Eq("id", home.OppositeMatchID)}
	}

	query, args, err := qb.Select("id").From("matches").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build find mirror query: %w", err)
	}

	var id int64
	err = db.GetContext(ctx, &id, query, args...)
	switch {
	case err == nil:
		return id, true, nil
	case isNotFound(err) && home.OppositeMatchID > 0:
		return findMirrorID(ctx, db, match.Match{ID: home.ID})
	case isNotFound(err):
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("find mirror of match=%d: %w", home.ID, err)
	}
}

func insertMatch(ctx context.Context, db querier, item match.Match, oppositeID int64) (int64, error) {
	model := matchInsertModel{
		TournamentID:   item.TournamentID,
		StageID:        int64PtrToNull(item.StageID),
		Group:          item.Group,
		Tour:           intPtrToNull(item.Tour),
		Date:           item.Date.UTC(),
		MainTeamID:     item.MainTeamID,
		OpponentID:     item.OpponentID,
		AtHome:         item.AtHome,
		Result:         resultToNull(item.Result),
		Status:         string(item.Status),
		PointsReceived: item.PointsReceived,
		GoalsScored:    intPtrToNull(item.GoalsScored),
		GoalsConceded:  intPtrToNull(item.GoalsConceded),
		Score:          encodeJSONMap(item.Score),
		IsModerated:    item.IsModerated,
	}
	if oppositeID > 0 {
		model.OppositeMatchID = sql.NullInt64{Int64: oppositeID, Valid: true}
	}

	query, args, err := qb.InsertModel("matches", model, "RETURNING id")
	if err != nil {
		return 0, fmt.Errorf("build insert match query: %w", err)
	}

	var id int64
	if err := db.GetContext(ctx, &id, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return 0, fmt.Errorf("%w: constraint=%s main_team=%d opponent=%d", match.ErrConflict, constraint, item.MainTeamID, item.OpponentID)
		}
		return 0, fmt.Errorf("insert match main_team=%d opponent=%d: %w", item.MainTeamID, item.OpponentID, err)
	}

	return id, nil
}

func updateMutable(ctx context.Context, db querier, id int64, item match.Match) error {
	query, args, err := qb.Update("matches").
		Set("match_date", item.Date.UTC()).
		Set("status", string(item.Status)).
		Set("goals_scored", intPtrToNull(item.GoalsScored)).
		Set("goals_conceded", intPtrToNull(item.GoalsConceded)).
		Set("result", resultToNull(item.Result)).
		Set("points_received", item.PointsReceived).
		Set("is_moderated", item.IsModerated).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("%w: match=%d", match.ErrConflict, id)
		}
		return fmt.Errorf("update match id=%d: %w", id, err)
	}
	return nil
}

func deleteMatch(ctx context.Context, db querier, id int64) error {
	query, args, err := qb.DeleteFrom("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete match query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete match id=%d: %w", id, err)
	}
	return nil
}

func matchFromRow(row matchTableModel) match.Match {
	item := match.Match{
		ID:             row.ID,
		TournamentID:   row.TournamentID,
		StageID:        nullInt64Ptr(row.StageID),
		Group:          row.Group,
		Tour:           nullIntPtr(row.Tour),
		Date:           row.Date.UTC(),
		MainTeamID:     row.MainTeamID,
		OpponentID:     row.OpponentID,
		AtHome:         row.AtHome,
		Status:         match.Status(row.Status),
		PointsReceived: row.PointsReceived,
		GoalsScored:    nullIntPtr(row.GoalsScored),
		GoalsConceded:  nullIntPtr(row.GoalsConceded),
		Score:          decodeJSONMap(row.Score.String),
		IsModerated:    row.IsModerated,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.Result.Valid {
		result := match.Result(row.Result.String)
		item.Result = &result
	}
	if row.OppositeMatchID.Valid {
		item.OppositeMatchID = row.OppositeMatchID.Int64
	}
	if row.GoalsStats.Valid {
		item.GoalsStats = decodeGoalsStats(row.GoalsStats.String)
	}
	return item
}

func resultToNull(result *match.Result) sql.NullString {
	if result == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*result), Valid: true}
}

// goals_stats is keyed by minute; JSON object keys are strings.
func encodeGoalsStats(stats match.GoalsStats) (string, error) {
	keyed := make(map[string]match.GoalEvent, len(stats))
	for minute, event := range stats {
		keyed[strconv.Itoa(minute)] = event
	}
	raw, err := jsoniter.Marshal(keyed)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeGoalsStats(raw string) match.GoalsStats {
	out := match.GoalsStats{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out
	}

	var keyed map[string]match.GoalEvent
	if err := jsoniter.UnmarshalFromString(raw, &keyed); err != nil {
		return out
	}
	for key, event := range keyed {
		minute, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[minute] = event
	}
	return out
}
