package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID              int64          `db:"id"`
	TournamentID    int64          `db:"tournament_id"`
	StageID         sql.NullInt64  `db:"stage_id"`
	Group           string         `db:"group_name"`
	Tour            sql.NullInt64  `db:"tour"`
	Date            time.Time      `db:"match_date"`
	MainTeamID      int64          `db:"main_team_id"`
	OpponentID      int64          `db:"opponent_id"`
	AtHome          bool           `db:"at_home"`
	Result          sql.NullString `db:"result"`
	Status          string         `db:"status"`
	PointsReceived  int            `db:"points_received"`
	GoalsScored     sql.NullInt64  `db:"goals_scored"`
	GoalsConceded   sql.NullInt64  `db:"goals_conceded"`
	Score           sql.NullString `db:"score"`
	GoalsStats      sql.NullString `db:"goals_stats"`
	IsModerated     bool           `db:"is_moderated"`
	OppositeMatchID sql.NullInt64  `db:"opposite_match_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type matchInsertModel struct {
	TournamentID    int64          `db:"tournament_id"`
	StageID         sql.NullInt64  `db:"stage_id"`
	Group           string         `db:"group_name"`
	Tour            sql.NullInt64  `db:"tour"`
	Date            time.Time      `db:"match_date"`
	MainTeamID      int64          `db:"main_team_id"`
	OpponentID      int64          `db:"opponent_id"`
	AtHome          bool           `db:"at_home"`
	Result          sql.NullString `db:"result"`
	Status          string         `db:"status"`
	PointsReceived  int            `db:"points_received"`
	GoalsScored     sql.NullInt64  `db:"goals_scored"`
	GoalsConceded   sql.NullInt64  `db:"goals_conceded"`
	Score           string         `db:"score"`
	IsModerated     bool           `db:"is_moderated"`
	OppositeMatchID sql.NullInt64  `db:"opposite_match_id"`
}
