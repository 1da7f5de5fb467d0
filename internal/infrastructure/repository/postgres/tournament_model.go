package postgres

import (
	"database/sql"
	"time"
)

type tournamentTableModel struct {
	ID             int64         `db:"id"`
	Title          string        `db:"title"`
	Slug           string        `db:"slug"`
	Season         string        `db:"season"`
	ProviderSeason string        `db:"provider_season"`
	CountryID      sql.NullInt64 `db:"country_id"`
	Current        bool          `db:"is_current"`
	IsRegular      bool          `db:"is_regular"`
	ToursCount     int           `db:"tours_count"`
	PointsPerWin   int           `db:"points_per_win"`
	PointsPerDraw  int           `db:"points_per_draw"`
	Order          int           `db:"sort_order"`
	LogoPath       string        `db:"logo_path"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}
