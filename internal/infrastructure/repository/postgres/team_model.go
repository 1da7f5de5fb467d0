package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID          int64         `db:"id"`
	Title       string        `db:"title"`
	Slug        string        `db:"slug"`
	City        string        `db:"city"`
	CountryID   sql.NullInt64 `db:"country_id"`
	IsModerated bool          `db:"is_moderated"`
	LogoPath    string        `db:"logo_path"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type teamInsertModel struct {
	Title       string        `db:"title"`
	Slug        string        `db:"slug"`
	City        string        `db:"city"`
	CountryID   sql.NullInt64 `db:"country_id"`
	IsModerated bool          `db:"is_moderated"`
	LogoPath    string        `db:"logo_path"`
}
