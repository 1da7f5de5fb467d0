package postgres

import "time"

type externalIDTableModel struct {
	ID         int64     `db:"id"`
	Kind       string    `db:"kind"`
	EntityID   int64     `db:"entity_id"`
	ExternalID int64     `db:"external_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type externalIDInsertModel struct {
	Kind       string `db:"kind"`
	EntityID   int64  `db:"entity_id"`
	ExternalID int64  `db:"external_id"`
}
