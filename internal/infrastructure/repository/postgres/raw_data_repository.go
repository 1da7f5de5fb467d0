package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/rawdata"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

// An unchanged body matches no row, so RowsAffected tells whether the
// archive moved.
const archivePayloadSuffix = `ON CONFLICT (source, request_key) DO UPDATE SET
    endpoint = EXCLUDED.endpoint,
    tournament_id = EXCLUDED.tournament_id,
    payload = EXCLUDED.payload,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at,
    ingested_at = NOW()
WHERE raw_data_payloads.payload_hash IS DISTINCT FROM EXCLUDED.payload_hash`

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) Archive(ctx context.Context, item rawdata.Payload) (bool, error) {
	fetchedAt := item.FetchedAt.UTC()
	if item.FetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	model := rawPayloadInsertModel{
		Source:       item.Source,
		Endpoint:     item.Endpoint,
		RequestKey:   item.RequestKey,
		TournamentID: int64PtrToNull(item.TournamentID),
		Payload:      item.PayloadJSON,
		PayloadHash:  item.PayloadHash,
		FetchedAt:    fetchedAt,
	}

	query, args, err := qb.InsertModel("raw_data_payloads", model, archivePayloadSuffix)
	if err != nil {
		return false, fmt.Errorf("build archive payload query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("archive payload source=%s key=%s: %w", item.Source, item.RequestKey, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archive payload rows affected: %w", err)
	}
	return affected > 0, nil
}

type rawPayloadInsertModel struct {
	Source       string        `db:"source"`
	Endpoint     string        `db:"endpoint"`
	RequestKey   string        `db:"request_key"`
	TournamentID sql.NullInt64 `db:"tournament_id"`
	Payload      string        `db:"payload"`
	PayloadHash  string        `db:"payload_hash"`
	FetchedAt    time.Time     `db:"fetched_at"`
}
