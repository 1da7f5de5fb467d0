package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

type ExternalIDRepository struct {
	db *sqlx.DB
}

func NewExternalIDRepository(db *sqlx.DB) *ExternalIDRepository {
	return &ExternalIDRepository{db: db}
}

func (r *ExternalIDRepository) Resolve(ctx context.Context, kind externalid.Kind, externalID int64) (externalid.Record, bool, error) {
	return r.findOne(ctx, "resolve", qb.Eq("kind", string(kind)), qb.Eq("external_id", externalID))
}

func (r *ExternalIDRepository) LookupByInternal(ctx context.Context, kind externalid.Kind, entityID int64) (externalid.Record, bool, error) {
	return r.findOne(ctx, "lookup", qb.Eq("kind", string(kind)), qb.Eq("entity_id", entityID))
}

func (r *ExternalIDRepository) Register(ctx context.Context, kind externalid.Kind, externalID, entityID int64) (externalid.Record, error) {
	return registerExternalID(ctx, r.db, kind, externalID, entityID)
}

func (r *ExternalIDRepository) Remove(ctx context.Context, kind externalid.Kind, entityID int64) (bool, error) {
	return removeExternalID(ctx, r.db, kind, entityID)
}

func (r *ExternalIDRepository) findOne(ctx context.Context, op string, conditions ...qb.Condition) (externalid.Record, bool, error) {
	query, args, err := qb.Select("*").From("external_ids").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return externalid.Record{}, false, fmt.Errorf("build %s external id query: %w", op, err)
	}

	var row externalIDTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return externalid.Record{}, false, nil
		}
		return externalid.Record{}, false, fmt.Errorf("%s external id: %w", op, err)
	}

	record, err := externalIDFromRow(row)
	if err != nil {
		return externalid.Record{}, false, err
	}
	return record, true, nil
}

// registerExternalID inserts the mapping on db, which may be a transaction
// owned by the caller.
func registerExternalID(ctx context.Context, db querier, kind externalid.Kind, externalID, entityID int64) (externalid.Record, error) {
	query, args, err := qb.InsertModel("external_ids", externalIDInsertModel{
		Kind:       string(kind),
		EntityID:   entityID,
		ExternalID: externalID,
	}, "RETURNING *")
	if err != nil {
		return externalid.Record{}, fmt.Errorf("build insert external id query: %w", err)
	}

	var row externalIDTableModel
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return externalid.Record{}, fmt.Errorf("%w: kind=%s external_id=%d entity_id=%d", externalid.ErrAlreadyRegistered, kind, externalID, entityID)
		}
		return externalid.Record{}, fmt.Errorf("insert external id kind=%s external_id=%d: %w", kind, externalID, err)
	}

	return externalIDFromRow(row)
}

func removeExternalID(ctx context.Context, db querier, kind externalid.Kind, entityID int64) (bool, error) {
	query, args, err := qb.DeleteFrom("external_ids").
		Where(qb.Eq("kind", string(kind)), qb.Eq("entity_id", entityID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete external id query: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete external id kind=%s entity_id=%d: %w", kind, entityID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted external id rows: %w", err)
	}

	return affected > 0, nil
}

func externalIDFromRow(row externalIDTableModel) (externalid.Record, error) {
	kind, err := externalid.ParseKind(row.Kind)
	if err != nil {
		return externalid.Record{}, fmt.Errorf("external id row=%d: %w", row.ID, err)
	}
	return externalid.Record{
		ID:         row.ID,
		Kind:       kind,
		EntityID:   row.EntityID,
		ExternalID: row.ExternalID,
		CreatedAt:  row.CreatedAt,
	}, nil
}
