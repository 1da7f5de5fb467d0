package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-stats/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/football-stats/internal/platform/querybuilder"
)

// The WHERE clause mirrors jobscheduler.DispatchEvent.Supersedes. mode is
// never updated so it keeps the origin of the dispatch.
const upsertJobDispatchSuffix = `ON CONFLICT (dispatch_id) DO UPDATE SET
    job_name = EXCLUDED.job_name,
    scope = EXCLUDED.scope,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    summary = EXCLUDED.summary,
    last_error = EXCLUDED.last_error,
    trace_id = COALESCE(EXCLUDED.trace_id, job_dispatches.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, job_dispatches.span_id),
    sent_at = COALESCE(job_dispatches.sent_at, EXCLUDED.sent_at),
    started_at = COALESCE(EXCLUDED.started_at, job_dispatches.started_at),
    finished_at = EXCLUDED.finished_at,
    updated_at = NOW()
WHERE EXCLUDED.status <> 'sent' OR job_dispatches.status = 'sent'`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

func (r *JobDispatchRepository) Record(ctx context.Context, event jobscheduler.DispatchEvent) error {
	model, err := jobDispatchModel(event)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", model.DispatchID, event.Status, err)
	}
	return nil
}

func jobDispatchModel(event jobscheduler.DispatchEvent) (jobDispatchInsertModel, error) {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return jobDispatchInsertModel{}, fmt.Errorf("dispatch id is required")
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return jobDispatchInsertModel{}, fmt.Errorf("marshal job dispatch payload: %w", err)
	}

	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    defaultString(event.Job, "unknown"),
		Mode:       defaultString(string(event.Mode), string(jobscheduler.ModeInline)),
		Scope:      defaultString(event.Scope, "all"),
		Payload:    payloadJSON,
		Status:     string(event.Status),
		Summary:    optionalString(event.Summary),
		LastError:  optionalString(event.ErrorMessage),
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	switch event.Status {
	case jobscheduler.StatusSent:
		model.SentAt = &occurredAt
	case jobscheduler.StatusRunning:
		model.StartedAt = &occurredAt
	case jobscheduler.StatusCompleted, jobscheduler.StatusFailed:
		model.FinishedAt = &occurredAt
	default:
		return jobDispatchInsertModel{}, fmt.Errorf("unknown dispatch status %q", event.Status)
	}
	return model, nil
}

func defaultString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
