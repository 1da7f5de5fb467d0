package postgres

import "time"

// Only the timestamp matching the event status is set; the upsert keeps the
// others from earlier events.
type jobDispatchInsertModel struct {
	DispatchID string     `db:"dispatch_id"`
	JobName    string     `db:"job_name"`
	Mode       string     `db:"mode"`
	Scope      string     `db:"scope"`
	Payload    string     `db:"payload"`
	Status     string     `db:"status"`
	Summary    *string    `db:"summary"`
	LastError  *string    `db:"last_error"`
	TraceID    *string    `db:"trace_id,omitempty"`
	SpanID     *string    `db:"span_id,omitempty"`
	SentAt     *time.Time `db:"sent_at"`
	StartedAt  *time.Time `db:"started_at"`
	FinishedAt *time.Time `db:"finished_at"`
}
