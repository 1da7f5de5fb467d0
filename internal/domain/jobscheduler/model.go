package jobscheduler

import "time"

// DispatchStatus moves sent -> running -> completed|failed. Inline runs start
// at running.
type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusRunning   DispatchStatus = "running"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

func (s DispatchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DispatchMode is where a run was first dispatched to. It is kept from the
// first event of a dispatch.
type DispatchMode string

const (
	ModeInline DispatchMode = "inline"
	ModeAsync  DispatchMode = "async"
	ModeQueued DispatchMode = "queued"
)

// DispatchEvent is one status transition of an ingestion job run. Scope lists
// the targeted tournament ids, "all" when unrestricted.
type DispatchEvent struct {
	DispatchID   string
	Job          string
	Mode         DispatchMode
	Scope        string
	Status       DispatchStatus
	Payload      map[string]any
	Summary      string
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}

// Supersedes reports whether e may replace the stored state current. A late
// sent event never rewinds a run that already started.
func (e DispatchEvent) Supersedes(current DispatchEvent) bool {
	return e.Status != StatusSent || current.Status == StatusSent
}
