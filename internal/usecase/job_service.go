package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

type JobName string

const (
	JobFetchResults   JobName = "fetch-results"
	JobFetchTeams     JobName = "fetch-teams"
	JobFetchGoalStats JobName = "fetch-goal-stats"
)

func ParseJobName(raw string) (JobName, error) {
	name := JobName(strings.ToLower(strings.TrimSpace(raw)))
	switch name {
	case JobFetchResults, JobFetchTeams, JobFetchGoalStats:
		return name, nil
	default:
		return "", fmt.Errorf("%w: unknown job %q", ErrInvalidInput, raw)
	}
}

// Path is the internal endpoint that runs the job.
func (n JobName) Path() string {
	return "/v1/internal/jobs/" + string(n)
}

type IDGenerator interface {
	NewID() (string, error)
}

type JobServiceConfig struct {
	DedupBucket time.Duration
}

type JobRunInput struct {
	Job           JobName
	TournamentIDs []int64
	Date          *time.Time
	Async         bool
	DispatchID    string
}

type JobRunResult struct {
	Job        JobName
	DispatchID string
	Queued     bool
	Report     IngestionReport
}

// Message is the short plain text status of the run.
func (r JobRunResult) Message() string {
	if r.Queued {
		return fmt.Sprintf("%s accepted dispatch_id=%s", r.Job, r.DispatchID)
	}
	return r.Report.Summary()
}

type BootstrapResult struct {
	QueuedCount      int      `json:"queued_count"`
	QueuedOperations []string `json:"queued_operations"`
}

// JobService runs ingestion jobs inline or on the executor and tracks every
// run as a dispatch event.
type JobService struct {
	ingestor     Ingestor
	executor     Executor
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobServiceConfig
	logger       *logging.Logger
	now          func() time.Time
	newID        func() string
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobService(
	ingestor Ingestor,
	executor Executor,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	idGen IDGenerator,
	cfg JobServiceConfig,
	logger *logging.Logger,
) *JobService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = 15 * time.Minute
	}

	svc := &JobService{
		ingestor:     ingestor,
		executor:     executor,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
	svc.newID = func() string {
		if idGen != nil {
			if id, err := idGen.NewID(); err == nil {
				return id
			}
		}
		return "run-" + strconv.FormatInt(svc.now().UnixNano(), 36)
	}
	return svc
}

func (s *JobService) Run(ctx context.Context, input JobRunInput) (JobRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.Run", attrJob.String(string(input.Job)))
	defer span.End()

	if _, err := ParseJobName(string(input.Job)); err != nil {
		return JobRunResult{}, err
	}
	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		dispatchID = s.newID()
	}
	result := JobRunResult{Job: input.Job, DispatchID: dispatchID}
	base := dispatchEvent{
		DispatchID: dispatchID,
		Job:        string(input.Job),
		Mode:       jobscheduler.ModeInline,
		Scope:      jobScope(input.TournamentIDs),
		Payload:    jobPayload(input),
	}

	if !input.Async || s.executor == nil {
		report, err := s.execute(ctx, input, base)
		result.Report = report
		return result, err
	}

	base.Mode = jobscheduler.ModeAsync
	s.recordDispatchEvent(ctx, base.withStatus(jobscheduler.StatusSent))

	err := s.executor.Submit(context.WithoutCancel(ctx), func(runCtx context.Context) {
		_, _ = s.execute(runCtx, input, base)
	})
	if err != nil {
		failed := base.withStatus(jobscheduler.StatusFailed)
		failed.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, failed)
		return JobRunResult{}, fmt.Errorf("%w: submit job %s: %v", ErrDependencyUnavailable, input.Job, err)
	}

	result.Queued = true
	return result, nil
}

func (s *JobService) execute(ctx context.Context, input JobRunInput, base dispatchEvent) (IngestionReport, error) {
	s.recordDispatchEvent(ctx, base.withStatus(jobscheduler.StatusRunning))

	var (
		report IngestionReport
		err    error
	)
	switch input.Job {
	case JobFetchResults:
		report, err = s.ingestor.FetchAndStoreResults(ctx, FetchResultsInput{TournamentIDs: input.TournamentIDs, Date: input.Date})
	case JobFetchTeams:
		report, err = s.ingestor.FetchAndStoreTeams(ctx, FetchTeamsInput{TournamentIDs: input.TournamentIDs})
	case JobFetchGoalStats:
		report, err = s.ingestor.FetchAndStoreGoalStats(ctx)
	}

	event := base.withStatus(jobscheduler.StatusCompleted)
	if report.Job != "" {
		event.Summary = report.Summary()
	}
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.logger.ErrorContext(ctx, "job failed", "job", input.Job, "dispatch_id", base.DispatchID, "error", err)
	}
	s.recordDispatchEvent(ctx, event)
	return report, err
}

// Bootstrap enqueues one run of every job through the external queue.
func (s *JobService) Bootstrap(ctx context.Context, tournamentIDs []int64) (BootstrapResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.Bootstrap", attrTournaments.Int64Slice(tournamentIDs))
	defer span.End()

	now := s.now().UTC()
	scope := jobScope(tournamentIDs)
	result := BootstrapResult{QueuedOperations: make([]string, 0, 3)}

	// Teams first so fixtures of new teams resolve on the results run.
	jobs := []struct {
		name  JobName
		delay time.Duration
	}{
		{name: JobFetchTeams},
		{name: JobFetchResults, delay: time.Minute},
		{name: JobFetchGoalStats, delay: 2 * time.Minute},
	}
	for _, job := range jobs {
		dedupID := dedupKey(string(job.name), scope, now.Add(job.delay), s.cfg.DedupBucket)
		payload := map[string]any{
			"tournament_ids": tournamentIDs,
			"dispatch_id":    dedupID,
		}

		event := dispatchEvent{
			DispatchID: dedupID,
			Job:        string(job.name),
			Mode:       jobscheduler.ModeQueued,
			Scope:      scope,
			Payload:    payload,
			OccurredAt: now,
		}.withStatus(jobscheduler.StatusSent)
		if err := s.queue.Enqueue(ctx, job.name.Path(), payload, job.delay, dedupID); err != nil {
			event.Status = jobscheduler.StatusFailed
			event.ErrorMessage = err.Error()
			s.recordDispatchEvent(ctx, event)
			return result, fmt.Errorf("enqueue %s scope=%s: %w", job.name, scope, err)
		}
		s.recordDispatchEvent(ctx, event)

		result.QueuedCount++
		result.QueuedOperations = append(result.QueuedOperations, string(job.name)+":"+scope)
	}

	return result, nil
}

// dispatchEvent carries the fields shared by every event of one run.
type dispatchEvent jobscheduler.DispatchEvent

func (e dispatchEvent) withStatus(status jobscheduler.DispatchStatus) jobscheduler.DispatchEvent {
	out := jobscheduler.DispatchEvent(e)
	out.Status = status
	return out
}

func jobPayload(input JobRunInput) map[string]any {
	payload := map[string]any{"async": input.Async}
	if len(input.TournamentIDs) > 0 {
		payload["tournament_ids"] = input.TournamentIDs
	}
	if input.Date != nil {
		payload["date"] = input.Date.UTC().Format(time.DateOnly)
	}
	return payload
}

func jobScope(tournamentIDs []int64) string {
	if len(tournamentIDs) == 0 {
		return "all"
	}
	parts := make([]string, 0, len(tournamentIDs))
	for _, id := range tournamentIDs {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, "_")
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
