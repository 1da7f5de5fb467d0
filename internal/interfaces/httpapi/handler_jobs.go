package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-stats/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

const maxJobRequestBytes = 64 << 10

func (h *Handler) RunFetchResultsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunFetchResultsJob", attribute.String("job", string(usecase.JobFetchResults)))
	defer span.End()

	h.runJob(ctx, w, r, usecase.JobFetchResults)
}

func (h *Handler) RunFetchTeamsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunFetchTeamsJob", attribute.String("job", string(usecase.JobFetchTeams)))
	defer span.End()

	h.runJob(ctx, w, r, usecase.JobFetchTeams)
}

func (h *Handler) RunFetchGoalStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunFetchGoalStatsJob", attribute.String("job", string(usecase.JobFetchGoalStats)))
	defer span.End()

	h.runJob(ctx, w, r, usecase.JobFetchGoalStats)
}

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunBootstrapJob")
	defer span.End()

	if h.jobs == nil {
		writeTextError(ctx, w, fmt.Errorf("%w: job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeJobRequest(ctx, r)
	if err != nil {
		writeTextError(ctx, w, err)
		return
	}

	result, err := h.jobs.Bootstrap(ctx, req.TournamentIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "run bootstrap job failed", "tournament_ids", req.TournamentIDs, "error", err)
		writeTextError(ctx, w, err)
		return
	}

	writeText(w, http.StatusAccepted, fmt.Sprintf("bootstrap queued %d jobs: %s",
		result.QueuedCount, strings.Join(result.QueuedOperations, ", ")))
}

func (h *Handler) runJob(ctx context.Context, w http.ResponseWriter, r *http.Request, job usecase.JobName) {
	if h.jobs == nil {
		writeTextError(ctx, w, fmt.Errorf("%w: job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := h.decodeJobRequest(ctx, r)
	if err != nil {
		writeTextError(ctx, w, err)
		return
	}

	input := usecase.JobRunInput{
		Job:           job,
		TournamentIDs: req.TournamentIDs,
		Async:         req.Async,
		DispatchID:    strings.TrimSpace(req.DispatchID),
	}
	if req.Date != "" {
		if job != usecase.JobFetchResults {
			writeTextError(ctx, w, fmt.Errorf("%w: date is only accepted by %s", usecase.ErrInvalidInput, usecase.JobFetchResults))
			return
		}
		day, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeTextError(ctx, w, fmt.Errorf("%w: invalid date %q", usecase.ErrInvalidInput, req.Date))
			return
		}
		input.Date = &day
	}

	result, err := h.jobs.Run(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "run job failed",
			"job", job,
			"tournament_ids", req.TournamentIDs,
			"async", req.Async,
			"error", err,
		)
		writeTextError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	writeText(w, status, result.Message())
}

// decodeJobRequest accepts an empty body as "all current tournaments".
func (h *Handler) decodeJobRequest(ctx context.Context, r *http.Request) (jobRequest, error) {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxJobRequestBytes))
	decoder.DisallowUnknownFields()

	var req jobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return jobRequest{}, nil
		}
		return jobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(ctx, req); err != nil {
		return jobRequest{}, err
	}

	return req, nil
}
