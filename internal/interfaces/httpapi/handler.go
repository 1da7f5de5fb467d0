package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

// JobRunner is implemented by usecase.JobService.
type JobRunner interface {
	Run(ctx context.Context, input usecase.JobRunInput) (usecase.JobRunResult, error)
	Bootstrap(ctx context.Context, tournamentIDs []int64) (usecase.BootstrapResult, error)
}

// MatchDeleter is implemented by usecase.MatchSyncService.
type MatchDeleter interface {
	Delete(ctx context.Context, homeID int64) error
}

// CompletedMatchLister is implemented by usecase.MatchQueryService.
type CompletedMatchLister interface {
	ListCompleted(ctx context.Context, tournamentID int64, day time.Time) ([]match.Match, error)
}

type Handler struct {
	jobs      JobRunner
	matches   MatchDeleter
	completed CompletedMatchLister
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	jobs JobRunner,
	matches MatchDeleter,
	completed CompletedMatchLister,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		jobs:      jobs,
		matches:   matches,
		completed: completed,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
