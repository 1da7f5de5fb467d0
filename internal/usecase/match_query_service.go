package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
)

// MatchQueryService serves read-only match lookups for article generation.
type MatchQueryService struct {
	tournamentRepo tournament.Repository
	matchRepo      match.Repository
}

func NewMatchQueryService(tournamentRepo tournament.Repository, matchRepo match.Repository) *MatchQueryService {
	return &MatchQueryService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

// ListCompleted returns the home rows of full-time matches of a tournament
// played on the given UTC day.
func (s *MatchQueryService) ListCompleted(ctx context.Context, tournamentID int64, day time.Time) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.ListCompleted", attrTournamentID.Int64(tournamentID))
	defer span.End()

	if tournamentID <= 0 {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if day.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	_, exists, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("get tournament=%d: %w", tournamentID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: tournament=%d", ErrNotFound, tournamentID)
	}

	items, err := s.matchRepo.ListCompletedByTournamentAndDate(ctx, tournamentID, utcDay(day))
	if err != nil {
		return nil, fmt.Errorf("list completed matches tournament=%d: %w", tournamentID, err)
	}
	return items, nil
}
