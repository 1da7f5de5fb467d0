package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

type MatchSyncInput struct {
	Tournament tournament.Tournament
	HomeTeamID int64
	AwayTeamID int64
	StageID    *int64
	Fixture    ParsedMatch
}

type MatchSyncOutcome struct {
	Created bool
	Pair    match.Pair
}

// MatchSyncService keeps the home row of a fixture and its mirror in
// lock-step. The registry lookup on the fixture id decides between create
// and update.
type MatchSyncService struct {
	matchRepo match.Repository
	registry  externalid.Repository
	logger    *logging.Logger
}

func NewMatchSyncService(matchRepo match.Repository, registry externalid.Repository, logger *logging.Logger) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchSyncService{
		matchRepo: matchRepo,
		registry:  registry,
		logger:    logger,
	}
}

func (s *MatchSyncService) Sync(ctx context.Context, input MatchSyncInput) (MatchSyncOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Sync",
		attrTournamentID.Int64(input.Tournament.ID),
		attrExternalID.Int64(input.Fixture.ExternalID),
	)
	defer span.End()

	fixtureID := input.Fixture.ExternalID
	if fixtureID <= 0 {
		return MatchSyncOutcome{}, fmt.Errorf("%w: fixture external id is required", ErrInvalidInput)
	}

	incoming := match.Match{
		TournamentID:  input.Tournament.ID,
		StageID:       input.StageID,
		Tour:          input.Fixture.Tour,
		Date:          input.Fixture.Date.UTC(),
		MainTeamID:    input.HomeTeamID,
		OpponentID:    input.AwayTeamID,
		AtHome:        true,
		Status:        input.Fixture.Status,
		GoalsScored:   input.Fixture.HomeGoals,
		GoalsConceded: input.Fixture.AwayGoals,
		Score:         input.Fixture.Score,
		IsModerated:   !input.Fixture.Status.NeedsModeration(),
	}
	if err := incoming.Validate(); err != nil {
		return MatchSyncOutcome{}, fmt.Errorf("%w: fixture=%d: %v", ErrInvalidInput, fixtureID, err)
	}
	rule := input.Tournament.ScoringRule()

	record, found, err := s.registry.Resolve(ctx, externalid.KindMatch, fixtureID)
	if err != nil {
		return MatchSyncOutcome{}, fmt.Errorf("resolve fixture=%d: %w", fixtureID, err)
	}
	if found {
		return s.update(ctx, record.EntityID, incoming, rule)
	}

	home := incoming.Derive(rule)
	away := home.Mirror(rule)
	pair, err := s.matchRepo.CreatePair(ctx, home, away, fixtureID)
	switch {
	case errors.Is(err, match.ErrConflict):
		record, found, rerr := s.registry.Resolve(ctx, externalid.KindMatch, fixtureID)
		if rerr != nil {
			return MatchSyncOutcome{}, fmt.Errorf("re-resolve fixture=%d after conflict: %w", fixtureID, rerr)
		}
		if !found {
			return MatchSyncOutcome{}, fmt.Errorf("create fixture=%d: %w", fixtureID, err)
		}
		s.logger.InfoContext(ctx, "fixture created concurrently, updating instead",
			"fixture_id", fixtureID,
			"match_id", record.EntityID,
		)
		return s.update(ctx, record.EntityID, incoming, rule)
	case err != nil:
		return MatchSyncOutcome{}, fmt.Errorf("create fixture=%d: %w", fixtureID, err)
	}

	return MatchSyncOutcome{Created: true, Pair: pair}, nil
}

func (s *MatchSyncService) update(ctx context.Context, homeID int64, incoming match.Match, rule match.ScoringRule) (MatchSyncOutcome, error) {
	existing, exists, err := s.matchRepo.GetByID(ctx, homeID)
	if err != nil {
		return MatchSyncOutcome{}, fmt.Errorf("get match=%d: %w", homeID, err)
	}
	if !exists {
		return MatchSyncOutcome{}, fmt.Errorf("%w: registered match=%d", ErrNotFound, homeID)
	}
	if !existing.AtHome {
		return MatchSyncOutcome{}, fmt.Errorf("registered match=%d: %w", homeID, match.ErrNotHome)
	}

	home := existing.ApplyUpdate(incoming, rule)
	away := home.Mirror(rule)
	away.ID = existing.OppositeMatchID

	pair, err := s.matchRepo.UpdatePair(ctx, home, away)
	if err != nil {
		if errors.Is(err, match.ErrMirrorMissing) {
			s.logger.ErrorContext(ctx, "mirror match missing on update",
				"match_id", homeID,
				"opposite_match_id", existing.OppositeMatchID,
			)
		}
		return MatchSyncOutcome{}, fmt.Errorf("update match=%d: %w", homeID, err)
	}

	return MatchSyncOutcome{Created: false, Pair: pair}, nil
}

// Delete removes a home row with its mirror and registry entry. Away rows
// cannot be deleted on their own.
func (s *MatchSyncService) Delete(ctx context.Context, homeID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Delete", attrMatchID.Int64(homeID))
	defer span.End()

	if homeID <= 0 {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	existing, exists, err := s.matchRepo.GetByID(ctx, homeID)
	if err != nil {
		return fmt.Errorf("get match=%d: %w", homeID, err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%d", ErrNotFound, homeID)
	}
	if !existing.AtHome {
		return fmt.Errorf("%w: match=%d is an away row, delete match=%d instead", ErrInvalidInput, homeID, existing.OppositeMatchID)
	}

	mirrorFound, err := s.matchRepo.DeletePair(ctx, homeID)
	if err != nil {
		return fmt.Errorf("delete match=%d: %w", homeID, err)
	}
	if !mirrorFound {
		s.logger.WarnContext(ctx, "mirror match missing on delete", "match_id", homeID)
	}
	return nil
}
