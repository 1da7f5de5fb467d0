package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
)

func TestMatchQueryService_ListCompleted(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	liga := env.db.SeedTournament(tournament.Tournament{Title: "La Liga", Season: "2023-2024"})
	teams := seedTeams(env, 1, 2, 3, 4)
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	inputs := []ParsedMatch{
		fixture(10, 1, 2, day.Add(21*time.Hour), match.StatusFullTime, intPtr(2), intPtr(0)),
		fixture(11, 3, 4, day.Add(16*time.Hour), match.StatusFullTime, intPtr(1), intPtr(1)),
		fixture(12, 1, 3, day.Add(18*time.Hour), match.StatusSecondHalf, intPtr(0), intPtr(0)),
		fixture(13, 2, 4, day.Add(30*time.Hour), match.StatusFullTime, intPtr(0), intPtr(1)),
	}
	for _, item := range inputs {
		if _, err := env.syncer.Sync(ctx, MatchSyncInput{
			Tournament: liga,
			HomeTeamID: teams[item.HomeTeamExternalID],
			AwayTeamID: teams[item.AwayTeamExternalID],
			Fixture:    item,
		}); err != nil {
			t.Fatalf("seed fixture %d: %v", item.ExternalID, err)
		}
	}

	svc := NewMatchQueryService(memory.NewTournamentRepository(env.db), env.matches)
	items, err := svc.ListCompleted(ctx, liga.ID, day.Add(5*time.Hour))
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 completed home matches, got %d", len(items))
	}
	if items[0].MainTeamID != teams[3] || items[1].MainTeamID != teams[1] {
		t.Fatalf("expected kickoff order, got %+v", items)
	}
	for _, item := range items {
		if !item.AtHome || item.Status != match.StatusFullTime {
			t.Fatalf("unexpected row: %+v", item)
		}
	}

	if _, err := svc.ListCompleted(ctx, 999, day); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ListCompleted(ctx, liga.ID, time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
