package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"go.uber.org/zap/zapcore"
)

var laLiga = tournament.Tournament{ID: 1, Title: "La Liga", Season: "2023-2024", IsRegular: true, PointsPerWin: 3, PointsPerDraw: 1}

func TestMatchSyncService_ReingestingFixtureUpdatesExistingPair(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 529, 541)
	kickoff := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	first, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[529],
		AwayTeamID: teams[541],
		Fixture:    fixture(555, 529, 541, kickoff, match.StatusNotStarted, nil, nil),
	})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if !first.Created {
		t.Fatalf("expected first sync to create the pair")
	}
	if first.Pair.Home.Result != nil || first.Pair.Away.Result != nil {
		t.Fatalf("expected unplayed fixture to have null results")
	}

	second, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[529],
		AwayTeamID: teams[541],
		Fixture:    fixture(555, 529, 541, kickoff, match.StatusFullTime, intPtr(3), intPtr(1)),
	})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Created {
		t.Fatalf("expected second sync to update")
	}
	if env.db.CountMatches() != 2 {
		t.Fatalf("expected exactly 2 match rows, got %d", env.db.CountMatches())
	}
	if env.db.CountExternalIDs(externalid.KindMatch) != 1 {
		t.Fatalf("expected exactly 1 registry row, got %d", env.db.CountExternalIDs(externalid.KindMatch))
	}

	home, away := second.Pair.Home, second.Pair.Away
	if home.ID != first.Pair.Home.ID || away.ID != first.Pair.Away.ID {
		t.Fatalf("expected update in place, ids changed: first=%d/%d second=%d/%d", first.Pair.Home.ID, first.Pair.Away.ID, home.ID, away.ID)
	}
	if *home.Result != match.ResultWin || home.PointsReceived != 3 {
		t.Fatalf("unexpected home derivation: %v/%d", *home.Result, home.PointsReceived)
	}
	if *away.Result != match.ResultLose || away.PointsReceived != 0 {
		t.Fatalf("unexpected away derivation: %v/%d", *away.Result, away.PointsReceived)
	}
	if *away.GoalsScored != 1 || *away.GoalsConceded != 3 {
		t.Fatalf("expected mirrored goals 1-3, got %d-%d", *away.GoalsScored, *away.GoalsConceded)
	}
	if !home.IsModerated || !away.IsModerated {
		t.Fatalf("expected full-time pair to be moderated")
	}
	if !home.SymmetricWith(away) {
		t.Fatalf("expected pair to stay symmetric")
	}
}

func TestMatchSyncService_ModerationFlag(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 529, 541, 530)
	kickoff := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		fixture   ParsedMatch
		away      int64
		moderated bool
	}{
		{fixture: fixture(555, 529, 541, kickoff, match.StatusNotStarted, nil, nil), away: 541, moderated: true},
		{fixture: fixture(556, 529, 530, kickoff, match.StatusPenalties, intPtr(1), intPtr(1)), away: 530, moderated: false},
	}
	for _, tc := range tests {
		out, err := env.syncer.Sync(ctx, MatchSyncInput{
			Tournament: laLiga,
			HomeTeamID: teams[529],
			AwayTeamID: teams[tc.away],
			Fixture:    tc.fixture,
		})
		if err != nil {
			t.Fatalf("sync %s: %v", tc.fixture.Status, err)
		}
		if out.Pair.Home.IsModerated != tc.moderated || out.Pair.Away.IsModerated != tc.moderated {
			t.Fatalf("status %s: expected moderated=%v, got home=%v away=%v",
				tc.fixture.Status, tc.moderated, out.Pair.Home.IsModerated, out.Pair.Away.IsModerated)
		}
	}
}

func TestMatchSyncService_UpdateKeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 1, 2)
	kickoff := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	created, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    fixture(900, 1, 2, kickoff, match.StatusNotStarted, nil, nil),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved := fixture(900, 1, 2, kickoff.Add(2*time.Hour), match.StatusFullTime, intPtr(0), intPtr(0))
	moved.Tour = intPtr(8)
	moved.Score = map[string]any{"changed": true}
	updated, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    moved,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	home := updated.Pair.Home
	if !home.Date.Equal(kickoff.Add(2 * time.Hour)) {
		t.Fatalf("expected date to change, got %s", home.Date)
	}
	if *home.Tour != 7 {
		t.Fatalf("expected tour to stay 7, got %d", *home.Tour)
	}
	if _, changed := home.Score["changed"]; changed {
		t.Fatalf("expected score to stay untouched on update")
	}
	if *home.Result != match.ResultDraw || home.PointsReceived != 1 || updated.Pair.Away.PointsReceived != 1 {
		t.Fatalf("expected 0-0 draw worth 1 point each, got %+v", updated.Pair)
	}
	if created.Pair.Home.ID != home.ID {
		t.Fatalf("expected same home row")
	}
}

// racingRegistry misses the first lookup, as if another run registered the
// fixture between resolve and insert.
type racingRegistry struct {
	externalid.Repository
	missed bool
}

func (r *racingRegistry) Resolve(ctx context.Context, kind externalid.Kind, externalID int64) (externalid.Record, bool, error) {
	if !r.missed {
		r.missed = true
		return externalid.Record{}, false, nil
	}
	return r.Repository.Resolve(ctx, kind, externalID)
}

func TestMatchSyncService_ConflictOnCreateFallsBackToUpdate(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 1, 2)
	kickoff := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	if _, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    fixture(555, 1, 2, kickoff, match.StatusNotStarted, nil, nil),
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	loser := NewMatchSyncService(env.matches, &racingRegistry{Repository: env.registry}, env.logger)
	outcome, err := loser.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    fixture(555, 1, 2, kickoff, match.StatusFullTime, intPtr(2), intPtr(1)),
	})
	if err != nil {
		t.Fatalf("racing run: %v", err)
	}
	if outcome.Created {
		t.Fatalf("expected racing run to update")
	}
	if env.db.CountMatches() != 2 {
		t.Fatalf("expected no duplicate rows, got %d", env.db.CountMatches())
	}
	if *outcome.Pair.Home.Result != match.ResultWin {
		t.Fatalf("expected update to apply, got %+v", outcome.Pair.Home)
	}
}

func TestMatchSyncService_MissingMirrorOnUpdateIsFatal(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 1, 2)
	kickoff := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	orphan := env.db.SeedMatch(match.Match{
		TournamentID: laLiga.ID,
		Date:         kickoff,
		MainTeamID:   teams[1],
		OpponentID:   teams[2],
		AtHome:       true,
		Status:       match.StatusNotStarted,
	})
	env.db.SeedExternalID(externalid.KindMatch, 555, orphan.ID)

	_, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    fixture(555, 1, 2, kickoff, match.StatusFullTime, intPtr(1), intPtr(0)),
	})
	if !errors.Is(err, match.ErrMirrorMissing) {
		t.Fatalf("expected ErrMirrorMissing, got %v", err)
	}

	entries := env.logs.FilterMessage("mirror match missing on update").All()
	if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error-level log entry, got %+v", entries)
	}

	stored, _, _ := env.matches.GetByID(ctx, orphan.ID)
	if stored.Status != match.StatusNotStarted {
		t.Fatalf("expected home row untouched, got status %s", stored.Status)
	}
}

func TestMatchSyncService_DeleteRemovesPairAndRegistry(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 1, 2)

	outcome, err := env.syncer.Sync(ctx, MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: teams[1],
		AwayTeamID: teams[2],
		Fixture:    fixture(555, 1, 2, time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC), match.StatusFullTime, intPtr(3), intPtr(1)),
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	if err := env.syncer.Delete(ctx, outcome.Pair.Away.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected away delete to be rejected, got %v", err)
	}
	if err := env.syncer.Delete(ctx, outcome.Pair.Home.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if env.db.CountMatches() != 0 {
		t.Fatalf("expected both rows removed, got %d", env.db.CountMatches())
	}
	if _, found, _ := env.registry.Resolve(ctx, externalid.KindMatch, 555); found {
		t.Fatalf("expected registry row removed")
	}
	if err := env.syncer.Delete(ctx, outcome.Pair.Home.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMatchSyncService_DeleteWithoutMirrorWarns(t *testing.T) {
	ctx := context.Background()
	env := newFixtureEnv()
	teams := seedTeams(env, 1, 2)

	orphan := env.db.SeedMatch(match.Match{
		TournamentID: laLiga.ID,
		Date:         time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
		MainTeamID:   teams[1],
		OpponentID:   teams[2],
		AtHome:       true,
		Status:       match.StatusNotStarted,
	})

	if err := env.syncer.Delete(ctx, orphan.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries := env.logs.FilterMessage("mirror match missing on delete").All()
	if len(entries) != 1 || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected one warning, got %+v", entries)
	}
	if env.db.CountMatches() != 0 {
		t.Fatalf("expected home row removed")
	}
}

func TestMatchSyncService_RejectsInvalidFixture(t *testing.T) {
	env := newFixtureEnv()

	_, err := env.syncer.Sync(context.Background(), MatchSyncInput{
		Tournament: laLiga,
		HomeTeamID: 1,
		AwayTeamID: 1,
		Fixture:    fixture(555, 1, 1, time.Now(), match.StatusNotStarted, nil, nil),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if env.db.CountMatches() != 0 {
		t.Fatalf("expected nothing stored")
	}
}
