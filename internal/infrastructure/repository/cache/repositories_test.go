package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
)

type countingTournamentRepo struct {
	tournament.Repository
	getCalls int
}

func (r *countingTournamentRepo) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	r.getCalls++
	return r.Repository.GetByID(ctx, id)
}

func TestTournamentRepository_CachesLookupsIncludingMisses(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDatabase()
	liga := db.SeedTournament(tournament.Tournament{Title: "La Liga", Season: "2023-2024"})
	next := &countingTournamentRepo{Repository: memory.NewTournamentRepository(db)}
	repo := NewTournamentRepository(next, time.Minute)

	for i := 0; i < 3; i++ {
		item, exists, err := repo.GetByID(ctx, liga.ID)
		if err != nil || !exists || item.Title != "La Liga" {
			t.Fatalf("unexpected lookup: item=%+v exists=%v err=%v", item, exists, err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, exists, _ := repo.GetByID(ctx, 999); exists {
			t.Fatalf("expected miss for unknown tournament")
		}
	}

	if next.getCalls != 2 {
		t.Fatalf("expected one load per key, got %d", next.getCalls)
	}
}

func TestStageRepository_CachesByNormalizedTitle(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDatabase()
	repo := NewStageRepository(memory.NewStageRepository(db), time.Minute)

	first, err := repo.GetOrCreate(ctx, "Round of 16")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, "  round of  16 ")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same stage, got %d and %d", first.ID, second.ID)
	}
}
