package cache

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/stage"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	basecache "github.com/riskibarqy/football-stats/internal/platform/cache"
)

type tournamentLookup struct {
	value  tournament.Tournament
	exists bool
}

// TournamentRepository caches tournament reads, misses included.
// Tournaments change only through admin edits, so a short TTL is enough.
type TournamentRepository struct {
	next  tournament.Repository
	byID  *basecache.Store[tournamentLookup]
	lists *basecache.Store[[]tournament.Tournament]
}

func NewTournamentRepository(next tournament.Repository, ttl time.Duration) *TournamentRepository {
	return &TournamentRepository{
		next:  next,
		byID:  basecache.NewStore[tournamentLookup](ttl),
		lists: basecache.NewStore[[]tournament.Tournament](ttl),
	}
}

func (r *TournamentRepository) GetByID(ctx context.Context, id int64) (tournament.Tournament, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, strconv.FormatInt(id, 10), func(ctx context.Context) (tournamentLookup, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		return tournamentLookup{value: item, exists: exists}, err
	})
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *TournamentRepository) ListCurrent(ctx context.Context) ([]tournament.Tournament, error) {
	return r.list(ctx, "current", r.next.ListCurrent)
}

func (r *TournamentRepository) ListByIDs(ctx context.Context, ids []int64) ([]tournament.Tournament, error) {
	return r.list(ctx, "ids:"+idsKey(ids), func(ctx context.Context) ([]tournament.Tournament, error) {
		return r.next.ListByIDs(ctx, ids)
	})
}

// list hands out copies so callers cannot mutate the cached slice.
func (r *TournamentRepository) list(ctx context.Context, key string, load func(context.Context) ([]tournament.Tournament, error)) ([]tournament.Tournament, error) {
	items, err := r.lists.GetOrLoad(ctx, key, load)
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// StageRepository caches stage lookups by normalized provider round label.
type StageRepository struct {
	next   stage.Repository
	stages *basecache.Store[stage.Stage]
}

func NewStageRepository(next stage.Repository, ttl time.Duration) *StageRepository {
	return &StageRepository{next: next, stages: basecache.NewStore[stage.Stage](ttl)}
}

func (r *StageRepository) GetOrCreate(ctx context.Context, providerTitle string) (stage.Stage, error) {
	return r.stages.GetOrLoad(ctx, stage.NormalizeProviderTitle(providerTitle), func(ctx context.Context) (stage.Stage, error) {
		return r.next.GetOrCreate(ctx, providerTitle)
	})
}

func idsKey(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
