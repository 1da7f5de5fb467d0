package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/football-stats/internal/domain/tournament"
)

type TournamentRepository struct {
	db *Database
}

func NewTournamentRepository(db *Database) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(_ context.Context, id int64) (tournament.Tournament, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	item, ok := r.db.tournaments[id]
	return item, ok, nil
}

func (r *TournamentRepository) ListCurrent(_ context.Context) ([]tournament.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.db.tournaments))
	for _, item := range r.db.tournaments {
		if item.Current {
			out = append(out, item)
		}
	}
	sortTournaments(out)
	return out, nil
}

func (r *TournamentRepository) ListByIDs(_ context.Context, ids []int64) ([]tournament.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	out := make([]tournament.Tournament, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.db.tournaments[id]; ok {
			out = append(out, item)
		}
	}
	sortTournaments(out)
	return out, nil
}

func sortTournaments(items []tournament.Tournament) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return items[i].ID < items[j].ID
	})
}
