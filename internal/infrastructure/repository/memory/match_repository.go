package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
)

type MatchRepository struct {
	db  *Database
	now func() time.Time
}

func NewMatchRepository(db *Database) *MatchRepository {
	return &MatchRepository{db: db, now: time.Now}
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	item, ok := r.db.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) CreatePair(_ context.Context, home, away match.Match, externalID int64) (match.Pair, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, row := range []match.Match{home, away} {
		if r.db.matchExists(row.MainTeamID, row.OpponentID, row.Date) {
			return match.Pair{}, fmt.Errorf("%w: main_team=%d opponent=%d date=%s", match.ErrConflict, row.MainTeamID, row.OpponentID, row.Date.Format(time.RFC3339))
		}
	}
	if _, ok := r.db.findExternal(externalid.KindMatch, func(rec externalid.Record) bool { return rec.ExternalID == externalID }); ok {
		return match.Pair{}, fmt.Errorf("%w: fixture=%d", match.ErrConflict, externalID)
	}

	now := r.now().UTC()
	home.ID = r.db.allocID()
	away.ID = r.db.allocID()
	home.OppositeMatchID = away.ID
	away.OppositeMatchID = home.ID
	home.CreatedAt, home.UpdatedAt = now, now
	away.CreatedAt, away.UpdatedAt = now, now

	if _, err := r.db.registerExternal(externalid.KindMatch, externalID, home.ID); err != nil {
		return match.Pair{}, err
	}
	r.db.matches[home.ID] = cloneMatch(home)
	r.db.matches[away.ID] = cloneMatch(away)

	return match.Pair{Home: home, Away: away}, nil
}

func (r *MatchRepository) UpdatePair(_ context.Context, home, away match.Match) (match.Pair, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	storedHome, ok := r.db.matches[home.ID]
	if !ok {
		return match.Pair{}, fmt.Errorf("match=%d not found", home.ID)
	}
	storedAway, ok := r.db.mirrorOf(storedHome)
	if !ok {
		return match.Pair{}, fmt.Errorf("%w: home=%d", match.ErrMirrorMissing, home.ID)
	}

	now := r.now().UTC()
	storedHome = applyMutable(storedHome, home, now)
	storedAway = applyMutable(storedAway, away, now)
	r.db.matches[storedHome.ID] = storedHome
	r.db.matches[storedAway.ID] = storedAway

	return match.Pair{Home: cloneMatch(storedHome), Away: cloneMatch(storedAway)}, nil
}

func (r *MatchRepository) DeletePair(_ context.Context, homeID int64) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	home, ok := r.db.matches[homeID]
	if !ok {
		return false, fmt.Errorf("match=%d not found", homeID)
	}

	mirror, mirrorFound := r.db.mirrorOf(home)
	if mirrorFound {
		delete(r.db.matches, mirror.ID)
	}
	r.db.removeExternal(externalid.KindMatch, homeID)
	delete(r.db.matches, homeID)

	return mirrorFound, nil
}

func (r *MatchRepository) ListCompletedByTournamentAndDate(_ context.Context, tournamentID int64, day time.Time) ([]match.Match, error) {
	from := day.UTC()
	until := from.Add(24 * time.Hour)

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.db.matches {
		if !item.AtHome || item.TournamentID != tournamentID || !item.Status.IsCompleted() {
			continue
		}
		if item.Date.Before(from) || !item.Date.Before(until) {
			continue
		}
		out = append(out, cloneMatch(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) ListMissingGoalStats(_ context.Context, limit int) ([]match.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.db.matches {
		if item.AtHome && item.Status.IsCompleted() && item.GoalsStats == nil {
			out = append(out, cloneMatch(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) UpdateGoalStats(_ context.Context, id int64, stats match.GoalsStats) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, ok := r.db.matches[id]
	if !ok {
		return fmt.Errorf("match=%d not found", id)
	}
	if stats == nil {
		stats = match.GoalsStats{}
	}
	item.GoalsStats = stats
	item.UpdatedAt = r.now().UTC()
	r.db.matches[id] = cloneMatch(item)
	return nil
}

// must hold db.mu
func (db *Database) matchExists(mainTeamID, opponentID int64, date time.Time) bool {
	for _, item := range db.matches {
		if item.MainTeamID == mainTeamID && item.OpponentID == opponentID && item.Date.Equal(date) {
			return true
		}
	}
	return false
}

// must hold db.mu
func (db *Database) mirrorOf(home match.Match) (match.Match, bool) {
	if home.OppositeMatchID > 0 {
		if item, ok := db.matches[home.OppositeMatchID]; ok {
			return item, true
		}
	}
	for _, item := range db.matches {
		if item.ID != home.ID && item.OppositeMatchID == home.ID {
			return item, true
		}
	}
	return match.Match{}, false
}

func applyMutable(stored, next match.Match, now time.Time) match.Match {
	stored.Date = next.Date
	stored.Status = next.Status
	stored.GoalsScored = next.GoalsScored
	stored.GoalsConceded = next.GoalsConceded
	stored.Result = next.Result
	stored.PointsReceived = next.PointsReceived
	stored.IsModerated = next.IsModerated
	stored.UpdatedAt = now
	return stored
}
