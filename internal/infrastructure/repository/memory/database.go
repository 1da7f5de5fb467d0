package memory

import (
	"sync"

	"github.com/riskibarqy/football-stats/internal/domain/country"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/rawdata"
	"github.com/riskibarqy/football-stats/internal/domain/stage"
	"github.com/riskibarqy/football-stats/internal/domain/team"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
)

// Database holds every table behind one lock so multi-table writes are
// atomic, the same way a transaction is in postgres.
type Database struct {
	mu     sync.RWMutex
	nextID int64

	countries   map[int64]country.Country
	tournaments map[int64]tournament.Tournament
	teams       map[int64]team.Team
	stages      map[int64]stage.Stage
	matches     map[int64]match.Match
	externalIDs map[int64]externalid.Record
	dispatches  map[string]jobscheduler.DispatchEvent
	payloads    map[string]rawdata.Payload
}

func NewDatabase() *Database {
	return &Database{
		countries:   make(map[int64]country.Country),
		tournaments: make(map[int64]tournament.Tournament),
		teams:       make(map[int64]team.Team),
		stages:      make(map[int64]stage.Stage),
		matches:     make(map[int64]match.Match),
		externalIDs: make(map[int64]externalid.Record),
		dispatches:  make(map[string]jobscheduler.DispatchEvent),
		payloads:    make(map[string]rawdata.Payload),
	}
}

// must hold db.mu
func (db *Database) allocID() int64 {
	db.nextID++
	return db.nextID
}

// SeedCountry returns the stored country with the same slug, creating it
// when absent.
func (db *Database) SeedCountry(item country.Country) country.Country {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.countries {
		if existing.Slug == item.Slug {
			return existing
		}
	}
	item.ID = db.allocID()
	db.countries[item.ID] = item
	return item
}

// SeedTournament stores item as is, assigning an id when zero.
func (db *Database) SeedTournament(item tournament.Tournament) tournament.Tournament {
	db.mu.Lock()
	defer db.mu.Unlock()

	if item.ID == 0 {
		item.ID = db.allocID()
	} else if item.ID > db.nextID {
		db.nextID = item.ID
	}
	db.tournaments[item.ID] = item
	return item
}

func (db *Database) SeedTeam(item team.Team) team.Team {
	db.mu.Lock()
	defer db.mu.Unlock()

	if item.ID == 0 {
		item.ID = db.allocID()
	} else if item.ID > db.nextID {
		db.nextID = item.ID
	}
	db.teams[item.ID] = item
	return item
}

func (db *Database) SeedMatch(item match.Match) match.Match {
	db.mu.Lock()
	defer db.mu.Unlock()

	if item.ID == 0 {
		item.ID = db.allocID()
	} else if item.ID > db.nextID {
		db.nextID = item.ID
	}
	db.matches[item.ID] = cloneMatch(item)
	return item
}

func (db *Database) CountMatches() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.matches)
}

func (db *Database) CountExternalIDs(kind externalid.Kind) int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	count := 0
	for _, item := range db.externalIDs {
		if item.Kind == kind {
			count++
		}
	}
	return count
}

func (db *Database) Payloads() []rawdata.Payload {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]rawdata.Payload, 0, len(db.payloads))
	for _, item := range db.payloads {
		out = append(out, item)
	}
	return out
}

func (db *Database) Dispatch(dispatchID string) (jobscheduler.DispatchEvent, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	item, ok := db.dispatches[dispatchID]
	return item, ok
}

func cloneMatch(item match.Match) match.Match {
	if item.GoalsStats != nil {
		stats := make(match.GoalsStats, len(item.GoalsStats))
		for minute, goal := range item.GoalsStats {
			stats[minute] = goal
		}
		item.GoalsStats = stats
	}
	return item
}
