package memory

import (
	"github.com/riskibarqy/football-stats/internal/domain/country"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
)

const (
	TournamentIDLaLiga        int64 = 1
	TournamentIDPremierLeague int64 = 2
)

// DefaultTournament pairs a tournament with its country and api-football
// league id.
type DefaultTournament struct {
	Tournament tournament.Tournament
	Country    country.Country
	LeagueID   int64
}

func DefaultTournaments() []DefaultTournament {
	return []DefaultTournament{
		{
			Tournament: tournament.Tournament{
				ID:            TournamentIDLaLiga,
				Title:         "La Liga 2024-2025",
				Slug:          "la-liga-2024-2025",
				Season:        "2024-2025",
				Current:       true,
				IsRegular:     true,
				ToursCount:    38,
				PointsPerWin:  3,
				PointsPerDraw: 1,
				Order:         1,
			},
			Country:  country.Country{Title: "Spain", Slug: "spain"},
			LeagueID: 140,
		},
		{
			Tournament: tournament.Tournament{
				ID:            TournamentIDPremierLeague,
				Title:         "Premier League 2024-2025",
				Slug:          "premier-league-2024-2025",
				Season:        "2024-2025",
				Current:       true,
				IsRegular:     true,
				ToursCount:    38,
				PointsPerWin:  3,
				PointsPerDraw: 1,
				Order:         2,
			},
			Country:  country.Country{Title: "England", Slug: "england"},
			LeagueID: 39,
		},
	}
}

// SeedDefaults loads the default tournaments when no database is configured.
func SeedDefaults(db *Database) {
	for _, seed := range DefaultTournaments() {
		c := db.SeedCountry(seed.Country)
		item := seed.Tournament
		item.CountryID = &c.ID
		stored := db.SeedTournament(item)
		db.SeedExternalID(externalid.KindTournament, seed.LeagueID, stored.ID)
	}
}
