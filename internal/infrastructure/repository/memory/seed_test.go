package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/football-stats/internal/domain/country"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
)

func TestSeedDefaults(t *testing.T) {
	db := NewDatabase()
	SeedDefaults(db)

	repo := NewTournamentRepository(db)
	items, err := repo.ListCurrent(context.Background())
	if err != nil {
		t.Fatalf("list current: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded tournaments, got %d", len(items))
	}
	if items[0].CountryID == nil || items[1].CountryID == nil || *items[0].CountryID == *items[1].CountryID {
		t.Fatalf("expected distinct seeded countries, got %+v", items)
	}
	again := db.SeedCountry(country.Country{Title: "Spain", Slug: "spain"})
	if again.ID != *items[0].CountryID {
		t.Fatalf("expected existing spain row %d, got %d", *items[0].CountryID, again.ID)
	}
	if len(db.countries) != 2 {
		t.Fatalf("expected 2 countries, got %d", len(db.countries))
	}

	registry := NewExternalIDRepository(db)
	record, found, err := registry.LookupByInternal(context.Background(), externalid.KindTournament, TournamentIDLaLiga)
	if err != nil || !found {
		t.Fatalf("expected la liga mapping, found=%v err=%v", found, err)
	}
	if record.ExternalID != 140 {
		t.Fatalf("expected league 140, got %d", record.ExternalID)
	}
}
