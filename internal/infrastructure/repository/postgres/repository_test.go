package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/team"
)

var matchColumns = []string{
	"id", "tournament_id", "stage_id", "group_name", "tour", "match_date", "main_team_id", "opponent_id",
	"at_home", "result", "status", "points_received", "goals_scored", "goals_conceded", "score",
	"goals_stats", "is_moderated", "opposite_match_id", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func TestExternalIDRepository_ResolveMiss(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExternalIDRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM external_ids WHERE kind = $1 AND external_id = $2 LIMIT 1")).
		WithArgs("team", int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "entity_id", "external_id", "created_at"}))

	_, found, err := repo.Resolve(context.Background(), externalid.KindTeam, 33)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if found {
		t.Fatalf("expected miss")
	}
	expectationsMet(t, mock)
}

func TestExternalIDRepository_ResolveRejectsUnknownKind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExternalIDRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM external_ids WHERE kind = $1 AND external_id = $2 LIMIT 1")).
		WithArgs("team", int64(33)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "entity_id", "external_id", "created_at"}).
			AddRow(int64(9), "player", int64(4), int64(33), time.Now()))

	if _, _, err := repo.Resolve(context.Background(), externalid.KindTeam, 33); err == nil {
		t.Fatalf("expected error for unknown stored kind")
	}
	expectationsMet(t, mock)
}

func TestExternalIDRepository_RegisterDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExternalIDRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO external_ids (kind, entity_id, external_id) VALUES ($1, $2, $3) RETURNING *")).
		WithArgs("tournament", int64(1), int64(140)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "external_ids_kind_external_key"})

	_, err := repo.Register(context.Background(), externalid.KindTournament, 140, 1)
	if !errors.Is(err, externalid.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestTeamRepository_CreateWithExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams (title, slug, city, country_id, is_moderated, logo_path)")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO external_ids")).
		WithArgs("team", int64(7), int64(529)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "entity_id", "external_id", "created_at"}).
			AddRow(int64(1), "team", int64(7), int64(529), time.Now()))
	mock.ExpectCommit()

	created, err := repo.CreateWithExternalID(context.Background(), team.Team{Title: "Barcelona", Slug: "barcelona", City: "Barcelona"}, 529)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if created.ID != 7 {
		t.Fatalf("expected id 7, got %d", created.ID)
	}
	expectationsMet(t, mock)
}

func TestTeamRepository_CreateWithExternalID_SlugTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTeamRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "teams_slug_key"})
	mock.ExpectRollback()

	_, err := repo.CreateWithExternalID(context.Background(), team.Team{Title: "Inter", Slug: "inter"}, 505)
	if !errors.Is(err, team.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestStageRepository_GetOrCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO stages (title, provider_title) VALUES ($1, $2) ON CONFLICT (provider_title)")).
		WithArgs("Round of 16", "round of 16").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "provider_title"}).AddRow(int64(3), "Round of 16", "round of 16"))

	got, err := repo.GetOrCreate(context.Background(), "  Round of 16 ")
	if err != nil {
		t.Fatalf("get or create stage: %v", err)
	}
	if got.ID != 3 || got.Title != "Round of 16" {
		t.Fatalf("unexpected stage: %+v", got)
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_CreatePair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	home := match.Match{TournamentID: 1, MainTeamID: 10, OpponentID: 11, AtHome: true, Date: date, Status: match.StatusNotStarted}
	away := home.Mirror(match.DefaultScoringRule())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET opposite_match_id = $1 WHERE id = $2")).
		WithArgs(int64(101), int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO external_ids")).
		WithArgs("match", int64(100), int64(555)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "entity_id", "external_id", "created_at"}).
			AddRow(int64(1), "match", int64(100), int64(555), date))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE id = $1 LIMIT 1")).
		WithArgs(int64(100)).
		WillReturnRows(matchRow(100, 10, 11, true, date, 101))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE id = $1 LIMIT 1")).
		WithArgs(int64(101)).
		WillReturnRows(matchRow(101, 11, 10, false, date, 100))
	mock.ExpectCommit()

	pair, err := repo.CreatePair(context.Background(), home, away, 555)
	if err != nil {
		t.Fatalf("create pair: %v", err)
	}
	if pair.Home.OppositeMatchID != 101 || pair.Away.OppositeMatchID != 100 {
		t.Fatalf("expected linked pair, got home=%+v away=%+v", pair.Home, pair.Away)
	}
	if pair.Away.AtHome || pair.Away.MainTeamID != 11 {
		t.Fatalf("unexpected away row: %+v", pair.Away)
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_CreatePair_FixtureAlreadyRegistered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	home := match.Match{TournamentID: 1, MainTeamID: 10, OpponentID: 11, AtHome: true, Date: date, Status: match.StatusNotStarted}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET opposite_match_id")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO external_ids")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "external_ids_kind_external_key"})
	mock.ExpectRollback()

	_, err := repo.CreatePair(context.Background(), home, home.Mirror(match.DefaultScoringRule()), 555)
	if !errors.Is(err, match.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_CreatePair_DuplicateFixtureRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	home := match.Match{TournamentID: 1, MainTeamID: 10, OpponentID: 11, AtHome: true, Date: date, Status: match.StatusNotStarted}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO matches")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "matches_main_team_opponent_date_key"})
	mock.ExpectRollback()

	_, err := repo.CreatePair(context.Background(), home, home.Mirror(match.DefaultScoringRule()), 555)
	if !errors.Is(err, match.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_UpdatePair_MirrorMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE id = $1 LIMIT 1")).
		WithArgs(int64(100)).
		WillReturnRows(matchRow(100, 10, 11, true, date, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM matches WHERE opposite_match_id = $1 LIMIT 1")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	home := match.Match{ID: 100, TournamentID: 1, MainTeamID: 10, OpponentID: 11, AtHome: true, Date: date, Status: match.StatusFullTime}
	_, err := repo.UpdatePair(context.Background(), home, home.Mirror(match.DefaultScoringRule()))
	if !errors.Is(err, match.ErrMirrorMissing) {
		t.Fatalf("expected ErrMirrorMissing, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_DeletePair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE id = $1 LIMIT 1")).
		WithArgs(int64(100)).
		WillReturnRows(matchRow(100, 10, 11, true, date, 101))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM matches WHERE id = $1 LIMIT 1")).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE id = $1")).
		WithArgs(int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM external_ids WHERE kind = $1 AND entity_id = $2")).
		WithArgs("match", int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM matches WHERE id = $1")).
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mirrorFound, err := repo.DeletePair(context.Background(), 100)
	if err != nil {
		t.Fatalf("delete pair: %v", err)
	}
	if !mirrorFound {
		t.Fatalf("expected mirror to be found")
	}
	expectationsMet(t, mock)
}

func TestMatchRepository_ListMissingGoalStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMatchRepository(db)

	date := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM matches WHERE at_home = $1 AND status = $2 AND goals_stats IS NULL ORDER BY id DESC LIMIT 10")).
		WithArgs(true, "FT").
		WillReturnRows(matchRow(100, 10, 11, true, date, 101))

	items, err := repo.ListMissingGoalStats(context.Background(), 10)
	if err != nil {
		t.Fatalf("list missing goal stats: %v", err)
	}
	if len(items) != 1 || items[0].ID != 100 || items[0].GoalsStats != nil {
		t.Fatalf("unexpected matches: %+v", items)
	}
	expectationsMet(t, mock)
}

func matchRow(id, mainTeamID, opponentID int64, atHome bool, date time.Time, oppositeID int64) *sqlmock.Rows {
	var opposite any
	if oppositeID > 0 {
		opposite = oppositeID
	}
	return sqlmock.NewRows(matchColumns).AddRow(
		id, int64(1), nil, "", int64(7), date, mainTeamID, opponentID,
		atHome, nil, "FT", 0, nil, nil, []byte("{}"),
		nil, true, opposite, date, date,
	)
}

func TestBootstrapSeed_InsertsCountriesAndTournaments(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM tournaments")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	seeds := []struct {
		countryTitle, countrySlug string
		id, leagueID              int64
	}{
		{"Spain", "spain", 1, 140},
		{"England", "england", 2, 39},
	}
	for _, seed := range seeds {
		mock.ExpectQuery("INSERT INTO countries").
			WithArgs(seed.countryTitle, seed.countrySlug).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(seed.id))
		mock.ExpectQuery("INSERT INTO tournaments").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(seed.id))
		mock.ExpectExec("INSERT INTO external_ids").
			WithArgs("tournament", seed.id, seed.leagueID).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := BootstrapSeed(context.Background(), db); err != nil {
		t.Fatalf("bootstrap seed: %v", err)
	}
	expectationsMet(t, mock)
}

func TestBootstrapSeed_SkipsWhenTournamentsExist(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM tournaments")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	if err := BootstrapSeed(context.Background(), db); err != nil {
		t.Fatalf("bootstrap seed: %v", err)
	}
	expectationsMet(t, mock)
}
