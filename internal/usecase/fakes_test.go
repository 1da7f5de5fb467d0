package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/team"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// providerMock records Send calls through testify; everything else is fixed.
type providerMock struct {
	mock.Mock
	parser ResponseParser
}

func newProviderMock() *providerMock {
	return &providerMock{parser: stubParser{}}
}

func (p *providerMock) Name() string { return "stub" }

func (p *providerMock) Endpoint(task Task) string {
	switch task {
	case TaskGetTeams:
		return "teams"
	case TaskGetGoalsStats:
		return "fixtures/events"
	default:
		return "fixtures"
	}
}

func (p *providerMock) Payload(task Task, in PayloadInput) (map[string]string, error) {
	switch task {
	case TaskGetGoalsStats:
		return map[string]string{"fixture": itoa(in.FixtureID)}, nil
	case TaskGetTeams:
		return map[string]string{"league": itoa(in.LeagueID), "season": in.Season}, nil
	default:
		return map[string]string{"league": itoa(in.LeagueID), "season": in.Season, "date": in.Date.Format(time.DateOnly)}, nil
	}
}

func (p *providerMock) Send(ctx context.Context, endpoint string, payload map[string]string) ProviderResponse {
	args := p.Called(ctx, endpoint, payload)
	return args.Get(0).(ProviderResponse)
}

func (p *providerMock) MaxRequestsPerDay() int { return 100 }

func (p *providerMock) Parser() ResponseParser { return p.parser }

// stubParser reads pre-parsed values placed under the "parsed" key.
type stubParser struct{}

func (stubParser) ParseMatch(item map[string]any) (ParsedMatch, error) {
	if v, ok := item["parsed"].(ParsedMatch); ok {
		return v, nil
	}
	return ParsedMatch{}, &MissingCriticalDataError{Field: "fixture.id"}
}

func (stubParser) ParseTeam(item map[string]any) (ParsedTeam, error) {
	if v, ok := item["parsed"].(ParsedTeam); ok {
		return v, nil
	}
	return ParsedTeam{}, &MissingCriticalDataError{Field: "team.id"}
}

func (stubParser) GoalsStats(items []map[string]any) (map[int]ParsedGoal, error) {
	out := make(map[int]ParsedGoal)
	for _, item := range items {
		minute, _ := item["minute"].(int)
		goal, ok := item["goal"].(ParsedGoal)
		if !ok {
			return nil, &MissingCriticalDataError{Field: "time.elapsed"}
		}
		out[minute] = goal
	}
	return out, nil
}

// counterQuota behaves like the redis tracker for a single day.
type counterQuota struct {
	mu    sync.Mutex
	count int64
}

func (q *counterQuota) CountToday(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count, nil
}

func (q *counterQuota) Increment(_ context.Context, by int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.count += by
	return nil
}

func (q *counterQuota) OverLimit(ctx context.Context, max int) (bool, error) {
	count, err := q.CountToday(ctx)
	if err != nil {
		return false, err
	}
	return count >= int64(max), nil
}

type logoStoreFunc func(ctx context.Context, sourceURL string) (string, error)

func (f logoStoreFunc) Store(ctx context.Context, sourceURL string) (string, error) {
	return f(ctx, sourceURL)
}

type fixtureEnv struct {
	db       *memory.Database
	matches  *memory.MatchRepository
	registry *memory.ExternalIDRepository
	syncer   *MatchSyncService
	logs     *observer.ObservedLogs
	logger   *logging.Logger
}

func newFixtureEnv() fixtureEnv {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.FromZap(zap.New(core))

	db := memory.NewDatabase()
	matches := memory.NewMatchRepository(db)
	registry := memory.NewExternalIDRepository(db)
	return fixtureEnv{
		db:       db,
		matches:  matches,
		registry: registry,
		syncer:   NewMatchSyncService(matches, registry, logger),
		logs:     logs,
		logger:   logger,
	}
}

func intPtr(v int) *int { return &v }

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func teamFor(externalID int64) team.Team {
	title := "Team " + itoa(externalID)
	return team.Team{Title: title, Slug: team.Slugify(title), City: title}
}

func fixture(id int64, homeExt, awayExt int64, date time.Time, status match.Status, home, away *int) ParsedMatch {
	return ParsedMatch{
		ExternalID:         id,
		Date:               date,
		HomeTeamExternalID: homeExt,
		AwayTeamExternalID: awayExt,
		Round:              "Regular Season - 7",
		Tour:               intPtr(7),
		Status:             status,
		HomeGoals:          home,
		AwayGoals:          away,
		Score:              map[string]any{"fulltime": map[string]any{"home": home, "away": away}},
	}
}

func seedTeams(env fixtureEnv, externalIDs ...int64) map[int64]int64 {
	out := make(map[int64]int64, len(externalIDs))
	for _, ext := range externalIDs {
		item := env.db.SeedTeam(teamFor(ext))
		env.db.SeedExternalID(externalid.KindTeam, ext, item.ID)
		out[ext] = item.ID
	}
	return out
}
