package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/match"
)

// Task names one kind of provider request.
type Task string

const (
	TaskResultsByTournament Task = "results_by_tournament"
	TaskGetTeams            Task = "get_teams"
	TaskGetGoalsStats       Task = "get_goals_stats"
)

// PayloadInput carries every value a task may need. Unused fields are
// ignored by the provider.
type PayloadInput struct {
	LeagueID  int64
	Season    string
	Date      time.Time
	FixtureID int64
}

// ProviderResponse never carries a Go error: transport failures are folded
// into Errors so callers handle them the same way as API-reported errors.
type ProviderResponse struct {
	Errors []string
	Items  []map[string]any
	Raw    []byte
	Query  string
}

func (r ProviderResponse) Failed() bool {
	return len(r.Errors) > 0
}

// Provider is a third-party football data API.
type Provider interface {
	Name() string
	Endpoint(task Task) string
	Payload(task Task, in PayloadInput) (map[string]string, error)
	Send(ctx context.Context, endpoint string, payload map[string]string) ProviderResponse
	MaxRequestsPerDay() int
	Parser() ResponseParser
}

// ParsedMatch is one fixture from the home side's perspective. Goals are nil
// until the match is played.
type ParsedMatch struct {
	ExternalID         int64
	Date               time.Time
	HomeTeamExternalID int64
	AwayTeamExternalID int64
	Round              string
	Tour               *int
	Status             match.Status
	HomeGoals          *int
	AwayGoals          *int
	Score              map[string]any
}

type ParsedTeam struct {
	ExternalID int64
	Title      string
	LogoURL    string
}

type ParsedGoal struct {
	TeamExternalID int64
	Player         string
	Type           string
}

// ResponseParser extracts typed values from provider items. Missing critical
// fields are reported as *MissingCriticalDataError.
type ResponseParser interface {
	ParseMatch(item map[string]any) (ParsedMatch, error)
	ParseTeam(item map[string]any) (ParsedTeam, error)
	// GoalsStats keeps goal events only, keyed by elapsed plus stoppage minute.
	GoalsStats(items []map[string]any) (map[int]ParsedGoal, error)
}
