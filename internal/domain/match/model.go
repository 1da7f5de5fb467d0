package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrConflict reports a unique violation while creating a pair, either on
	// (main_team, opponent, date) or on the fixture's external id.
	ErrConflict = errors.New("match already exists")
	// ErrMirrorMissing means a home row has no away counterpart.
	ErrMirrorMissing = errors.New("mirror match missing")
	ErrNotHome       = errors.New("match is not the home side")
)

type Result string

const (
	ResultWin  Result = "W"
	ResultDraw Result = "D"
	ResultLose Result = "L"
)

func (r Result) Invert() Result {
	switch r {
	case ResultWin:
		return ResultLose
	case ResultLose:
		return ResultWin
	default:
		return r
	}
}

type Status string

const (
	StatusNotStarted  Status = "NS"
	StatusFirstHalf   Status = "1H"
	StatusHalfTime    Status = "HT"
	StatusSecondHalf  Status = "2H"
	StatusFullTime    Status = "FT"
	StatusCancelled   Status = "CANC"
	StatusPenalties   Status = "PEN"
	StatusToBeDefined Status = "TBD"
	StatusPostponed   Status = "PST"
	StatusInterrupted Status = "INT"
)

func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusNotStarted, StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusFullTime,
		StatusCancelled, StatusPenalties, StatusToBeDefined, StatusPostponed, StatusInterrupted:
		return status, nil
	default:
		return "", fmt.Errorf("unknown match status %q", raw)
	}
}

func (s Status) IsCompleted() bool {
	return s == StatusFullTime
}

// NeedsModeration is true for shootout results: the provider reports only
// regulation goals, so the stored result has to be corrected by hand.
func (s Status) NeedsModeration() bool {
	return s == StatusPenalties
}

// IsFinal reports whether the fixture can no longer change on its day.
func (s Status) IsFinal() bool {
	switch s {
	case StatusFullTime, StatusCancelled, StatusPenalties:
		return true
	default:
		return false
	}
}

// ScoringRule is the tournament's points table.
type ScoringRule struct {
	PointsPerWin  int
	PointsPerDraw int
}

func DefaultScoringRule() ScoringRule {
	return ScoringRule{PointsPerWin: 3, PointsPerDraw: 1}
}

// GoalEvent is one scored goal as stored in goals_stats.
// TeamID is the internal id of the scoring side, zero when unresolved.
type GoalEvent struct {
	TeamID int64  `json:"team"`
	Player string `json:"player"`
	Type   string `json:"type"`
}

// GoalsStats maps minute (elapsed plus stoppage) to the goal scored then.
type GoalsStats map[int]GoalEvent

// Minutes returns the scoring minutes in ascending order.
func (g GoalsStats) Minutes() []int {
	out := make([]int, 0, len(g))
	for minute := range g {
		out = append(out, minute)
	}
	sort.Ints(out)
	return out
}

// Match is one side of a fixture. Every fixture is stored twice: the home
// row (AtHome) and its mirror, linked through OppositeMatchID.
type Match struct {
	ID              int64
	TournamentID    int64
	StageID         *int64
	Group           string
	Tour            *int
	Date            time.Time
	MainTeamID      int64
	OpponentID      int64
	AtHome          bool
	Result          *Result
	Status          Status
	PointsReceived  int
	GoalsScored     *int
	GoalsConceded   *int
	Score           map[string]any
	GoalsStats      GoalsStats
	IsModerated     bool
	OppositeMatchID int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pair is a home row with its mirror.
type Pair struct {
	Home Match
	Away Match
}

func (m Match) Validate() error {
	if m.TournamentID <= 0 {
		return fmt.Errorf("match tournament is required")
	}
	if m.MainTeamID <= 0 || m.OpponentID <= 0 {
		return fmt.Errorf("match teams are required")
	}
	if m.MainTeamID == m.OpponentID {
		return fmt.Errorf("match teams must differ")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if _, err := ParseStatus(string(m.Status)); err != nil {
		return err
	}
	if len(m.Group) > 2 {
		return fmt.Errorf("match group %q is longer than 2 characters", m.Group)
	}
	return nil
}
