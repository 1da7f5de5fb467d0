package httpapi

import (
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/match"
)

type jobRequest struct {
	TournamentIDs []int64 `json:"tournament_ids" validate:"omitempty,max=50,dive,gt=0"`
	Date          string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Async         bool    `json:"async"`
	DispatchID    string  `json:"dispatch_id" validate:"omitempty,max=128"`
}

type completedMatchesRequest struct {
	TournamentID int64  `validate:"gt=0"`
	Date         string `validate:"required,datetime=2006-01-02"`
}

type goalEventDTO struct {
	Minute int    `json:"minute"`
	TeamID int64  `json:"team_id,omitempty"`
	Player string `json:"player"`
	Type   string `json:"type"`
}

type matchDTO struct {
	ID              int64          `json:"id"`
	TournamentID    int64          `json:"tournament_id"`
	StageID         *int64         `json:"stage_id,omitempty"`
	Group           string         `json:"group,omitempty"`
	Tour            *int           `json:"tour,omitempty"`
	Date            string         `json:"date"`
	MainTeamID      int64          `json:"main_team_id"`
	OpponentID      int64          `json:"opponent_id"`
	AtHome          bool           `json:"at_home"`
	Status          string         `json:"status"`
	Result          string         `json:"result,omitempty"`
	PointsReceived  int            `json:"points_received"`
	GoalsScored     *int           `json:"goals_scored"`
	GoalsConceded   *int           `json:"goals_conceded"`
	Score           map[string]any `json:"score,omitempty"`
	Goals           []goalEventDTO `json:"goals"`
	OppositeMatchID int64          `json:"opposite_match_id"`
}

func matchToDTO(m match.Match) matchDTO {
	out := matchDTO{
		ID:              m.ID,
		TournamentID:    m.TournamentID,
		StageID:         m.StageID,
		Group:           m.Group,
		Tour:            m.Tour,
		Date:            m.Date.UTC().Format(time.RFC3339),
		MainTeamID:      m.MainTeamID,
		OpponentID:      m.OpponentID,
		AtHome:          m.AtHome,
		Status:          string(m.Status),
		PointsReceived:  m.PointsReceived,
		GoalsScored:     m.GoalsScored,
		GoalsConceded:   m.GoalsConceded,
		Score:           m.Score,
		Goals:           goalsToDTO(m.GoalsStats),
		OppositeMatchID: m.OppositeMatchID,
	}
	if m.Result != nil {
		out.Result = string(*m.Result)
	}
	return out
}

// goalsToDTO flattens goals_stats into a list ordered by minute.
func goalsToDTO(stats match.GoalsStats) []goalEventDTO {
	out := make([]goalEventDTO, 0, len(stats))
	for _, minute := range stats.Minutes() {
		event := stats[minute]
		out = append(out, goalEventDTO{
			Minute: minute,
			TeamID: event.TeamID,
			Player: event.Player,
			Type:   event.Type,
		})
	}
	return out
}
