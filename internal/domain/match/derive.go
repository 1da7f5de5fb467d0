package match

// DeriveResult compares goals from the main team's perspective. Either side
// missing means the match has not been played.
func DeriveResult(scored, conceded *int) *Result {
	if scored == nil || conceded == nil {
		return nil
	}

	var result Result
	switch {
	case *scored > *conceded:
		result = ResultWin
	case *scored < *conceded:
		result = ResultLose
	default:
		result = ResultDraw
	}
	return &result
}

func Points(result *Result, rule ScoringRule) int {
	if result == nil {
		return 0
	}
	switch *result {
	case ResultWin:
		return rule.PointsPerWin
	case ResultDraw:
		return rule.PointsPerDraw
	default:
		return 0
	}
}

// Derive recomputes result and points from goals. Stored values are never
// trusted.
func (m Match) Derive(rule ScoringRule) Match {
	m.Result = DeriveResult(m.GoalsScored, m.GoalsConceded)
	m.PointsReceived = Points(m.Result, rule)
	return m
}

// Mirror builds the away side of a home row. IDs are left for the caller to
// link once rows are persisted.
func (m Match) Mirror(rule ScoringRule) Match {
	mirror := Match{
		TournamentID:    m.TournamentID,
		StageID:         copyInt64(m.StageID),
		Group:           m.Group,
		Tour:            copyInt(m.Tour),
		Date:            m.Date,
		MainTeamID:      m.OpponentID,
		OpponentID:      m.MainTeamID,
		AtHome:          false,
		Status:          m.Status,
		GoalsScored:     copyInt(m.GoalsConceded),
		GoalsConceded:   copyInt(m.GoalsScored),
		Score:           m.Score,
		IsModerated:     m.IsModerated,
		OppositeMatchID: m.ID,
	}
	return mirror.Derive(rule)
}

// ApplyUpdate copies the fields that may change after a fixture was first
// stored, then re-derives.
func (m Match) ApplyUpdate(incoming Match, rule ScoringRule) Match {
	m.Date = incoming.Date
	m.Status = incoming.Status
	m.GoalsScored = copyInt(incoming.GoalsScored)
	m.GoalsConceded = copyInt(incoming.GoalsConceded)
	m.IsModerated = incoming.IsModerated
	return m.Derive(rule)
}

// SymmetricWith reports whether other is a valid mirror of m.
func (m Match) SymmetricWith(other Match) bool {
	if m.AtHome == other.AtHome {
		return false
	}
	if m.MainTeamID != other.OpponentID || m.OpponentID != other.MainTeamID {
		return false
	}
	if !equalInt(m.GoalsScored, other.GoalsConceded) || !equalInt(m.GoalsConceded, other.GoalsScored) {
		return false
	}
	if !m.Date.Equal(other.Date) || m.Status != other.Status {
		return false
	}
	switch {
	case m.Result == nil || other.Result == nil:
		return m.Result == nil && other.Result == nil
	default:
		return m.Result.Invert() == *other.Result
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func equalInt(left, right *int) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return *left == *right
}
