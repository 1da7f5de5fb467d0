package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestDeriveResultAndPoints(t *testing.T) {
	rule := ScoringRule{PointsPerWin: 3, PointsPerDraw: 1}

	tests := []struct {
		name       string
		scored     *int
		conceded   *int
		wantResult *Result
		wantPoints int
	}{
		{name: "win", scored: intPtr(3), conceded: intPtr(1), wantResult: resultPtr(ResultWin), wantPoints: 3},
		{name: "lose", scored: intPtr(0), conceded: intPtr(2), wantResult: resultPtr(ResultLose), wantPoints: 0},
		{name: "draw", scored: intPtr(2), conceded: intPtr(2), wantResult: resultPtr(ResultDraw), wantPoints: 1},
		{name: "goalless draw", scored: intPtr(0), conceded: intPtr(0), wantResult: resultPtr(ResultDraw), wantPoints: 1},
		{name: "not played", scored: nil, conceded: nil, wantResult: nil, wantPoints: 0},
		{name: "one side missing", scored: intPtr(1), conceded: nil, wantResult: nil, wantPoints: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Match{GoalsScored: tc.scored, GoalsConceded: tc.conceded}.Derive(rule)
			if !equalResult(got.Result, tc.wantResult) {
				t.Fatalf("unexpected result: got=%v want=%v", deref(got.Result), deref(tc.wantResult))
			}
			if got.PointsReceived != tc.wantPoints {
				t.Fatalf("unexpected points: got=%d want=%d", got.PointsReceived, tc.wantPoints)
			}
		})
	}
}

func TestPoints_CustomRule(t *testing.T) {
	rule := ScoringRule{PointsPerWin: 2, PointsPerDraw: 1}
	if got := Points(resultPtr(ResultWin), rule); got != 2 {
		t.Fatalf("expected 2 points for a win, got %d", got)
	}
	if got := Points(resultPtr(ResultLose), rule); got != 0 {
		t.Fatalf("expected 0 points for a loss, got %d", got)
	}
}

func TestMirror_SwapsSidesAndInvertsResult(t *testing.T) {
	rule := DefaultScoringRule()
	home := Match{
		ID:            10,
		TournamentID:  1,
		Tour:          intPtr(7),
		Date:          time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
		MainTeamID:    100,
		OpponentID:    200,
		AtHome:        true,
		Status:        StatusFullTime,
		GoalsScored:   intPtr(3),
		GoalsConceded: intPtr(1),
		IsModerated:   true,
	}.Derive(rule)

	if *home.Result != ResultWin || home.PointsReceived != 3 {
		t.Fatalf("unexpected home derivation: result=%v points=%d", deref(home.Result), home.PointsReceived)
	}

	away := home.Mirror(rule)
	if away.AtHome {
		t.Fatalf("mirror must not be at home")
	}
	if away.MainTeamID != 200 || away.OpponentID != 100 {
		t.Fatalf("expected swapped teams, got main=%d opponent=%d", away.MainTeamID, away.OpponentID)
	}
	if *away.GoalsScored != 1 || *away.GoalsConceded != 3 {
		t.Fatalf("expected swapped goals, got %d-%d", *away.GoalsScored, *away.GoalsConceded)
	}
	if *away.Result != ResultLose || away.PointsReceived != 0 {
		t.Fatalf("unexpected mirror derivation: result=%v points=%d", deref(away.Result), away.PointsReceived)
	}
	if away.OppositeMatchID != home.ID {
		t.Fatalf("expected mirror to point at home id, got %d", away.OppositeMatchID)
	}
	if *away.Tour != 7 || !away.Date.Equal(home.Date) || away.Status != home.Status {
		t.Fatalf("expected shared fixture fields to be copied")
	}
	if !home.SymmetricWith(away) {
		t.Fatalf("expected home and mirror to be symmetric")
	}

	*away.Tour = 8
	if *home.Tour != 7 {
		t.Fatalf("mirror must not alias home pointers")
	}
}

func TestMirror_UnplayedStaysNull(t *testing.T) {
	rule := DefaultScoringRule()
	home := Match{MainTeamID: 1, OpponentID: 2, AtHome: true, Status: StatusNotStarted}.Derive(rule)
	away := home.Mirror(rule)

	if home.Result != nil || away.Result != nil {
		t.Fatalf("expected null results for unplayed fixture")
	}
	if !home.SymmetricWith(away) {
		t.Fatalf("expected unplayed pair to be symmetric")
	}
}

func TestApplyUpdate_OnlyTouchesMutableFields(t *testing.T) {
	rule := DefaultScoringRule()
	existing := Match{
		ID:           10,
		TournamentID: 1,
		Group:        "A",
		MainTeamID:   100,
		OpponentID:   200,
		AtHome:       true,
		Status:       StatusNotStarted,
		Date:         time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC),
	}.Derive(rule)

	incoming := Match{
		TournamentID:  99,
		Group:         "B",
		MainTeamID:    300,
		OpponentID:    400,
		Status:        StatusFullTime,
		Date:          time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC),
		GoalsScored:   intPtr(2),
		GoalsConceded: intPtr(0),
		IsModerated:   true,
		Result:        resultPtr(ResultLose),
	}

	got := existing.ApplyUpdate(incoming, rule)
	if got.TournamentID != 1 || got.Group != "A" || got.MainTeamID != 100 || got.OpponentID != 200 {
		t.Fatalf("immutable fields changed: %+v", got)
	}
	if got.Status != StatusFullTime || !got.Date.Equal(incoming.Date) || !got.IsModerated {
		t.Fatalf("mutable fields not applied: %+v", got)
	}
	if *got.Result != ResultWin || got.PointsReceived != 3 {
		t.Fatalf("expected result to be derived, got result=%v points=%d", deref(got.Result), got.PointsReceived)
	}
}

func TestValidate(t *testing.T) {
	valid := Match{TournamentID: 1, MainTeamID: 1, OpponentID: 2, Date: time.Now(), Status: StatusNotStarted}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid match, got %v", err)
	}

	sameTeams := valid
	sameTeams.OpponentID = 1
	if err := sameTeams.Validate(); err == nil {
		t.Fatalf("expected error when teams are equal")
	}

	badStatus := valid
	badStatus.Status = "AET"
	if err := badStatus.Validate(); err == nil {
		t.Fatalf("expected error for unsupported status")
	}

	longGroup := valid
	longGroup.Group = "ABC"
	if err := longGroup.Validate(); err == nil {
		t.Fatalf("expected error for long group label")
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" ft ")
	if err != nil || got != StatusFullTime {
		t.Fatalf("expected FT, got %q err=%v", got, err)
	}
	if !got.IsCompleted() {
		t.Fatalf("expected FT to be completed")
	}
	if StatusPenalties.IsCompleted() {
		t.Fatalf("penalty shoot-outs are not treated as completed regulation results")
	}
}

func TestStatusFinalAndModeration(t *testing.T) {
	tests := []struct {
		status     Status
		final      bool
		moderation bool
	}{
		{StatusFullTime, true, false},
		{StatusCancelled, true, false},
		{StatusPenalties, true, true},
		{StatusNotStarted, false, false},
		{StatusPostponed, false, false},
		{StatusSecondHalf, false, false},
		{StatusInterrupted, false, false},
	}
	for _, tc := range tests {
		if got := tc.status.IsFinal(); got != tc.final {
			t.Fatalf("%s.IsFinal() = %v, want %v", tc.status, got, tc.final)
		}
		if got := tc.status.NeedsModeration(); got != tc.moderation {
			t.Fatalf("%s.NeedsModeration() = %v, want %v", tc.status, got, tc.moderation)
		}
	}
}

func resultPtr(r Result) *Result { return &r }

func equalResult(left, right *Result) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	return *left == *right
}

func deref(r *Result) string {
	if r == nil {
		return "<nil>"
	}
	return string(*r)
}

func TestGoalsStatsMinutes(t *testing.T) {
	stats := GoalsStats{
		90: {Player: "Late"},
		12: {Player: "Early"},
		47: {Player: "Second half"},
	}

	got := stats.Minutes()
	want := []int{12, 47, 90}
	if len(got) != len(want) {
		t.Fatalf("expected %d minutes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("minutes[%d]=%d want=%d", i, got[i], want[i])
		}
	}
}
