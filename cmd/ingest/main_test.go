package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/football-stats/internal/usecase"
)

type recordingIngestor struct {
	results   []usecase.FetchResultsInput
	teams     []usecase.FetchTeamsInput
	goalStats int
}

func (r *recordingIngestor) FetchAndStoreResults(_ context.Context, input usecase.FetchResultsInput) (usecase.IngestionReport, error) {
	r.results = append(r.results, input)
	return usecase.IngestionReport{Job: "fetch-results"}, nil
}

func (r *recordingIngestor) FetchAndStoreTeams(_ context.Context, input usecase.FetchTeamsInput) (usecase.IngestionReport, error) {
	r.teams = append(r.teams, input)
	return usecase.IngestionReport{Job: "fetch-teams"}, nil
}

func (r *recordingIngestor) FetchAndStoreGoalStats(context.Context) (usecase.IngestionReport, error) {
	r.goalStats++
	return usecase.IngestionReport{Job: "fetch-goal-stats"}, nil
}

func TestRun_ResultsWithDate(t *testing.T) {
	ingestor := &recordingIngestor{}
	report, err := run(context.Background(), ingestor, "results", []string{"2024-03-02"}, []int64{1})
	if err != nil {
		t.Fatalf("run results: %v", err)
	}
	if report.Job != "fetch-results" || len(ingestor.results) != 1 {
		t.Fatalf("expected one results run, got report=%+v calls=%d", report, len(ingestor.results))
	}

	input := ingestor.results[0]
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if input.Date == nil || !input.Date.Equal(want) {
		t.Fatalf("expected date %s, got %v", want, input.Date)
	}
	if len(input.TournamentIDs) != 1 || input.TournamentIDs[0] != 1 {
		t.Fatalf("unexpected tournament ids: %v", input.TournamentIDs)
	}
}

func TestRun_ResultsWithoutDateUsesCursor(t *testing.T) {
	ingestor := &recordingIngestor{}
	if _, err := run(context.Background(), ingestor, "RESULTS", nil, nil); err != nil {
		t.Fatalf("run results: %v", err)
	}
	if ingestor.results[0].Date != nil {
		t.Fatalf("expected nil date, got %v", ingestor.results[0].Date)
	}
}

func TestRun_TeamsAndGoalStats(t *testing.T) {
	ingestor := &recordingIngestor{}
	if _, err := run(context.Background(), ingestor, "teams", nil, []int64{2}); err != nil {
		t.Fatalf("run teams: %v", err)
	}
	if _, err := run(context.Background(), ingestor, "goal-stats", nil, nil); err != nil {
		t.Fatalf("run goal-stats: %v", err)
	}
	if len(ingestor.teams) != 1 || ingestor.teams[0].TournamentIDs[0] != 2 {
		t.Fatalf("unexpected teams calls: %+v", ingestor.teams)
	}
	if ingestor.goalStats != 1 {
		t.Fatalf("expected one goal stats run, got %d", ingestor.goalStats)
	}
}

func TestRun_Rejects(t *testing.T) {
	ingestor := &recordingIngestor{}
	if _, err := run(context.Background(), ingestor, "results", []string{"02/03/2024"}, nil); err == nil {
		t.Fatalf("expected invalid date error")
	}
	if _, err := run(context.Background(), ingestor, "players", nil, nil); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if len(ingestor.results) != 0 {
		t.Fatalf("expected no ingestion calls, got %d", len(ingestor.results))
	}
}
