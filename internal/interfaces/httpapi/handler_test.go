package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

const testJobToken = "job-secret"

type fakeJobRunner struct {
	inputs    []usecase.JobRunInput
	bootstrap [][]int64
	result    usecase.JobRunResult
	err       error
}

func (f *fakeJobRunner) Run(_ context.Context, input usecase.JobRunInput) (usecase.JobRunResult, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return usecase.JobRunResult{}, f.err
	}
	result := f.result
	result.Job = input.Job
	return result, nil
}

func (f *fakeJobRunner) Bootstrap(_ context.Context, tournamentIDs []int64) (usecase.BootstrapResult, error) {
	f.bootstrap = append(f.bootstrap, tournamentIDs)
	if f.err != nil {
		return usecase.BootstrapResult{}, f.err
	}
	return usecase.BootstrapResult{
		QueuedCount:      3,
		QueuedOperations: []string{"fetch-teams:all", "fetch-results:all", "fetch-goal-stats:all"},
	}, nil
}

type fakeMatchService struct {
	deleted   []int64
	deleteErr error
	completed []match.Match
	listErr   error
	listed    []time.Time
}

func (f *fakeMatchService) Delete(_ context.Context, homeID int64) error {
	f.deleted = append(f.deleted, homeID)
	return f.deleteErr
}

func (f *fakeMatchService) ListCompleted(_ context.Context, _ int64, day time.Time) ([]match.Match, error) {
	f.listed = append(f.listed, day)
	return f.completed, f.listErr
}

func newTestRouter(jobs *fakeJobRunner, matches *fakeMatchService) http.Handler {
	handler := NewHandler(jobs, matches, matches, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), nil, testJobToken)
}

func doRequest(router http.Handler, method, target, body string, withToken bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if withToken {
		req.Header.Set(internalJobTokenHeader, testJobToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFetchResultsJob_RunsInlineAndRepliesPlainText(t *testing.T) {
	jobs := &fakeJobRunner{result: usecase.JobRunResult{
		Report: usecase.IngestionReport{Job: "fetch-results", Date: "2024-03-02", Requests: 2, Created: 1, Updated: 1},
	}}
	router := newTestRouter(jobs, &fakeMatchService{})

	rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/fetch-results",
		`{"tournament_ids":[1,2],"date":"2024-03-02"}`, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected plain text reply, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "fetch-results completed date=2024-03-02 requests=2 created=1 updated=1") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if len(jobs.inputs) != 1 {
		t.Fatalf("expected one run, got %d", len(jobs.inputs))
	}
	input := jobs.inputs[0]
	if input.Job != usecase.JobFetchResults || len(input.TournamentIDs) != 2 || input.Async {
		t.Fatalf("unexpected run input %+v", input)
	}
	if input.Date == nil || input.Date.Format(time.DateOnly) != "2024-03-02" {
		t.Fatalf("unexpected run date %v", input.Date)
	}
}

func TestFetchTeamsJob_AsyncIsAccepted(t *testing.T) {
	jobs := &fakeJobRunner{result: usecase.JobRunResult{Queued: true, DispatchID: "run-1"}}
	router := newTestRouter(jobs, &fakeMatchService{})

	rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/fetch-teams", `{"async":true}`, true)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "fetch-teams accepted dispatch_id=run-1" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestJobEndpoints_EmptyBodyMeansAllTournaments(t *testing.T) {
	jobs := &fakeJobRunner{result: usecase.JobRunResult{Report: usecase.IngestionReport{Job: "fetch-goal-stats"}}}
	router := newTestRouter(jobs, &fakeMatchService{})

	rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/fetch-goal-stats", "", true)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(jobs.inputs) != 1 || len(jobs.inputs[0].TournamentIDs) != 0 || jobs.inputs[0].Job != usecase.JobFetchGoalStats {
		t.Fatalf("unexpected run inputs %+v", jobs.inputs)
	}
}

func TestJobEndpoints_RejectBadInput(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown field", path: "/v1/internal/jobs/fetch-results", body: `{"league":1}`},
		{name: "bad date", path: "/v1/internal/jobs/fetch-results", body: `{"date":"02-03-2024"}`},
		{name: "negative tournament", path: "/v1/internal/jobs/fetch-teams", body: `{"tournament_ids":[-1]}`},
		{name: "date on teams job", path: "/v1/internal/jobs/fetch-teams", body: `{"date":"2024-03-02"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobRunner{}
			router := newTestRouter(jobs, &fakeMatchService{})

			rec := doRequest(router, http.MethodPost, tt.path, tt.body, true)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d body=%s", rec.Code, rec.Body.String())
			}
			if len(jobs.inputs) != 0 {
				t.Fatalf("job must not run on bad input")
			}
		})
	}
}

func TestJobEndpoints_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{name: "quota", err: fmt.Errorf("%w: 100 of 100", usecase.ErrQuotaExceeded), status: http.StatusTooManyRequests, body: "quota exceeded"},
		{name: "provider", err: fmt.Errorf("%w: token invalid", usecase.ErrProviderResponse), status: http.StatusBadGateway, body: "token invalid"},
		{name: "missing data", err: &usecase.MissingCriticalDataError{Field: "fixture.id"}, status: http.StatusBadGateway, body: "fixture.id"},
		{name: "internal", err: fmt.Errorf("update match=3: %w", match.ErrMirrorMissing), status: http.StatusInternalServerError, body: "check the logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeJobRunner{err: tt.err}, &fakeMatchService{})

			rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/fetch-results", "", true)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Fatalf("expected body to contain %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestInternalRoutes_RequireToken(t *testing.T) {
	jobs := &fakeJobRunner{}
	matches := &fakeMatchService{}
	router := newTestRouter(jobs, matches)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/internal/jobs/fetch-results"},
		{http.MethodPost, "/v1/internal/jobs/bootstrap"},
		{http.MethodDelete, "/v1/internal/matches/5"},
	} {
		rec := doRequest(router, tc.method, tc.path, "", false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
	if len(jobs.inputs) != 0 || len(jobs.bootstrap) != 0 || len(matches.deleted) != 0 {
		t.Fatalf("nothing must run without a token")
	}
}

func TestInternalRoutes_UnconfiguredTokenIsUnavailable(t *testing.T) {
	handler := NewHandler(&fakeJobRunner{}, &fakeMatchService{}, &fakeMatchService{}, logging.NewNop())
	router := NewRouter(handler, logging.NewNop(), nil, "")

	rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/fetch-teams", "", true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestBootstrapJob(t *testing.T) {
	jobs := &fakeJobRunner{}
	router := newTestRouter(jobs, &fakeMatchService{})

	rec := doRequest(router, http.MethodPost, "/v1/internal/jobs/bootstrap", `{"tournament_ids":[7]}`, true)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "bootstrap queued 3 jobs: fetch-teams:all") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if len(jobs.bootstrap) != 1 || len(jobs.bootstrap[0]) != 1 || jobs.bootstrap[0][0] != 7 {
		t.Fatalf("unexpected bootstrap calls %+v", jobs.bootstrap)
	}
}

func TestDeleteMatch(t *testing.T) {
	matches := &fakeMatchService{}
	router := newTestRouter(&fakeJobRunner{}, matches)

	rec := doRequest(router, http.MethodDelete, "/v1/internal/matches/11", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(matches.deleted) != 1 || matches.deleted[0] != 11 {
		t.Fatalf("unexpected deletes %+v", matches.deleted)
	}

	rec = doRequest(router, http.MethodDelete, "/v1/internal/matches/abc", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad id, got %d", rec.Code)
	}

	matches.deleteErr = fmt.Errorf("%w: match=12", usecase.ErrNotFound)
	rec = doRequest(router, http.MethodDelete, "/v1/internal/matches/12", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestListCompletedMatches(t *testing.T) {
	scored, conceded := 2, 1
	win := match.ResultWin
	matches := &fakeMatchService{completed: []match.Match{{
		ID:              21,
		TournamentID:    1,
		Date:            time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC),
		MainTeamID:      10,
		OpponentID:      20,
		AtHome:          true,
		Status:          match.StatusFullTime,
		Result:          &win,
		PointsReceived:  3,
		GoalsScored:     &scored,
		GoalsConceded:   &conceded,
		GoalsStats:      match.GoalsStats{77: {TeamID: 20, Player: "B"}, 12: {TeamID: 10, Player: "A", Type: "Normal Goal"}},
		OppositeMatchID: 22,
	}}}
	router := newTestRouter(&fakeJobRunner{}, matches)

	rec := doRequest(router, http.MethodGet, "/v1/tournaments/1/matches/completed?date=2024-03-02", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data []matchDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected one match, got %d", len(body.Data))
	}
	got := body.Data[0]
	if got.Result != "W" || got.PointsReceived != 3 || got.OppositeMatchID != 22 {
		t.Fatalf("unexpected match %+v", got)
	}
	if len(got.Goals) != 2 || got.Goals[0].Minute != 12 || got.Goals[1].Minute != 77 {
		t.Fatalf("goals must be ordered by minute, got %+v", got.Goals)
	}
	if len(matches.listed) != 1 || matches.listed[0].Format(time.DateOnly) != "2024-03-02" {
		t.Fatalf("unexpected list calls %+v", matches.listed)
	}
}

func TestListCompletedMatches_RequiresDate(t *testing.T) {
	router := newTestRouter(&fakeJobRunner{}, &fakeMatchService{})

	rec := doRequest(router, http.MethodGet, "/v1/tournaments/1/matches/completed", "", false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
