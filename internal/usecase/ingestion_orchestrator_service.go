package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/rawdata"
	"github.com/riskibarqy/football-stats/internal/domain/stage"
	"github.com/riskibarqy/football-stats/internal/domain/team"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
)

type IngestionConfig struct {
	ResultsLookback time.Duration
	GoalStatsBatch  int
}

type FetchResultsInput struct {
	TournamentIDs []int64
	// Date is the UTC day to ingest. Nil picks the oldest unprocessed day
	// within the lookback window.
	Date *time.Time
}

type FetchTeamsInput struct {
	TournamentIDs []int64
}

// IngestionReport summarizes one orchestrator run.
type IngestionReport struct {
	Job                string `json:"job"`
	Date               string `json:"date,omitempty"`
	Tournaments        int    `json:"tournaments"`
	Requests           int    `json:"requests"`
	Created            int    `json:"created"`
	Updated            int    `json:"updated"`
	SkippedTournaments int    `json:"skipped_tournaments"`
	SkippedUnresolved  int    `json:"skipped_unresolved"`
	SkippedInvalid     int    `json:"skipped_invalid"`
	LogosStored        int    `json:"logos_stored"`
	GoalStatsStored    int    `json:"goal_stats_stored"`
}

// Summary is the plain text status returned by job endpoints.
func (r IngestionReport) Summary() string {
	var b strings.Builder
	b.WriteString(r.Job)
	b.WriteString(" completed")
	if r.Date != "" {
		b.WriteString(" date=" + r.Date)
	}
	fmt.Fprintf(&b, " requests=%d created=%d updated=%d", r.Requests, r.Created, r.Updated)
	if r.SkippedTournaments > 0 {
		fmt.Fprintf(&b, " skipped_tournaments=%d", r.SkippedTournaments)
	}
	if r.SkippedUnresolved > 0 {
		fmt.Fprintf(&b, " skipped_unresolved=%d", r.SkippedUnresolved)
	}
	if r.SkippedInvalid > 0 {
		fmt.Fprintf(&b, " skipped_invalid=%d", r.SkippedInvalid)
	}
	if r.LogosStored > 0 {
		fmt.Fprintf(&b, " logos_stored=%d", r.LogosStored)
	}
	if r.GoalStatsStored > 0 {
		fmt.Fprintf(&b, " goal_stats_stored=%d", r.GoalStatsStored)
	}
	return b.String()
}

// Ingestor is implemented by IngestionOrchestratorService.
type Ingestor interface {
	FetchAndStoreResults(ctx context.Context, input FetchResultsInput) (IngestionReport, error)
	FetchAndStoreTeams(ctx context.Context, input FetchTeamsInput) (IngestionReport, error)
	FetchAndStoreGoalStats(ctx context.Context) (IngestionReport, error)
}

type resultsBatch struct {
	tournament tournament.Tournament
	items      []map[string]any
}

// IngestionOrchestratorService runs quota check, fetch, parse and persist for
// every ingestion job. All work inside one call is sequential.
type IngestionOrchestratorService struct {
	provider       Provider
	quota          QuotaTracker
	cursor         DateCursor
	registry       *RegistryService
	tournamentRepo tournament.Repository
	teamRepo       team.Repository
	stageRepo      stage.Repository
	matchRepo      match.Repository
	syncer         *MatchSyncService
	logos          LogoStore
	rawRepo        rawdata.Repository
	cfg            IngestionConfig
	logger         *logging.Logger
	now            func() time.Time
}

type IngestionDeps struct {
	Provider       Provider
	Quota          QuotaTracker
	Cursor         DateCursor
	Registry       *RegistryService
	TournamentRepo tournament.Repository
	TeamRepo       team.Repository
	StageRepo      stage.Repository
	MatchRepo      match.Repository
	Syncer         *MatchSyncService
	Logos          LogoStore
	RawRepo        rawdata.Repository
}

func NewIngestionOrchestratorService(deps IngestionDeps, cfg IngestionConfig, logger *logging.Logger) *IngestionOrchestratorService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.GoalStatsBatch <= 0 {
		cfg.GoalStatsBatch = 10
	}
	if cfg.ResultsLookback < 0 {
		cfg.ResultsLookback = 0
	}

	return &IngestionOrchestratorService{
		provider:       deps.Provider,
		quota:          deps.Quota,
		cursor:         deps.Cursor,
		registry:       deps.Registry,
		tournamentRepo: deps.TournamentRepo,
		teamRepo:       deps.TeamRepo,
		stageRepo:      deps.StageRepo,
		matchRepo:      deps.MatchRepo,
		syncer:         deps.Syncer,
		logos:          deps.Logos,
		rawRepo:        deps.RawRepo,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *IngestionOrchestratorService) FetchAndStoreResults(ctx context.Context, input FetchResultsInput) (IngestionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestratorService.FetchAndStoreResults",
		attrJob.String(string(JobFetchResults)),
		attrTournaments.Int64Slice(input.TournamentIDs),
	)
	defer span.End()

	report := IngestionReport{Job: "fetch-results"}
	if err := s.ensureQuota(ctx); err != nil {
		return report, err
	}

	day, picked, err := s.resolveDay(ctx, input.Date)
	if err != nil {
		return report, err
	}
	report.Date = day.Format(time.DateOnly)

	items, err := s.pickTournaments(ctx, input.TournamentIDs)
	if err != nil {
		return report, err
	}
	report.Tournaments = len(items)

	// Every response is fetched before anything is stored, so a provider or
	// quota failure leaves no tournament of this day half written.
	batches := make([]resultsBatch, 0, len(items))
	for i, item := range items {
		if i > 0 {
			if err := s.ensureQuota(ctx); err != nil {
				return report, err
			}
		}

		leagueID, mapped, err := s.registry.LookupByInternal(ctx, externalid.KindTournament, item.ID)
		if err != nil {
			return report, err
		}
		if !mapped {
			s.logger.WarnContext(ctx, "skip tournament without provider mapping", "tournament_id", item.ID)
			report.SkippedTournaments++
			continue
		}

		resp, err := s.call(ctx, &report, TaskResultsByTournament, PayloadInput{
			LeagueID: leagueID,
			Season:   item.APISeason(),
			Date:     day,
		}, &item.ID)
		if err != nil {
			return report, err
		}
		batches = append(batches, resultsBatch{tournament: item, items: resp.Items})
	}

	settled := report.SkippedTournaments == 0
	for _, batch := range batches {
		for _, raw := range batch.items {
			final, err := s.storeResult(ctx, batch.tournament, raw, &report)
			if err != nil {
				return report, err
			}
			settled = settled && final
		}
	}

	if picked && s.cursor != nil && day.Before(utcDay(s.now())) {
		if settled {
			if err := s.cursor.MarkProcessed(ctx, day); err != nil {
				s.logger.WarnContext(ctx, "mark results day processed failed", "date", report.Date, "error", err)
			}
		} else {
			s.logger.InfoContext(ctx, "results day left open for a later run", "date", report.Date)
		}
	}

	s.logger.InfoContext(ctx, "results ingestion completed",
		"date", report.Date,
		"requests", report.Requests,
		"created", report.Created,
		"updated", report.Updated,
		"skipped_unresolved", report.SkippedUnresolved,
	)
	return report, nil
}

// storeResult reports final=true when the fixture is stored with a status
// that can no longer change. Skipped fixtures are never final.
func (s *IngestionOrchestratorService) storeResult(ctx context.Context, item tournament.Tournament, raw map[string]any, report *IngestionReport) (final bool, err error) {
	parsed, err := s.provider.Parser().ParseMatch(raw)
	if err != nil {
		var missing *MissingCriticalDataError
		if errors.As(err, &missing) {
			s.logger.ErrorContext(ctx, "skip fixture with missing critical data",
				"tournament_id", item.ID,
				"field", missing.Field,
			)
		} else {
			s.logger.ErrorContext(ctx, "skip unparsable fixture", "tournament_id", item.ID, "error", err)
		}
		report.SkippedInvalid++
		return false, nil
	}

	homeID, homeFound, err := s.registry.Resolve(ctx, externalid.KindTeam, parsed.HomeTeamExternalID)
	if err != nil {
		return false, err
	}
	awayID, awayFound, err := s.registry.Resolve(ctx, externalid.KindTeam, parsed.AwayTeamExternalID)
	if err != nil {
		return false, err
	}
	if !homeFound || !awayFound {
		s.logger.WarnContext(ctx, "skip fixture with unresolved team, deferred until teams are ingested",
			"fixture_id", parsed.ExternalID,
			"home_team_external_id", parsed.HomeTeamExternalID,
			"away_team_external_id", parsed.AwayTeamExternalID,
		)
		report.SkippedUnresolved++
		return false, nil
	}

	var stageID *int64
	if !item.IsRegular && s.stageRepo != nil && strings.TrimSpace(parsed.Round) != "" {
		st, err := s.stageRepo.GetOrCreate(ctx, parsed.Round)
		if err != nil {
			return false, fmt.Errorf("get stage round=%q: %w", parsed.Round, err)
		}
		stageID = &st.ID
		parsed.Tour = nil
	}

	outcome, err := s.syncer.Sync(ctx, MatchSyncInput{
		Tournament: item,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		StageID:    stageID,
		Fixture:    parsed,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.logger.ErrorContext(ctx, "skip invalid fixture", "fixture_id", parsed.ExternalID, "error", err)
			report.SkippedInvalid++
			return false, nil
		}
		return false, err
	}
	if outcome.Created {
		report.Created++
	} else {
		report.Updated++
	}
	return parsed.Status.IsFinal(), nil
}

func (s *IngestionOrchestratorService) FetchAndStoreTeams(ctx context.Context, input FetchTeamsInput) (IngestionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestratorService.FetchAndStoreTeams",
		attrJob.String(string(JobFetchTeams)),
		attrTournaments.Int64Slice(input.TournamentIDs),
	)
	defer span.End()

	report := IngestionReport{Job: "fetch-teams"}
	items, err := s.pickTournaments(ctx, input.TournamentIDs)
	if err != nil {
		return report, err
	}
	report.Tournaments = len(items)

	for _, item := range items {
		if err := s.ensureQuota(ctx); err != nil {
			return report, err
		}

		leagueID, mapped, err := s.registry.LookupByInternal(ctx, externalid.KindTournament, item.ID)
		if err != nil {
			return report, err
		}
		if !mapped {
			s.logger.WarnContext(ctx, "skip tournament without provider mapping", "tournament_id", item.ID)
			report.SkippedTournaments++
			continue
		}

		resp, err := s.call(ctx, &report, TaskGetTeams, PayloadInput{
			LeagueID: leagueID,
			Season:   item.APISeason(),
		}, &item.ID)
		if err != nil {
			return report, err
		}

		for _, raw := range resp.Items {
			if err := s.storeTeam(ctx, item, raw, &report); err != nil {
				return report, err
			}
		}
	}

	s.logger.InfoContext(ctx, "teams ingestion completed",
		"requests", report.Requests,
		"created", report.Created,
		"logos_stored", report.LogosStored,
	)
	return report, nil
}

func (s *IngestionOrchestratorService) storeTeam(ctx context.Context, item tournament.Tournament, raw map[string]any, report *IngestionReport) error {
	parsed, err := s.provider.Parser().ParseTeam(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "skip unparsable team", "tournament_id", item.ID, "error", err)
		report.SkippedInvalid++
		return nil
	}

	teamID, found, err := s.registry.Resolve(ctx, externalid.KindTeam, parsed.ExternalID)
	if err != nil {
		return err
	}

	var current team.Team
	if found {
		existing, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return fmt.Errorf("get team=%d: %w", teamID, err)
		}
		if !exists {
			return fmt.Errorf("%w: registered team=%d", ErrNotFound, teamID)
		}
		current = existing
	} else {
		created, err := s.createTeam(ctx, item, parsed)
		if err != nil {
			return err
		}
		current = created
		report.Created++
	}

	if current.LogoPath == "" && s.storeLogo(ctx, current, parsed.LogoURL) {
		report.LogosStored++
	}
	return nil
}

func (s *IngestionOrchestratorService) createTeam(ctx context.Context, item tournament.Tournament, parsed ParsedTeam) (team.Team, error) {
	candidate := team.Team{
		Title:       strings.TrimSpace(parsed.Title),
		Slug:        team.Slugify(parsed.Title),
		City:        strings.TrimSpace(parsed.Title),
		CountryID:   item.CountryID,
		IsModerated: false,
	}
	if candidate.Slug == "" {
		candidate.Slug = fmt.Sprintf("team-%d", parsed.ExternalID)
	}

	created, err := s.teamRepo.CreateWithExternalID(ctx, candidate, parsed.ExternalID)
	if errors.Is(err, team.ErrSlugTaken) {
		candidate.Slug = fmt.Sprintf("%s-%d", candidate.Slug, parsed.ExternalID)
		created, err = s.teamRepo.CreateWithExternalID(ctx, candidate, parsed.ExternalID)
	}
	if err != nil {
		return team.Team{}, fmt.Errorf("create team external_id=%d: %w", parsed.ExternalID, err)
	}

	s.logger.InfoContext(ctx, "team created from provider data",
		"team_id", created.ID,
		"external_id", parsed.ExternalID,
		"title", created.Title,
	)
	return created, nil
}

// storeLogo is best-effort: failures are logged and never abort the run.
func (s *IngestionOrchestratorService) storeLogo(ctx context.Context, item team.Team, logoURL string) bool {
	if s.logos == nil || strings.TrimSpace(logoURL) == "" {
		return false
	}

	path, err := s.logos.Store(ctx, logoURL)
	if err != nil {
		s.logger.WarnContext(ctx, "download team logo failed", "team_id", item.ID, "url", logoURL, "error", err)
		return false
	}
	if err := s.teamRepo.UpdateLogo(ctx, item.ID, path); err != nil {
		s.logger.WarnContext(ctx, "save team logo failed", "team_id", item.ID, "error", err)
		return false
	}
	return true
}

func (s *IngestionOrchestratorService) FetchAndStoreGoalStats(ctx context.Context) (IngestionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionOrchestratorService.FetchAndStoreGoalStats", attrJob.String(string(JobFetchGoalStats)))
	defer span.End()

	report := IngestionReport{Job: "fetch-goal-stats"}
	if err := s.ensureQuota(ctx); err != nil {
		return report, err
	}

	items, err := s.matchRepo.ListMissingGoalStats(ctx, s.cfg.GoalStatsBatch)
	if err != nil {
		return report, fmt.Errorf("list matches missing goal stats: %w", err)
	}

	teamIDs := make(map[int64]int64)
	for i, item := range items {
		if i > 0 {
			if err := s.ensureQuota(ctx); err != nil {
				return report, err
			}
		}

		fixtureID, mapped, err := s.registry.LookupByInternal(ctx, externalid.KindMatch, item.ID)
		if err != nil {
			return report, err
		}
		if !mapped {
			s.logger.WarnContext(ctx, "skip match without provider mapping", "match_id", item.ID)
			report.SkippedUnresolved++
			continue
		}

		resp, err := s.call(ctx, &report, TaskGetGoalsStats, PayloadInput{FixtureID: fixtureID}, &item.TournamentID)
		if err != nil {
			return report, err
		}

		goals, err := s.provider.Parser().GoalsStats(resp.Items)
		if err != nil {
			s.logger.ErrorContext(ctx, "skip unparsable goal events", "match_id", item.ID, "error", err)
			report.SkippedInvalid++
			continue
		}

		stats := make(match.GoalsStats, len(goals))
		for minute, goal := range goals {
			teamID, err := s.resolveTeamCached(ctx, teamIDs, goal.TeamExternalID)
			if err != nil {
				return report, err
			}
			stats[minute] = match.GoalEvent{TeamID: teamID, Player: goal.Player, Type: goal.Type}
		}

		if err := s.matchRepo.UpdateGoalStats(ctx, item.ID, stats); err != nil {
			return report, fmt.Errorf("update goal stats match=%d: %w", item.ID, err)
		}
		report.GoalStatsStored++
	}

	s.logger.InfoContext(ctx, "goal stats ingestion completed",
		"requests", report.Requests,
		"stored", report.GoalStatsStored,
	)
	return report, nil
}

func (s *IngestionOrchestratorService) resolveTeamCached(ctx context.Context, cache map[int64]int64, externalID int64) (int64, error) {
	if externalID <= 0 {
		return 0, nil
	}
	if id, ok := cache[externalID]; ok {
		return id, nil
	}
	id, found, err := s.registry.Resolve(ctx, externalid.KindTeam, externalID)
	if err != nil {
		return 0, err
	}
	if !found {
		id = 0
	}
	cache[externalID] = id
	return id, nil
}

func (s *IngestionOrchestratorService) ensureQuota(ctx context.Context) error {
	limit := s.provider.MaxRequestsPerDay()
	over, err := s.quota.OverLimit(ctx, limit)
	if err != nil {
		return fmt.Errorf("%w: check request quota: %v", ErrDependencyUnavailable, err)
	}
	if over {
		s.logger.ErrorContext(ctx, "provider request quota reached, stopping ingestion",
			"provider", s.provider.Name(),
			"max_requests_per_day", limit,
		)
		return fmt.Errorf("%w: provider=%s max=%d", ErrQuotaExceeded, s.provider.Name(), limit)
	}
	return nil
}

// call issues one provider request. The quota is charged for every issued
// request, including failed ones.
func (s *IngestionOrchestratorService) call(ctx context.Context, report *IngestionReport, task Task, input PayloadInput, tournamentID *int64) (ProviderResponse, error) {
	endpoint := s.provider.Endpoint(task)
	payload, err := s.provider.Payload(task, input)
	if err != nil {
		return ProviderResponse{}, fmt.Errorf("%w: build %s payload: %v", ErrInvalidInput, task, err)
	}

	resp := s.provider.Send(ctx, endpoint, payload)
	report.Requests++
	if err := s.quota.Increment(ctx, 1); err != nil {
		return ProviderResponse{}, fmt.Errorf("%w: increment request quota: %v", ErrDependencyUnavailable, err)
	}
	s.archive(ctx, endpoint, resp, tournamentID)

	if resp.Failed() {
		s.logger.ErrorContext(ctx, "provider response has errors, aborting run",
			"provider", s.provider.Name(),
			"endpoint", endpoint,
			"errors", resp.Errors,
		)
		return ProviderResponse{}, fmt.Errorf("%w: %s %s", ErrProviderResponse, endpoint, strings.Join(resp.Errors, "; "))
	}
	return resp, nil
}

func (s *IngestionOrchestratorService) archive(ctx context.Context, endpoint string, resp ProviderResponse, tournamentID *int64) {
	if s.rawRepo == nil || len(resp.Raw) == 0 {
		return
	}

	item := rawdata.NewPayload(s.provider.Name(), endpoint, resp.Query, tournamentID, resp.Raw, s.now())
	changed, err := s.rawRepo.Archive(ctx, item)
	if err != nil {
		s.logger.WarnContext(ctx, "archive provider payload failed", "endpoint", endpoint, "error", err)
		return
	}
	if !changed {
		s.logger.DebugContext(ctx, "provider payload unchanged", "request_key", item.RequestKey)
	}
}

func (s *IngestionOrchestratorService) resolveDay(ctx context.Context, requested *time.Time) (time.Time, bool, error) {
	today := utcDay(s.now())
	if requested != nil && !requested.IsZero() {
		return utcDay(*requested), false, nil
	}
	if s.cursor == nil || s.cfg.ResultsLookback == 0 {
		return today, false, nil
	}

	from := utcDay(today.Add(-s.cfg.ResultsLookback))
	day, err := s.cursor.NextUnprocessed(ctx, from, today)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: pick next results day: %v", ErrDependencyUnavailable, err)
	}
	return utcDay(day), true, nil
}

func (s *IngestionOrchestratorService) pickTournaments(ctx context.Context, ids []int64) ([]tournament.Tournament, error) {
	if len(ids) == 0 {
		items, err := s.tournamentRepo.ListCurrent(ctx)
		if err != nil {
			return nil, fmt.Errorf("list current tournaments: %w", err)
		}
		return items, nil
	}

	items, err := s.tournamentRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	if len(items) != len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("%w: some tournaments do not exist: %v", ErrNotFound, ids)
	}
	return items, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
