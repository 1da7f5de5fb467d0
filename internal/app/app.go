package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/football-stats/external"
	"github.com/riskibarqy/football-stats/external/apifootball"
	"github.com/riskibarqy/football-stats/external/jobqueue"
	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/domain/externalid"
	"github.com/riskibarqy/football-stats/internal/domain/jobscheduler"
	"github.com/riskibarqy/football-stats/internal/domain/match"
	"github.com/riskibarqy/football-stats/internal/domain/rawdata"
	"github.com/riskibarqy/football-stats/internal/domain/stage"
	"github.com/riskibarqy/football-stats/internal/domain/team"
	"github.com/riskibarqy/football-stats/internal/domain/tournament"
	"github.com/riskibarqy/football-stats/internal/infrastructure/executor"
	"github.com/riskibarqy/football-stats/internal/infrastructure/logo"
	"github.com/riskibarqy/football-stats/internal/infrastructure/quota"
	cacherepo "github.com/riskibarqy/football-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-stats/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-stats/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/football-stats/internal/platform/id"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/platform/resilience"
	"github.com/riskibarqy/football-stats/internal/usecase"
)

// Container holds the wired services shared by the api server and the
// ingest CLI.
type Container struct {
	Config    config.Config
	Logger    *logging.Logger
	Jobs      *usecase.JobService
	Ingestion *usecase.IngestionOrchestratorService
	Matches   *usecase.MatchSyncService
	Queries   *usecase.MatchQueryService
	Registry  *usecase.RegistryService

	closers []func(context.Context) error
}

type repositories struct {
	tournaments tournament.Repository
	teams       team.Repository
	stages      stage.Repository
	matches     match.Repository
	registry    externalid.Repository
	dispatches  jobscheduler.Repository
	raw         rawdata.Repository
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	repos, err := c.openStorage(ctx)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	tracker, cursor, err := c.openQuota(ctx)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	provider, err := external.NewProvider(external.ProviderConfig{
		Name: cfg.ProviderName,
		APIFootball: apifootball.ClientConfig{
			BaseURL:     cfg.APIFootballBaseURL,
			Host:        cfg.APIFootballHost,
			Key:         cfg.APIFootballKey,
			Timeout:     cfg.APIFootballTimeout,
			MaxRequests: cfg.APIFootballMaxRequests,
			Logger:      logger.Named("apifootball"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.APIFootballCircuitEnabled,
				FailureThreshold: cfg.APIFootballCircuitFailureCount,
				OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
			},
		},
	})
	if err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("build provider: %w", err)
	}

	logos, err := logo.NewDownloader(logo.Config{
		Dir:        cfg.LogoDir,
		PathPrefix: cfg.LogoPathPrefix,
		Timeout:    cfg.LogoTimeout,
	}, logger.Named("logo"))
	if err != nil {
		_ = c.Close(ctx)
		return nil, fmt.Errorf("build logo downloader: %w", err)
	}

	exec, err := c.executor()
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	queue, err := c.jobQueue()
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	c.Registry = usecase.NewRegistryService(repos.registry, logger)
	c.Matches = usecase.NewMatchSyncService(repos.matches, repos.registry, logger)
	c.Queries = usecase.NewMatchQueryService(repos.tournaments, repos.matches)
	c.Ingestion = usecase.NewIngestionOrchestratorService(usecase.IngestionDeps{
		Provider:       provider,
		Quota:          tracker,
		Cursor:         cursor,
		Registry:       c.Registry,
		TournamentRepo: repos.tournaments,
		TeamRepo:       repos.teams,
		StageRepo:      repos.stages,
		MatchRepo:      repos.matches,
		Syncer:         c.Matches,
		Logos:          logos,
		RawRepo:        repos.raw,
	}, usecase.IngestionConfig{
		ResultsLookback: cfg.ResultsLookback,
		GoalStatsBatch:  cfg.GoalStatsBatch,
	}, logger)
	c.Jobs = usecase.NewJobService(
		c.Ingestion,
		exec,
		queue,
		repos.dispatches,
		idgen.NewUUIDGenerator("run"),
		usecase.JobServiceConfig{DedupBucket: cfg.JobDedupBucket},
		logger,
	)

	logger.Info("app container ready",
		"provider", provider.Name(),
		"storage", storageKind(cfg),
		"quota", quotaKind(cfg),
		"qstash_enabled", cfg.QStashEnabled,
	)
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	cfg := c.Config
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.Jobs, c.Matches, c.Queries, c.Logger)
	router := httpapi.NewRouter(handler, c.Logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}, nil
}

// openStorage uses postgres when DB_URL is set and the seeded in-memory
// store otherwise.
func (c *Container) openStorage(ctx context.Context) (repositories, error) {
	cfg := c.Config
	var repos repositories

	if cfg.DBURL == "" {
		db := memory.NewDatabase()
		memory.SeedDefaults(db)
		repos = repositories{
			tournaments: memory.NewTournamentRepository(db),
			teams:       memory.NewTeamRepository(db),
			stages:      memory.NewStageRepository(db),
			matches:     memory.NewMatchRepository(db),
			registry:    memory.NewExternalIDRepository(db),
			dispatches:  memory.NewJobDispatchRepository(db),
			raw:         memory.NewRawDataRepository(db),
		}
	} else {
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		c.closers = append(c.closers, func(context.Context) error { return db.Close() })

		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			return repositories{}, err
		}
		repos = repositories{
			tournaments: postgres.NewTournamentRepository(db),
			teams:       postgres.NewTeamRepository(db),
			stages:      postgres.NewStageRepository(db),
			matches:     postgres.NewMatchRepository(db),
			registry:    postgres.NewExternalIDRepository(db),
			dispatches:  postgres.NewJobDispatchRepository(db),
			raw:         postgres.NewRawDataRepository(db),
		}
	}

	if cfg.CacheEnabled {
		repos.tournaments = cacherepo.NewTournamentRepository(repos.tournaments, cfg.CacheTTL)
		repos.stages = cacherepo.NewStageRepository(repos.stages, cfg.CacheTTL)
	}
	return repos, nil
}

func (c *Container) openQuota(ctx context.Context) (usecase.QuotaTracker, usecase.DateCursor, error) {
	if c.Config.RedisURL == "" {
		return quota.NewMemoryTracker(), quota.NewMemoryDateCursor(), nil
	}

	client, err := quota.Connect(ctx, c.Config.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	c.closers = append(c.closers, func(context.Context) error { return client.Close() })
	return quota.NewRedisTracker(client), quota.NewRedisDateCursor(client), nil
}

// executor runs async jobs on a bounded pool. A zero pool size runs them on
// the request goroutine.
func (c *Container) executor() (usecase.Executor, error) {
	logger := c.Logger.Named("executor")
	if c.Config.ExecutorPoolSize == 0 {
		return executor.NewInlineExecutor(logger), nil
	}

	pool, err := executor.NewPoolExecutor(c.Config.ExecutorPoolSize, logger)
	if err != nil {
		return nil, fmt.Errorf("build executor: %w", err)
	}
	c.closers = append(c.closers, pool.Close)
	return pool, nil
}

func (c *Container) jobQueue() (usecase.JobQueue, error) {
	cfg := c.Config
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue(), nil
	}

	publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		Timeout:          cfg.QStashTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, c.Logger.Named("qstash"))
	if err != nil {
		return nil, fmt.Errorf("build qstash publisher: %w", err)
	}
	return publisher, nil
}

func storageKind(cfg config.Config) string {
	if cfg.DBURL == "" {
		return "memory"
	}
	return "postgres"
}

func quotaKind(cfg config.Config) string {
	if cfg.RedisURL == "" {
		return "memory"
	}
	return "redis"
}
