package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/football-stats/internal/app"
	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/riskibarqy/football-stats/internal/observability"
	"github.com/riskibarqy/football-stats/internal/platform/logging"
	"github.com/riskibarqy/football-stats/internal/usecase"
	"go.opentelemetry.io/otel"
)

const usage = "usage: ingest <results|teams|goal-stats> [YYYY-MM-DD]"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.NewConsole(cfg.LogLevel).Named("ingest")
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	tournamentIDs, err := config.ParseIDList(os.Getenv("TOURNAMENT_IDS"))
	if err != nil {
		fatal(logger, "parse TOURNAMENT_IDS", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Setup(ctx, cfg, "ingest", logger)
	if err != nil {
		fatal(logger, "setup observability", err)
	}

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = telemetry.Shutdown(context.Background())
		fatal(logger, "build app", err)
	}

	// Root span so the usecase spans of a CLI run land in one trace.
	runCtx, span := otel.Tracer("github.com/riskibarqy/football-stats/cmd/ingest").Start(ctx, "ingest "+strings.ToLower(os.Args[1]))
	report, runErr := run(runCtx, container.Ingestion, os.Args[1], os.Args[2:], tournamentIDs)
	span.End()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := container.Close(closeCtx); err != nil {
		logger.Error("close app", "error", err)
	}
	if err := telemetry.Shutdown(closeCtx); err != nil {
		logger.Error("shutdown observability", "error", err)
	}

	// Partial progress is still worth printing.
	if report.Job != "" {
		fmt.Println(report.Summary())
	}
	if runErr != nil {
		fatal(logger, "ingest failed", runErr)
	}
}

func run(ctx context.Context, ingestor usecase.Ingestor, command string, args []string, tournamentIDs []int64) (usecase.IngestionReport, error) {
	switch strings.ToLower(command) {
	case "results":
		input := usecase.FetchResultsInput{TournamentIDs: tournamentIDs}
		if len(args) > 0 {
			day, err := time.ParseInLocation("2006-01-02", args[0], time.UTC)
			if err != nil {
				return usecase.IngestionReport{}, fmt.Errorf("invalid date %q: %w", args[0], err)
			}
			input.Date = &day
		}
		return ingestor.FetchAndStoreResults(ctx, input)
	case "teams":
		return ingestor.FetchAndStoreTeams(ctx, usecase.FetchTeamsInput{TournamentIDs: tournamentIDs})
	case "goal-stats":
		return ingestor.FetchAndStoreGoalStats(ctx)
	default:
		return usecase.IngestionReport{}, fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func fatal(logger *logging.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	_ = logger.Sync()
	os.Exit(1)
}
