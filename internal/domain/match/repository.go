package match

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// CreatePair persists home, its mirror and the registry row for the
	// home side's external id in one transaction. home and away are expected
	// to be derived already.
	CreatePair(ctx context.Context, home, away Match, externalID int64) (Pair, error)
	// UpdatePair rewrites the mutable and derived fields of both rows in one
	// transaction. Returns ErrMirrorMissing when the away row cannot be found.
	UpdatePair(ctx context.Context, home, away Match) (Pair, error)
	// DeletePair removes mirror, registry row and home in one transaction.
	// mirrorFound is false when the home row had no mirror.
	DeletePair(ctx context.Context, homeID int64) (mirrorFound bool, err error)
	ListCompletedByTournamentAndDate(ctx context.Context, tournamentID int64, day time.Time) ([]Match, error)
	ListMissingGoalStats(ctx context.Context, limit int) ([]Match, error)
	UpdateGoalStats(ctx context.Context, id int64, stats GoalsStats) error
}
