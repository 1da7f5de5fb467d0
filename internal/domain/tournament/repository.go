package tournament

import "context"

// Repository describes tournament persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Tournament, bool, error)
	ListCurrent(ctx context.Context) ([]Tournament, error)
	ListByIDs(ctx context.Context, ids []int64) ([]Tournament, error)
}
