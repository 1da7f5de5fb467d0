package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Team, bool, error)
	// CreateWithExternalID inserts the team and registers its provider id in
	// one transaction. Returns ErrSlugTaken on a slug collision.
	CreateWithExternalID(ctx context.Context, item Team, externalID int64) (Team, error)
	UpdateLogo(ctx context.Context, id int64, logoPath string) error
	ListMissingLogo(ctx context.Context, ids []int64) ([]Team, error)
}
