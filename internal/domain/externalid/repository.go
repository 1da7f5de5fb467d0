package externalid

import "context"

type Repository interface {
	Resolve(ctx context.Context, kind Kind, externalID int64) (Record, bool, error)
	LookupByInternal(ctx context.Context, kind Kind, entityID int64) (Record, bool, error)
	// Register fails with ErrAlreadyRegistered when either the external id or
	// the entity is already mapped for kind.
	Register(ctx context.Context, kind Kind, externalID, entityID int64) (Record, error)
	Remove(ctx context.Context, kind Kind, entityID int64) (bool, error)
}
