package rawdata

import "context"

type Repository interface {
	// Archive stores item under (Source, RequestKey). changed is false when
	// the stored body already has the same hash.
	Archive(ctx context.Context, item Payload) (changed bool, err error)
}
