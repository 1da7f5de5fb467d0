package stage

import (
	"context"
	"strings"
)

// Stage names a knockout round, used instead of a numeric tour.
type Stage struct {
	ID            int64
	Title         string
	ProviderTitle string
}

type Repository interface {
	// GetOrCreate returns the stage matching the provider round label,
	// creating it with the label as title when absent.
	GetOrCreate(ctx context.Context, providerTitle string) (Stage, error)
}

func NormalizeProviderTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
