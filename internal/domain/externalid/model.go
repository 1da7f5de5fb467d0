package externalid

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags the internal entity an external id points at.
type Kind string

const (
	KindTeam       Kind = "team"
	KindTournament Kind = "tournament"
	KindMatch      Kind = "match"
)

var ErrAlreadyRegistered = errors.New("external id already registered")

func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown entity kind %q", raw)
	}
	return kind, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindTeam, KindTournament, KindMatch:
		return true
	default:
		return false
	}
}

// Record maps one provider id to one internal row.
type Record struct {
	ID         int64
	Kind       Kind
	EntityID   int64
	ExternalID int64
	CreatedAt  time.Time
}
