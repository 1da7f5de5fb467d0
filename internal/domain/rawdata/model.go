package rawdata

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Payload is one provider response archived verbatim for audit and replay.
// A request key holds the latest body fetched for it.
type Payload struct {
	Source       string
	Endpoint     string
	RequestKey   string
	TournamentID *int64
	PayloadJSON  string
	PayloadHash  string
	FetchedAt    time.Time
}

// NewPayload builds the archive entry for body fetched from endpoint with
// the given query string.
func NewPayload(source, endpoint, query string, tournamentID *int64, body []byte, fetchedAt time.Time) Payload {
	key := endpoint
	if query != "" {
		key += "?" + query
	}
	return Payload{
		Source:       source,
		Endpoint:     endpoint,
		RequestKey:   key,
		TournamentID: tournamentID,
		PayloadJSON:  string(body),
		PayloadHash:  Hash(body),
		FetchedAt:    fetchedAt.UTC(),
	}
}

// Hash is the hex sha256 of body.
func Hash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
