package domain

import "time"

// GameRecord is the persisted definition of a game identifier.
// CanonicalMoves is the re-exported main line, never the raw tag body.
type GameRecord struct {
	ID             string    `json:"id"`
	CanonicalMoves string    `json:"canonical_moves"`
	OriginPage     string    `json:"origin_page"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
