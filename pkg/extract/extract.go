// Package extract defines the contract with the external vision/OCR
// collaborator that turns screenshots into raw field maps. The engine never
// performs image work itself; it consumes the collaborator's output.
package extract

import (
	"context"
	"time"
)

// Kind classifies an extracted screenshot.
type Kind string

const (
	KindTier    Kind = "tier"
	KindStats   Kind = "stats"
	KindInvalid Kind = "invalid"
)

// TierObservation is one extracted tier entry: the wave count and the coin
// value exactly as displayed, suffix included.
type TierObservation struct {
	Wave  int    `json:"wave"`
	Coins string `json:"coins"`
}

// TierExtraction is the raw tier-screen field map. Tiers is keyed by tier
// number 1..18; Summary carries pass-through fields such as thorn_damage and
// waves_skipped unchanged.
type TierExtraction struct {
	Summary map[string]string       `json:"summary,omitempty"`
	Tiers   map[int]TierObservation `json:"tiers"`
}

// StatsExtraction is the raw stats-screen field map: game_started plus the
// named suffixed fields, any of which may be absent.
type StatsExtraction map[string]string

// Result is the collaborator's full answer for one image.
type Result struct {
	Kind       Kind             `json:"image_type"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason,omitempty"`
	Tiers      *TierExtraction  `json:"tier_data,omitempty"`
	Stats      *StatsExtraction `json:"stats_data,omitempty"`
}

// Client is the extraction collaborator. Implementations perform network I/O
// and must honor context cancellation.
type Client interface {
	Extract(ctx context.Context, imageURL string) (*Result, error)
}

type timeoutClient struct {
	inner Client
	limit time.Duration
}

// WithTimeout bounds every Extract call. The bound applies before any merge
// lock is taken, so a slow collaborator never holds up other uploads for the
// same player.
func WithTimeout(c Client, limit time.Duration) Client {
	if limit <= 0 {
		return c
	}
	return &timeoutClient{inner: c, limit: limit}
}

func (t *timeoutClient) Extract(ctx context.Context, imageURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()
	return t.inner.Extract(ctx, imageURL)
}
