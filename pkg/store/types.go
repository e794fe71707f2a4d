package store

import (
	"fmt"
	"time"
)

// NumTiers is the number of fixed progress buckets tracked per player.
const NumTiers = 18

// TierSlot is one progress bucket: the best-known wave count and the coin
// amount as originally displayed. Coins keeps the suffixed string; the float
// magnitude is always re-derived from it and never stored.
type TierSlot struct {
	Wave  int
	Coins string
}

// IsZero reports whether the slot carries no recorded progress.
func (s TierSlot) IsZero() bool {
	return s.Wave == 0 && (s.Coins == "" || s.Coins == "0")
}

// String renders the slot in the storage/display form "Wave: <n> Coins: <v>".
func (s TierSlot) String() string {
	coins := s.Coins
	if coins == "" {
		coins = "0"
	}
	return fmt.Sprintf("Wave: %d Coins: %s", s.Wave, coins)
}

// TierSet is a player's full fixed-size tier vector, indexed 0..17 for tiers
// T1..T18. Named column access happens only at the serialization boundary.
type TierSet [NumTiers]TierSlot

// Columns renders all slots into their column form, in tier order.
func (ts TierSet) Columns() []string {
	cols := make([]string, NumTiers)
	for i, s := range ts {
		cols[i] = s.String()
	}
	return cols
}

// TierSetFromColumns parses the stored column form back into a tier vector.
func TierSetFromColumns(cols []string) TierSet {
	var ts TierSet
	for i := 0; i < NumTiers && i < len(cols); i++ {
		ts[i] = ParseTierSlot(cols[i])
	}
	return ts
}

// Equal reports whether two tier vectors are byte-identical in their stored
// column form. Used for history dedup against the immediately preceding entry.
func (ts TierSet) Equal(other TierSet) bool {
	for i := range ts {
		if ts[i].String() != other[i].String() {
			return false
		}
	}
	return true
}

// CurrentState is the single mutable row per player. It is owned by the merge
// coordinator and never deleted; creation is implicit on first observation.
type CurrentState struct {
	PlayerKey   string
	DisplayName string
	Tiers       TierSet
	LastUpdated time.Time
}

// HistoryEntry is an append-only full snapshot of a player's tier vector at
// the moment of a merge.
type HistoryEntry struct {
	ID          int64
	PlayerKey   string
	DisplayName string
	RecordedAt  time.Time
	Tiers       TierSet
}

// StatFieldNames lists the suffixed numeric stat fields in display order.
// game_started is handled separately because it is a date, not a magnitude.
var StatFieldNames = []string{
	"coins_earned",
	"cash_earned",
	"stones_earned",
	"damage_dealt",
	"enemies_destroyed",
	"waves_completed",
	"upgrades_bought",
	"workshop_upgrades",
	"workshop_coins_spent",
	"research_completed",
	"lab_coins_spent",
	"free_upgrades",
	"interest_earned",
	"orb_kills",
	"death_ray_kills",
	"thorn_damage",
	"waves_skipped",
}

// StatsSnapshot is one immutable row per stats upload. Snapshots accumulate;
// the most recent by timestamp is the player's "current" stats. Unlike tier
// state they are never merged in place.
type StatsSnapshot struct {
	ID          int64
	PlayerKey   string
	DisplayName string
	RecordedAt  time.Time
	GameStarted string
	Fields      map[string]string
}

// Field returns the named stat value, or "" when absent.
func (s *StatsSnapshot) Field(name string) string {
	if s == nil || s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}
