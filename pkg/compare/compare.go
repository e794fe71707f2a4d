// Package compare decides, field by field, whether a new observation beats
// the stored one. Improvement is always strict: equality keeps the old value.
package compare

import (
	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/suffix"
)

// TierDiff is the structured result of comparing one tier slot.
//
// The merge policy is per-axis: wave and coins are kept independently at
// their historical maxima, so the stored wave never decreases even when the
// coins axis improves. A new account (all-zero baseline) accepts every
// non-zero observation.
type TierDiff struct {
	Merged        store.TierSlot
	WaveImproved  bool
	CoinsImproved bool
}

// Improved reports whether either axis improved.
func (d TierDiff) Improved() bool {
	return d.WaveImproved || d.CoinsImproved
}

// Tier merges one observed slot against the stored one.
func Tier(old, observed store.TierSlot) TierDiff {
	d := TierDiff{Merged: old}

	if observed.Wave > old.Wave {
		d.Merged.Wave = observed.Wave
		d.WaveImproved = true
	}

	oldCoins, _ := suffix.Decode(old.Coins)
	newCoins, _ := suffix.Decode(observed.Coins)
	if newCoins > oldCoins {
		d.Merged.Coins = observed.Coins
		d.CoinsImproved = true
	}

	return d
}

// TierSet merges a full observed vector and reports which slot indices were
// accepted and which were skipped.
func TierSet(old, observed store.TierSet) (merged store.TierSet, accepted, skipped []int) {
	for i := range old {
		d := Tier(old[i], observed[i])
		merged[i] = d.Merged
		if d.Improved() {
			accepted = append(accepted, i)
		} else {
			skipped = append(skipped, i)
		}
	}
	return merged, accepted, skipped
}

// Stats returns the names of fields whose decoded magnitude strictly improved
// over the previous snapshot, across the full stat field set. The list is
// informational only; snapshots are stored regardless. With no prior
// snapshot, every readable non-zero field counts as an improvement.
func Stats(prev, next *store.StatsSnapshot) []string {
	var improved []string
	for _, name := range store.StatFieldNames {
		newMag, ok := suffix.Decode(next.Field(name))
		if !ok {
			continue
		}

		if prev == nil {
			if newMag > 0 {
				improved = append(improved, name)
			}
			continue
		}

		oldMag, _ := suffix.Decode(prev.Field(name))
		if newMag > oldMag {
			improved = append(improved, name)
		}
	}
	return improved
}
