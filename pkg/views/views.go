// Package views derives read-only aggregations from stored player state:
// best-tier summaries and the leaderboard rankings served by the API. All
// ranking logic is pure over loaded rows so the same result is produced no
// matter which process computes it.
package views

import (
	"sort"
	"strconv"
	"strings"

	"github.com/caldweld/TowerScoreBoardBot/pkg/store"
	"github.com/caldweld/TowerScoreBoardBot/pkg/suffix"
)

// Kind selects a leaderboard ranking.
type Kind string

const (
	KindBestTier Kind = "best"
	KindMaxWave  Kind = "wave"
	KindMaxCoins Kind = "coins"
	KindTier     Kind = "tier"
	KindStat     Kind = "stat"
)

// ParseTier accepts a tier selector like "T5" or "5" and bounds-checks the
// tier number.
func ParseTier(raw string) (int, bool) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "T")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > store.NumTiers {
		return 0, false
	}
	return n, true
}

// Row is one leaderboard entry. Coins holds the stored display form; Value
// holds the compact re-encoding used for stat boards.
type Row struct {
	Rank        int     `json:"rank"`
	PlayerKey   string  `json:"player_key"`
	DisplayName string  `json:"display_name"`
	Tier        int     `json:"tier,omitempty"`
	Wave        int     `json:"wave,omitempty"`
	Coins       string  `json:"coins,omitempty"`
	Value       string  `json:"value,omitempty"`
	Magnitude   float64 `json:"-"`
}

// BestTier returns the highest tier with any recorded progress, 1-based, and
// its slot. ok is false for an account with no progress at all.
func BestTier(ts store.TierSet) (tier int, slot store.TierSlot, ok bool) {
	for i := store.NumTiers - 1; i >= 0; i-- {
		if !ts[i].IsZero() {
			return i + 1, ts[i], true
		}
	}
	return 0, store.TierSlot{}, false
}

// MaxWave returns the highest wave across all tiers and the 1-based tier
// holding it.
func MaxWave(ts store.TierSet) (tier, wave int) {
	for i, s := range ts {
		if s.Wave > wave {
			tier, wave = i+1, s.Wave
		}
	}
	return tier, wave
}

// MaxCoins returns the largest coin value across all tiers by decoded
// magnitude, with its 1-based tier and display form.
func MaxCoins(ts store.TierSet) (tier int, coins string, magnitude float64) {
	for i, s := range ts {
		if m, ok := suffix.Decode(s.Coins); ok && m > magnitude {
			tier, coins, magnitude = i+1, s.Coins, m
		}
	}
	return tier, coins, magnitude
}

// RankBestTier orders players by best tier reached, ties broken by wave then
// coin magnitude, both descending. Players with no progress are omitted.
func RankBestTier(states []store.CurrentState) []Row {
	rows := make([]Row, 0, len(states))
	for _, st := range states {
		tier, slot, ok := BestTier(st.Tiers)
		if !ok {
			continue
		}
		mag, _ := suffix.Decode(slot.Coins)
		rows = append(rows, Row{
			PlayerKey:   st.PlayerKey,
			DisplayName: st.DisplayName,
			Tier:        tier,
			Wave:        slot.Wave,
			Coins:       slot.Coins,
			Magnitude:   mag,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Tier != rows[j].Tier {
			return rows[i].Tier > rows[j].Tier
		}
		if rows[i].Wave != rows[j].Wave {
			return rows[i].Wave > rows[j].Wave
		}
		return rows[i].Magnitude > rows[j].Magnitude
	})
	return numbered(rows)
}

// RankMaxWave orders players by their highest wave on any tier.
func RankMaxWave(states []store.CurrentState) []Row {
	rows := make([]Row, 0, len(states))
	for _, st := range states {
		tier, wave := MaxWave(st.Tiers)
		if wave == 0 {
			continue
		}
		rows = append(rows, Row{
			PlayerKey:   st.PlayerKey,
			DisplayName: st.DisplayName,
			Tier:        tier,
			Wave:        wave,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Wave > rows[j].Wave })
	return numbered(rows)
}

// RankMaxCoins orders players by their largest coin value on any tier.
func RankMaxCoins(states []store.CurrentState) []Row {
	rows := make([]Row, 0, len(states))
	for _, st := range states {
		tier, coins, mag := MaxCoins(st.Tiers)
		if mag == 0 {
			continue
		}
		rows = append(rows, Row{
			PlayerKey:   st.PlayerKey,
			DisplayName: st.DisplayName,
			Tier:        tier,
			Coins:       coins,
			Magnitude:   mag,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Magnitude > rows[j].Magnitude })
	return numbered(rows)
}

// RankTier orders players by their progress on one specific tier, wave first,
// coin magnitude breaking ties. Players with nothing recorded on that tier are
// omitted. tier is 1-based.
func RankTier(states []store.CurrentState, tier int) []Row {
	rows := make([]Row, 0, len(states))
	for _, st := range states {
		slot := st.Tiers[tier-1]
		if slot.IsZero() {
			continue
		}
		mag, _ := suffix.Decode(slot.Coins)
		rows = append(rows, Row{
			PlayerKey:   st.PlayerKey,
			DisplayName: st.DisplayName,
			Tier:        tier,
			Wave:        slot.Wave,
			Coins:       slot.Coins,
			Magnitude:   mag,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wave != rows[j].Wave {
			return rows[i].Wave > rows[j].Wave
		}
		return rows[i].Magnitude > rows[j].Magnitude
	})
	return numbered(rows)
}

// RankStat orders players by their best-ever value for one stats field,
// taking the max decoded magnitude over every snapshot so a later worse
// reading never demotes anyone.
func RankStat(snapshots []store.StatsSnapshot, field string) []Row {
	type best struct {
		displayName string
		magnitude   float64
	}
	byPlayer := make(map[string]best)
	for _, snap := range snapshots {
		raw := snap.Field(field)
		if raw == "" {
			continue
		}
		mag, ok := suffix.Decode(raw)
		if !ok {
			continue
		}
		cur, seen := byPlayer[snap.PlayerKey]
		if !seen || mag > cur.magnitude {
			byPlayer[snap.PlayerKey] = best{
				displayName: snap.DisplayName,
				magnitude:   mag,
			}
		}
	}

	rows := make([]Row, 0, len(byPlayer))
	for key, b := range byPlayer {
		rows = append(rows, Row{
			PlayerKey:   key,
			DisplayName: b.displayName,
			Value:       suffix.Format(b.magnitude),
			Magnitude:   b.magnitude,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Magnitude != rows[j].Magnitude {
			return rows[i].Magnitude > rows[j].Magnitude
		}
		return rows[i].PlayerKey < rows[j].PlayerKey
	})
	return numbered(rows)
}

func numbered(rows []Row) []Row {
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
