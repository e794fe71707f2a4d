package store

import (
	"regexp"
	"strconv"
	"strings"
)

// slotMatcher is one tagged pattern in the parse cascade for stored slot
// strings. Matchers are tried in priority order with explicit fallthrough;
// the looser patterns recover rows written by older extraction paths or
// mangled by upstream noise.
type slotMatcher struct {
	tag string
	re  *regexp.Regexp
}

// coinsPattern captures a full coin value: optional $, the digits, and the
// optional one- or two-letter suffix, spaced ("2 K") or not ("16.78B"). The
// suffix must be captured with the number or a 10^3..10^45 magnitude is lost
// on read-back.
const coinsPattern = `(\$?[\d.,]+(?:\s*[A-Za-z]{1,2})?)`

var slotMatchers = []slotMatcher{
	// Canonical storage form: "Wave: 11453 Coins: 16.78 B"
	{"canonical", regexp.MustCompile(`^Wave:\s*([\d,]+)\s+Coins:\s*` + coinsPattern + `\s*$`)},
	// Missing colons or extra text between the two fields.
	{"loose", regexp.MustCompile(`Wave:?\s*([\d,]+).*?Coins:?\s*` + coinsPattern)},
	// Wave only, coins unreadable.
	{"wave-only", regexp.MustCompile(`Wave:?\s*([\d,]+)`)},
}

// ParseTierSlot decodes a stored slot string back into a TierSlot. Input no
// matcher recognizes yields the zero slot; a ruined row reads as "no recorded
// progress" rather than failing the caller.
func ParseTierSlot(s string) TierSlot {
	s = strings.TrimSpace(s)
	if s == "" {
		return TierSlot{Coins: "0"}
	}

	for _, m := range slotMatchers {
		groups := m.re.FindStringSubmatch(s)
		if groups == nil {
			continue
		}

		wave, err := strconv.Atoi(strings.ReplaceAll(groups[1], ",", ""))
		if err != nil || wave < 0 {
			continue
		}

		coins := "0"
		if len(groups) > 2 && groups[2] != "" {
			coins = groups[2]
		}
		return TierSlot{Wave: wave, Coins: coins}
	}

	return TierSlot{Coins: "0"}
}
