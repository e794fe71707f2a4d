package suffix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The game abbreviates large numbers with a fixed suffix alphabet where each
// step is x1000 over the previous. Single-letter suffixes are case sensitive:
// lowercase q and s are distinct magnitude steps from uppercase Q and S.
var scales = map[string]float64{
	"K":  1e3,
	"M":  1e6,
	"B":  1e9,
	"T":  1e12,
	"q":  1e15,
	"Q":  1e18,
	"s":  1e21,
	"S":  1e24,
	"O":  1e27,
	"N":  1e30,
	"D":  1e33,
	"aa": 1e36,
	"ab": 1e39,
	"ac": 1e42,
	"ad": 1e45,
}

// descending holds suffixes from largest to smallest scale, used by Format.
var descending = []string{"ad", "ac", "ab", "aa", "D", "N", "O", "S", "s", "Q", "q", "T", "B", "M", "K"}

// Two-letter suffixes are listed first in the alternation so "aa" is never
// misread as a failed single-letter match.
var valuePattern = regexp.MustCompile(`^(\$?)([0-9][0-9.,]*)\s*(aa|ab|ac|ad|[KMBTqQsSOND])?$`)

// Decode parses a suffixed value string into a float magnitude for comparison
// purposes only. The magnitude is never used for exact arithmetic or
// re-display. A leading $ and thousands separators are stripped; a missing
// suffix means scale 1. Unparseable input yields (0, false), which callers
// treat as "no evidence of a value" rather than an error.
func Decode(text string) (float64, bool) {
	m := valuePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, false
	}

	num := strings.ReplaceAll(m[2], ",", "")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	if m[3] != "" {
		v *= scales[m[3]]
	}
	return v, true
}

// Normalize canonicalizes suffix spacing: exactly one space between the
// numeric part and the suffix, with a leading $ preserved. It never changes
// the decoded magnitude and is idempotent; input it cannot parse is returned
// unchanged.
func Normalize(text string) string {
	m := valuePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return text
	}

	if m[3] == "" {
		return m[1] + m[2]
	}
	return m[1] + m[2] + " " + m[3]
}

// Format re-encodes a magnitude into a compact display string using the
// largest suffix that fits, with up to two decimals and trailing zeros
// trimmed. Used only by the leaderboard views for derived display values.
func Format(magnitude float64) string {
	abs := magnitude
	if abs < 0 {
		abs = -abs
	}

	for _, sfx := range descending {
		factor := scales[sfx]
		if abs >= factor {
			return trimZeros(magnitude/factor) + " " + sfx
		}
	}

	if magnitude == float64(int64(magnitude)) {
		return strconv.FormatInt(int64(magnitude), 10)
	}
	return fmt.Sprintf("%.2f", magnitude)
}

// Scale returns the multiplier for a suffix, or 1 if the suffix is unknown.
func Scale(sfx string) float64 {
	if v, ok := scales[sfx]; ok {
		return v
	}
	return 1
}

func trimZeros(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
