package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caldweld/TowerScoreBoardBot/pkg/suffix"
)

var (
	nonDigits     = regexp.MustCompile(`[^0-9]`)
	canonicalDate = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// A three-decimal value ending in 0 is almost always a misread letter O
	// (e.g. the extractor reads "2.26O" as "2.260").
	threeDecimalZero = regexp.MustCompile(`^\d+\.\d{2}0$`)

	bareNumber = regexp.MustCompile(`^[0-9][0-9.,]*(\s?(aa|ab|ac|ad|[KMBTqQsSOND]))?$`)
)

// monetaryFields name the stat fields that carry a currency marker in game.
var monetaryFields = map[string]bool{
	"cash_earned":     true,
	"interest_earned": true,
}

// Date canonicalizes a game-start date to dd-mm-yyyy. It accepts an 8-digit
// DDMMYYYY run (after stripping non-digits), the already-canonical form, and
// yyyy-mm-dd. Input it cannot parse is returned unchanged; an unreadable date
// is still worth storing as-is.
func Date(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonicalDate.MatchString(trimmed) {
		return trimmed
	}
	if isoDate.MatchString(trimmed) {
		if t, err := time.Parse("2006-01-02", trimmed); err == nil {
			return t.Format("02-01-2006")
		}
	}

	digits := nonDigits.ReplaceAllString(trimmed, "")
	if len(digits) != 8 {
		return raw
	}

	day, _ := strconv.Atoi(digits[:2])
	month, _ := strconv.Atoi(digits[2:4])
	year, _ := strconv.Atoi(digits[4:])
	if validDate(day, month, year) {
		return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
	}

	// Fallback for YYYYMMDD runs, seen when the extractor echoes an ISO date
	// with the separators lost.
	year, _ = strconv.Atoi(digits[:4])
	month, _ = strconv.Atoi(digits[4:6])
	day, _ = strconv.Atoi(digits[6:])
	if validDate(day, month, year) {
		return fmt.Sprintf("%02d-%02d-%04d", day, month, year)
	}

	return raw
}

func validDate(day, month, year int) bool {
	return day >= 1 && day <= 31 && month >= 1 && month <= 12 && year >= 1900 && year <= 2100
}

// StatField cleans extraction noise out of a named stat value: currency
// markers, thousands separators, stray whitespace, and the trailing-zero
// misread on three-decimal values. Suffix spacing is then re-canonicalized
// via the codec, and the two monetary fields get their $ prefix reinstated.
// Apart from the misread correction this is a formatting pass only and never
// alters the decoded magnitude.
func StatField(name, raw string) string {
	if raw == "" || raw == "null" {
		return raw
	}

	cleaned := strings.TrimSpace(raw)
	hasDollar := strings.HasPrefix(cleaned, "$")
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if threeDecimalZero.MatchString(cleaned) {
		cleaned = cleaned[:len(cleaned)-1] + "O"
	}

	cleaned = suffix.Normalize(cleaned)

	if hasDollar || (monetaryFields[name] && bareNumber.MatchString(cleaned)) {
		cleaned = "$" + cleaned
	}
	return cleaned
}
