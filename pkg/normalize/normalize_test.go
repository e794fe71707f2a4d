package normalize

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22052025", "22-05-2025"},
		{"23012025", "23-01-2025"},
		{"2025-05-22", "22-05-2025"},
		{"22-05-2025", "22-05-2025"},
		{"22/05/2025", "22-05-2025"},
		{"20250522", "22-05-2025"},
		{"not-a-date", "not-a-date"},
		{"", ""},
		{"99999999", "99999999"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Date(tt.in), "Date(%q)", tt.in)
	}
}

func TestDateIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Date(Date(x)) == Date(x)", prop.ForAll(
		func(day, month, year int) bool {
			raw := pad2(day) + pad2(month) + pad4(year)
			once := Date(raw)
			return Date(once) == once
		},
		gen.IntRange(1, 31),
		gen.IntRange(1, 12),
		gen.IntRange(1900, 2100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func pad2(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func pad4(n int) string {
	return pad2(n/100) + pad2(n%100)
}

func TestStatField(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"coins_earned", "616.32B", "616.32 B"},
		{"coins_earned", "616.32 B", "616.32 B"},
		{"cash_earned", "$1.01T", "$1.01 T"},
		{"cash_earned", "1.01T", "$1.01 T"},
		{"interest_earned", "15.03M", "$15.03 M"},
		{"damage_dealt", "2.260", "2.26 O"},
		{"waves_skipped", "18,004", "18004"},
		{"stones_earned", "855", "855"},
		{"research_completed", "", ""},
		{"orb_kills", "null", "null"},
		{"thorn_damage", "  525.69S ", "525.69 S"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatField(tt.name, tt.in), "StatField(%q, %q)", tt.name, tt.in)
	}
}

func TestStatFieldIdempotent(t *testing.T) {
	fields := []string{"coins_earned", "cash_earned", "interest_earned", "damage_dealt", "waves_skipped"}
	inputs := []string{"616.32B", "$1.01T", "2.260", "18,004", "525.69 S", "garbage"}

	for _, f := range fields {
		for _, in := range inputs {
			once := StatField(f, in)
			assert.Equal(t, once, StatField(f, once), "StatField(%q, %q) not idempotent", f, in)
		}
	}
}

func TestStatFieldKeepsNonNumericText(t *testing.T) {
	assert.Equal(t, "unreadable", StatField("coins_earned", "unreadable"))
}
