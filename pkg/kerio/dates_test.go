package kerio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatZulu(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2025, 6, 1, 12, 30, 0, 0, berlin)

	assert.Equal(t, "20250601T103000+0000", FormatZulu(ts))
}

func TestFormatLocal(t *testing.T) {
	ts := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "20250601T123000+0200", FormatLocal(ts, time.FixedZone("CEST", 2*60*60)))
	assert.Equal(t, "20250601T053000-0500", FormatLocal(ts, time.FixedZone("CDT", -5*60*60)))
	assert.Equal(t, "20250601T043000-0600", FormatLocal(ts, time.FixedZone("MDT", -6*60*60)))
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "19900215", FormatDay(time.Date(1990, 2, 15, 0, 0, 0, 0, time.UTC)))
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("X", 3*60*60)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2025-06-01T10:30:00Z", time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-06-01T10:30:00.000+02:00", time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-06-01T10:30:00", time.Date(2025, 6, 1, 10, 30, 0, 0, loc)},
		{"2025-06-01 10:30", time.Date(2025, 6, 1, 10, 30, 0, 0, loc)},
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input, loc)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}

	_, err := ParseTime("yesterday", loc)
	assert.Error(t, err)
}

func TestFirstCookie(t *testing.T) {
	assert.Empty(t, FirstCookie(nil))

	header := map[string][]string{"Set-Cookie": {"SID=abc; Path=/", "X=y"}}
	assert.Equal(t, "SID=abc", FirstCookie(header))
}
