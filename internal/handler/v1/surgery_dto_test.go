package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	ist := time.FixedZone("", 5*60*60+30*60)

	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-10-27T10:00:00Z", time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC)},
		{"2025-10-27T10:00:00+05:30", time.Date(2025, time.October, 27, 10, 0, 0, 0, ist)},
		{"2025-10-27T10:00:00+0530", time.Date(2025, time.October, 27, 10, 0, 0, 0, ist)},
		{"2025-10-27T10:00:00.250", time.Date(2025, time.October, 27, 10, 0, 0, 250_000_000, time.UTC)},
		{"2025-10-27T10:00:00", time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC)},
		{"2025-10-27T10:00", time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC)},
		{"2025-10-27 10:00:00", time.Date(2025, time.October, 27, 10, 0, 0, 0, time.UTC)},
		{" 2025-10-27 ", time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseDateTime(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseDateTime_Rejects(t *testing.T) {
	for _, raw := range []string{"", "next tuesday", "27/10/2025", "2025-13-01T10:00:00"} {
		_, err := parseDateTime(raw)
		assert.Error(t, err, raw)
	}
}
