package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		rangeName string
		start     string
		end       string
		expected  Window
		expectErr bool
	}{
		{
			name:      "One hour preset",
			rangeName: "1h",
			expected:  Window{Start: now.Add(-time.Hour).UnixMilli(), End: now.UnixMilli()},
		},
		{
			name:      "24 hour preset",
			rangeName: "24h",
			expected:  Window{Start: now.Add(-24 * time.Hour).UnixMilli(), End: now.UnixMilli()},
		},
		{
			name:      "7 day preset",
			rangeName: "7d",
			expected:  Window{Start: now.Add(-7 * 24 * time.Hour).UnixMilli(), End: now.UnixMilli()},
		},
		{
			name:      "Unknown range falls back to 24 hours",
			rangeName: "fortnight",
			expected:  Window{Start: now.Add(-24 * time.Hour).UnixMilli(), End: now.UnixMilli()},
		},
		{
			name:      "Custom range with valid bounds",
			rangeName: "custom",
			start:     "2026-08-27T00:00:00Z",
			end:       "2026-08-27T12:00:00Z",
			expected: Window{
				Start: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC).UnixMilli(),
				End:   time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC).UnixMilli(),
			},
		},
		{
			name:      "Custom range with malformed start",
			rangeName: "custom",
			start:     "yesterday",
			end:       "2026-08-27T12:00:00Z",
			expectErr: true,
		},
		{
			name:      "Custom range with start after end",
			rangeName: "custom",
			start:     "2026-08-27T12:00:00Z",
			end:       "2026-08-27T00:00:00Z",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.rangeName, tc.start, tc.end, now)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 13m", FormatDuration((2*time.Hour + 13*time.Minute).Milliseconds()))
	assert.Equal(t, "5m 42s", FormatDuration((5*time.Minute + 42*time.Second).Milliseconds()))
	assert.Equal(t, "8s", FormatDuration((8 * time.Second).Milliseconds()))
	assert.Equal(t, "0s", FormatDuration(0))
}
