// Package timerange computes the [start, end) window for a usage query from
// a preset or a custom pair of bounds.
package timerange

import (
	"fmt"
	"time"
)

// Preset names accepted by Resolve.
const (
	PresetHour   = "1h"
	PresetDay    = "24h"
	PresetWeek   = "7d"
	PresetCustom = "custom"
)

// Window is a half-open [Start, End) range in millisecond epoch.
type Window struct {
	Start int64
	End   int64
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Millisecond
}

// Resolve computes the window for a named range. Presets end at now; the
// custom preset parses RFC3339 bounds from startStr/endStr. An unknown range
// name falls back to the last 24 hours, matching the default view.
func Resolve(rangeName, startStr, endStr string, now time.Time) (Window, error) {
	end := now.UnixMilli()
	switch rangeName {
	case PresetHour:
		return Window{Start: end - time.Hour.Milliseconds(), End: end}, nil
	case PresetDay:
		return Window{Start: end - (24 * time.Hour).Milliseconds(), End: end}, nil
	case PresetWeek:
		return Window{Start: end - (7 * 24 * time.Hour).Milliseconds(), End: end}, nil
	case PresetCustom:
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return Window{}, fmt.Errorf("invalid start %q: %w", startStr, err)
		}
		endTime, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return Window{}, fmt.Errorf("invalid end %q: %w", endStr, err)
		}
		w := Window{Start: start.UnixMilli(), End: endTime.UnixMilli()}
		if w.Start >= w.End {
			return Window{}, fmt.Errorf("start %q is not before end %q", startStr, endStr)
		}
		return w, nil
	default:
		return Window{Start: end - (24 * time.Hour).Milliseconds(), End: end}, nil
	}
}

// FormatDuration renders a millisecond duration the way the usage view shows
// it, e.g. "2h 13m", "5m 42s", "8s".
func FormatDuration(millis int64) string {
	d := time.Duration(millis) * time.Millisecond
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
