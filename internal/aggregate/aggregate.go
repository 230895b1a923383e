// Package aggregate turns raw usage-tracking data into deduplicated
// per-application usage entries. Both input shapes (interval statistics and
// transition events) reduce to the same output model.
package aggregate

import (
	"sort"

	"usage-sync-backend/internal/source"
)

// Entry is one application's aggregated foreground usage.
type Entry struct {
	PackageName string `json:"package_name"`
	AppName     string `json:"app_name"`
	UsageTime   int64  `json:"usage_time"` // milliseconds
	FirstUsed   int64  `json:"first_used"` // millisecond epoch
	LastUsed    int64  `json:"last_used"`  // millisecond epoch
}

// NameResolver maps a package name to a display label. Implementations may
// fail; the aggregator substitutes the package name itself.
type NameResolver func(packageName string) (string, error)

// FromStats merges interval statistics into one entry per package. Rows with
// no foreground time are dropped before merging; rows sharing a package sum
// their times and widen the first/last bounds.
func FromStats(stats []source.IntervalStat, resolve NameResolver) []Entry {
	merged := make(map[string]Entry)
	for _, stat := range stats {
		if stat.TotalForeground <= 0 {
			continue
		}
		existing, ok := merged[stat.PackageName]
		if !ok {
			merged[stat.PackageName] = Entry{
				PackageName: stat.PackageName,
				UsageTime:   stat.TotalForeground,
				FirstUsed:   stat.FirstTimestamp,
				LastUsed:    stat.LastTimeUsed,
			}
			continue
		}
		existing.UsageTime += stat.TotalForeground
		if stat.FirstTimestamp < existing.FirstUsed {
			existing.FirstUsed = stat.FirstTimestamp
		}
		if stat.LastTimeUsed > existing.LastUsed {
			existing.LastUsed = stat.LastTimeUsed
		}
		merged[stat.PackageName] = existing
	}

	return finalize(merged, resolve)
}

// FromEvents reconstructs foreground sessions from the ordered event stream
// and aggregates them per package. A foreground event opens (or reopens) a
// session; a background event closes it. Sessions still open when the stream
// ends are dropped rather than imputed, trading completeness for precision at
// the window boundary.
func FromEvents(events []source.TransitionEvent, resolve NameResolver) []Entry {
	openStarts := make(map[string]int64)
	merged := make(map[string]Entry)

	for _, ev := range events {
		switch ev.Kind {
		case source.EventForeground:
			// A second foreground for an already-open package starts a
			// fresh session; the earlier open is dropped uncounted.
			openStarts[ev.PackageName] = ev.Timestamp
		case source.EventBackground:
			start, ok := openStarts[ev.PackageName]
			if !ok {
				continue
			}
			delete(openStarts, ev.PackageName)

			duration := ev.Timestamp - start
			if duration <= 0 {
				continue
			}

			existing, ok := merged[ev.PackageName]
			if !ok {
				merged[ev.PackageName] = Entry{
					PackageName: ev.PackageName,
					UsageTime:   duration,
					FirstUsed:   start,
					LastUsed:    ev.Timestamp,
				}
				continue
			}
			existing.UsageTime += duration
			if start < existing.FirstUsed {
				existing.FirstUsed = start
			}
			if ev.Timestamp > existing.LastUsed {
				existing.LastUsed = ev.Timestamp
			}
			merged[ev.PackageName] = existing
		}
	}

	return finalize(merged, resolve)
}

// finalize resolves display names and orders entries by descending usage time.
func finalize(merged map[string]Entry, resolve NameResolver) []Entry {
	entries := make([]Entry, 0, len(merged))
	for _, entry := range merged {
		entry.AppName = displayName(entry.PackageName, resolve)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].UsageTime != entries[j].UsageTime {
			return entries[i].UsageTime > entries[j].UsageTime
		}
		return entries[i].PackageName < entries[j].PackageName
	})

	return entries
}

func displayName(packageName string, resolve NameResolver) string {
	if resolve == nil {
		return packageName
	}
	label, err := resolve(packageName)
	if err != nil || label == "" {
		return packageName
	}
	return label
}
