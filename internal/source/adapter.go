package source

import "context"

// IntervalStat is one application's pre-bucketed foreground statistics for a
// sub-window of a query range. Multiple rows may share a package name; the
// aggregator merges them.
type IntervalStat struct {
	PackageName     string `json:"package_name"`
	TotalForeground int64  `json:"total_foreground"` // milliseconds
	FirstTimestamp  int64  `json:"first_timestamp"`  // millisecond epoch
	LastTimeUsed    int64  `json:"last_time_used"`   // millisecond epoch
}

// EventKind classifies a foreground transition event.
type EventKind int

const (
	EventForeground EventKind = iota + 1
	EventBackground
)

// TransitionEvent is one raw foreground/background transition. Events arrive
// ordered by timestamp.
type TransitionEvent struct {
	PackageName string    `json:"package_name"`
	Kind        EventKind `json:"kind"`
	Timestamp   int64     `json:"timestamp"` // millisecond epoch
}

// Adapter wraps the platform usage-tracking capability. Query ranges are
// half-open [start, end) millisecond epoch windows.
type Adapter interface {
	QueryIntervalStats(ctx context.Context, start, end int64) ([]IntervalStat, error)
	QueryTransitionEvents(ctx context.Context, start, end int64) ([]TransitionEvent, error)

	// ResolveDisplayName maps a package name to its human-readable label.
	// Callers substitute the package name itself on error.
	ResolveDisplayName(ctx context.Context, packageName string) (string, error)
}
