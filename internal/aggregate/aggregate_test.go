package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"usage-sync-backend/internal/source"
)

func testResolver(pkg string) (string, error) {
	switch pkg {
	case "com.x":
		return "X App", nil
	case "com.y":
		return "Y App", nil
	}
	return "", fmt.Errorf("unknown package %q", pkg)
}

func TestFromStats(t *testing.T) {
	testCases := []struct {
		name     string
		stats    []source.IntervalStat
		expected []Entry
	}{
		{
			name:     "Empty input yields empty output",
			stats:    nil,
			expected: []Entry{},
		},
		{
			name: "Zero-time rows are excluded",
			stats: []source.IntervalStat{
				{PackageName: "com.x", TotalForeground: 0, FirstTimestamp: 10, LastTimeUsed: 50},
				{PackageName: "com.y", TotalForeground: 1000, FirstTimestamp: 20, LastTimeUsed: 40},
			},
			expected: []Entry{
				{PackageName: "com.y", AppName: "Y App", UsageTime: 1000, FirstUsed: 20, LastUsed: 40},
			},
		},
		{
			name: "Sub-windows sharing a package merge with sum, min first, max last",
			stats: []source.IntervalStat{
				{PackageName: "com.x", TotalForeground: 30000, FirstTimestamp: 10, LastTimeUsed: 50},
				{PackageName: "com.x", TotalForeground: 45000, FirstTimestamp: 5, LastTimeUsed: 60},
			},
			expected: []Entry{
				{PackageName: "com.x", AppName: "X App", UsageTime: 75000, FirstUsed: 5, LastUsed: 60},
			},
		},
		{
			name: "Output sorted descending by usage time",
			stats: []source.IntervalStat{
				{PackageName: "com.x", TotalForeground: 1000, FirstTimestamp: 1, LastTimeUsed: 2},
				{PackageName: "com.y", TotalForeground: 5000, FirstTimestamp: 3, LastTimeUsed: 4},
			},
			expected: []Entry{
				{PackageName: "com.y", AppName: "Y App", UsageTime: 5000, FirstUsed: 3, LastUsed: 4},
				{PackageName: "com.x", AppName: "X App", UsageTime: 1000, FirstUsed: 1, LastUsed: 2},
			},
		},
		{
			name: "Unresolvable name falls back to package name",
			stats: []source.IntervalStat{
				{PackageName: "com.unknown", TotalForeground: 100, FirstTimestamp: 1, LastTimeUsed: 2},
			},
			expected: []Entry{
				{PackageName: "com.unknown", AppName: "com.unknown", UsageTime: 100, FirstUsed: 1, LastUsed: 2},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStats(tc.stats, testResolver)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFromStats_Idempotent(t *testing.T) {
	stats := []source.IntervalStat{
		{PackageName: "com.x", TotalForeground: 30000, FirstTimestamp: 10, LastTimeUsed: 50},
		{PackageName: "com.y", TotalForeground: 45000, FirstTimestamp: 5, LastTimeUsed: 60},
		{PackageName: "com.x", TotalForeground: 1000, FirstTimestamp: 8, LastTimeUsed: 70},
	}

	first := FromStats(stats, testResolver)
	second := FromStats(stats, testResolver)
	assert.Equal(t, first, second)
}

func TestFromEvents(t *testing.T) {
	testCases := []struct {
		name     string
		events   []source.TransitionEvent
		expected []Entry
	}{
		{
			name:     "Empty stream yields empty output",
			events:   nil,
			expected: []Entry{},
		},
		{
			name: "Open session at stream end is dropped",
			events: []source.TransitionEvent{
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 0},
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 100},
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 200},
			},
			expected: []Entry{
				{PackageName: "com.x", AppName: "X App", UsageTime: 100, FirstUsed: 0, LastUsed: 100},
			},
		},
		{
			name: "Background with no open start is ignored",
			events: []source.TransitionEvent{
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 100},
			},
			expected: []Entry{},
		},
		{
			name: "Second foreground overwrites the earlier open start",
			events: []source.TransitionEvent{
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 0},
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 50},
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 80},
			},
			expected: []Entry{
				{PackageName: "com.x", AppName: "X App", UsageTime: 30, FirstUsed: 50, LastUsed: 80},
			},
		},
		{
			name: "Non-positive session durations are discarded",
			events: []source.TransitionEvent{
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 100},
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 100},
			},
			expected: []Entry{},
		},
		{
			name: "Sessions accumulate per package and interleave across packages",
			events: []source.TransitionEvent{
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 0},
				{PackageName: "com.y", Kind: source.EventForeground, Timestamp: 10},
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 40},
				{PackageName: "com.y", Kind: source.EventBackground, Timestamp: 100},
				{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 200},
				{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 260},
			},
			expected: []Entry{
				{PackageName: "com.x", AppName: "X App", UsageTime: 100, FirstUsed: 0, LastUsed: 260},
				{PackageName: "com.y", AppName: "Y App", UsageTime: 90, FirstUsed: 10, LastUsed: 100},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromEvents(tc.events, testResolver)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFromEvents_NilResolver(t *testing.T) {
	events := []source.TransitionEvent{
		{PackageName: "com.x", Kind: source.EventForeground, Timestamp: 0},
		{PackageName: "com.x", Kind: source.EventBackground, Timestamp: 10},
	}

	got := FromEvents(events, nil)
	assert.Len(t, got, 1)
	assert.Equal(t, "com.x", got[0].AppName)
}
