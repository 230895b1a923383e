package sync

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"usage-sync-backend/config"
	"usage-sync-backend/internal/aggregate"
	"usage-sync-backend/internal/notification"
	"usage-sync-backend/internal/source"
)

// Result is the terminal outcome of one sync cycle.
type Result string

const (
	// ResultSucceeded means the cycle finished; records (possibly zero) were
	// uploaded.
	ResultSucceeded Result = "succeeded"
	// ResultRetryable means the record upload failed; the caller should
	// reschedule with backoff.
	ResultRetryable Result = "retryable_failure"
	// ResultFatal means the cycle hit an unexpected fault; the caller must
	// not retry automatically.
	ResultFatal Result = "fatal_failure"
)

// Outcome reports a cycle's result and the number of records uploaded.
type Outcome struct {
	Result          Result `json:"result"`
	RecordsUploaded int    `json:"records_uploaded"`
}

// Service drives sync cycles for the configured device: resolve watermark,
// query the source, aggregate, build records, upload.
type Service struct {
	cfg        *config.Config
	source     source.Adapter
	repo       *Repository
	workerPool *notification.WorkerPool
	loc        *time.Location
	nowFn      func() time.Time

	// busy guards the at-most-one-cycle-per-device contract.
	busy atomic.Bool
}

// NewService creates and initializes a new sync service. workerPool may be
// nil when outcome notifications are not wanted.
func NewService(cfg *config.Config, adapter source.Adapter, repo *Repository, workerPool *notification.WorkerPool) *Service {
	loc := time.Local
	if cfg.Sync.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Sync.Timezone)
		if err != nil {
			log.Printf("Warning: invalid timezone %q: %v. Using local time.", cfg.Sync.Timezone, err)
		} else {
			loc = parsed
		}
	}

	return &Service{
		cfg:        cfg,
		source:     adapter,
		repo:       repo,
		workerPool: workerPool,
		loc:        loc,
		nowFn:      time.Now,
	}
}

// Run starts the periodic sync loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sync.Enabled {
		log.Println("Sync is disabled. Not starting.")
		return
	}
	log.Println("Starting sync service...")

	s.runCycle(ctx)

	timer := time.NewTimer(s.cfg.Sync.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync service shutting down.")
			return
		case <-timer.C:
			s.runCycle(ctx)
			timer.Reset(s.cfg.Sync.Interval)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	outcome, ok := s.TrySyncOnce(ctx)
	if !ok {
		log.Println("Skipping scheduled cycle: a sync is already in flight.")
		return
	}
	log.Printf("Sync cycle finished: %s (%d records)", outcome.Result, outcome.RecordsUploaded)
}

// TrySyncOnce runs one sync cycle unless a cycle is already in flight, in
// which case it reports false without running.
func (s *Service) TrySyncOnce(ctx context.Context) (Outcome, bool) {
	if !s.busy.CompareAndSwap(false, true) {
		return Outcome{}, false
	}
	defer s.busy.Store(false)
	return s.syncOnce(ctx), true
}

// syncOnce executes one full cycle. Expected failure classes are handled
// fail-soft inside; anything unexpected is recovered here and reported as a
// fatal outcome.
func (s *Service) syncOnce(ctx context.Context) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Sync cycle aborted on unexpected fault: %v", r)
			out = Outcome{Result: ResultFatal}
		}
	}()

	deviceID := s.cfg.Sync.DeviceID
	now := s.nowFn().In(s.loc)

	last := s.repo.LastSyncTime(ctx, deviceID)
	windowStart := last
	if windowStart <= 0 {
		windowStart = now.Add(-s.cfg.Sync.Lookback).UnixMilli()
	}
	windowEnd := now.UnixMilli()

	log.Printf("Syncing device %s from %d to %d", deviceID, windowStart, windowEnd)

	entries := s.collect(ctx, windowStart, windowEnd)
	if len(entries) == 0 {
		log.Println("No usage data to sync.")
		return Outcome{Result: ResultSucceeded}
	}

	records, summary := buildRecords(entries, deviceID, s.cfg.Sync.UserID, windowStart, windowEnd, now)

	if !s.repo.UploadRecords(ctx, records) {
		s.notify(deviceID, false, 0)
		return Outcome{Result: ResultRetryable}
	}

	// The cycle result is gated on the record upload only; a failed summary
	// upload does not demote it.
	if !s.repo.UploadSummary(ctx, summary) {
		log.Println("Daily summary upload failed; cycle result unaffected.")
	}

	s.notify(deviceID, true, len(records))
	return Outcome{Result: ResultSucceeded, RecordsUploaded: len(records)}
}

// collect queries the source in the configured mode and aggregates the raw
// data. Source-read errors are treated as empty results, not propagated.
func (s *Service) collect(ctx context.Context, start, end int64) []aggregate.Entry {
	resolve := func(pkg string) (string, error) {
		return s.source.ResolveDisplayName(ctx, pkg)
	}

	switch s.cfg.Sync.Mode {
	case "events":
		events, err := s.source.QueryTransitionEvents(ctx, start, end)
		if err != nil {
			log.Printf("Error querying transition events: %v", err)
			events = nil
		}
		return aggregate.FromEvents(events, resolve)
	default:
		stats, err := s.source.QueryIntervalStats(ctx, start, end)
		if err != nil {
			log.Printf("Error querying interval stats: %v", err)
			stats = nil
		}
		return aggregate.FromStats(stats, resolve)
	}
}

func (s *Service) notify(deviceID string, succeeded bool, records int) {
	if s.workerPool == nil {
		return
	}
	s.workerPool.Dispatch(notification.Job{
		DeviceID:  deviceID,
		Succeeded: succeeded,
		Records:   records,
	})
}
