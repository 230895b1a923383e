package sync

import (
	"context"
	"log"

	"usage-sync-backend/internal/model"
	"usage-sync-backend/internal/store"
)

// Repository is the fail-soft boundary in front of the remote store. Upload
// errors become a boolean result and watermark errors become "no prior sync";
// callers are designed around these soft-fail semantics and must never see an
// error from here.
type Repository struct {
	store store.Store
}

// NewRepository creates a repository over the given store.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s}
}

// UploadRecords appends the record batch in one call. Returns false on any
// store failure.
func (r *Repository) UploadRecords(ctx context.Context, records []model.UsageRecord) bool {
	if err := r.store.InsertUsageRecords(ctx, records); err != nil {
		log.Printf("Error uploading usage records: %v", err)
		return false
	}
	log.Printf("Successfully uploaded %d records", len(records))
	return true
}

// UploadSummary appends one daily summary row. Returns false on any store
// failure.
func (r *Repository) UploadSummary(ctx context.Context, summary *model.DailyUsageSummary) bool {
	if err := r.store.InsertDailySummary(ctx, summary); err != nil {
		log.Printf("Error uploading daily summary: %v", err)
		return false
	}
	log.Printf("Successfully uploaded daily summary for %s", summary.Date)
	return true
}

// LastSyncTime returns the device's sync watermark, or 0 when the device has
// never synced or the query fails.
func (r *Repository) LastSyncTime(ctx context.Context, deviceID string) int64 {
	last, err := r.store.LastSyncTime(ctx, deviceID)
	if err != nil {
		log.Printf("Error getting last sync time: %v", err)
		return 0
	}
	return last
}
