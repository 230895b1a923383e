package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"usage-sync-backend/config"
	"usage-sync-backend/internal/model"
	"usage-sync-backend/internal/source"
	"usage-sync-backend/internal/store"
	syncsvc "usage-sync-backend/internal/sync"
)

// TestSyncCycleLifecycle runs two full sync cycles against an in-memory
// database and a fake tracking agent, verifying that the first cycle uploads
// the aggregated window and the second resumes from the watermark with
// nothing new to upload.
func TestSyncCycleLifecycle(t *testing.T) {
	// 1. In-memory SQLite database.
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.UsageRecord{},
		&model.DailyUsageSummary{},
		&model.PushSubscription{},
	))

	// 2. Fake tracking agent: serves one window of stats on the first
	// query and nothing afterwards, recording the requested window starts.
	var mu sync.Mutex
	var queryStarts []int64
	var statsCalls int

	mux := http.NewServeMux()
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Start int64 `json:"start"`
			Page  int   `json:"page"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		mu.Lock()
		if payload.Page == 1 {
			queryStarts = append(queryStarts, payload.Start)
			statsCalls++
		}
		firstCycle := statsCalls == 1
		mu.Unlock()

		var items []source.IntervalStat
		total := 0
		if firstCycle {
			items = []source.IntervalStat{
				{PackageName: "com.browser", TotalForeground: 45000, FirstTimestamp: payload.Start + 10, LastTimeUsed: payload.Start + 60},
				{PackageName: "com.mail", TotalForeground: 30000, FirstTimestamp: payload.Start + 20, LastTimeUsed: payload.Start + 50},
				{PackageName: "com.idle", TotalForeground: 0, FirstTimestamp: payload.Start, LastTimeUsed: payload.Start},
			}
			total = len(items)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"total": total, "items": items},
		})
	})
	mux.HandleFunc("/labels", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			PackageName string `json:"package_name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		label := ""
		if payload.PackageName == "com.browser" {
			label = "Browser"
		}
		// com.mail resolves to nothing; aggregation falls back to the id.
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"label": label},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// 3. Wire the real components together.
	cfg := &config.Config{
		Source: config.SourceConfig{
			StatsURL:             server.URL + "/stats",
			LabelsURL:            server.URL + "/labels",
			PageSize:             10,
			LabelCacheTTLSeconds: 60,
		},
		Sync: config.SyncConfig{
			Enabled:  true,
			DeviceID: "itest-device",
			UserID:   "itest-user",
			Mode:     "stats",
			Lookback: time.Hour,
		},
	}

	adapter := source.NewHTTPAdapter(&cfg.Source)
	appStore := store.NewGormStore(testDB)
	service := syncsvc.NewService(cfg, adapter, syncsvc.NewRepository(appStore), nil)

	ctx := context.Background()
	before := time.Now()

	// --- First cycle: uploads two records and one summary. ---
	outcome, ok := service.TrySyncOnce(ctx)
	require.True(t, ok)
	assert.Equal(t, syncsvc.ResultSucceeded, outcome.Result)
	assert.Equal(t, 2, outcome.RecordsUploaded)

	var records []model.UsageRecord
	require.NoError(t, testDB.Order("usage_time DESC").Find(&records).Error)
	require.Len(t, records, 2, "zero-time app must not be uploaded")
	assert.Equal(t, "com.browser", records[0].PackageName)
	assert.Equal(t, "Browser", records[0].AppName)
	assert.Equal(t, "com.mail", records[1].AppName, "unresolvable label falls back to the package name")
	assert.Equal(t, "itest-device", records[0].DeviceID)
	assert.Equal(t, records[0].Timestamp, records[1].Timestamp)

	var summaries []model.DailyUsageSummary
	require.NoError(t, testDB.Find(&summaries).Error)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(75000), summaries[0].TotalScreenTime)
	assert.Equal(t, 2, summaries[0].AppCount)
	assert.Equal(t, "Browser", summaries[0].MostUsedApp)

	// The first cycle starts from the default lookback.
	mu.Lock()
	require.Len(t, queryStarts, 1)
	firstStart := queryStarts[0]
	mu.Unlock()
	assert.InDelta(t, before.Add(-time.Hour).UnixMilli(), firstStart, 5000)

	// --- Second cycle: resumes from the watermark, uploads nothing. ---
	outcome, ok = service.TrySyncOnce(ctx)
	require.True(t, ok)
	assert.Equal(t, syncsvc.ResultSucceeded, outcome.Result)
	assert.Equal(t, 0, outcome.RecordsUploaded)

	mu.Lock()
	require.Len(t, queryStarts, 2)
	secondStart := queryStarts[1]
	mu.Unlock()
	assert.Equal(t, records[0].Timestamp, secondStart, "second cycle must start at the uploaded watermark")

	// No new rows were appended.
	var recordCount, summaryCount int64
	testDB.Model(&model.UsageRecord{}).Count(&recordCount)
	testDB.Model(&model.DailyUsageSummary{}).Count(&summaryCount)
	assert.Equal(t, int64(2), recordCount)
	assert.Equal(t, int64(1), summaryCount)
}
