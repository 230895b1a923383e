package sync

import (
	"time"

	"usage-sync-backend/internal/aggregate"
	"usage-sync-backend/internal/model"
)

// buildRecords converts aggregated entries into upload-ready records and the
// cycle's daily summary. Each record is stamped with the upload time and the
// sync window it covers. Empty input yields no records and no summary.
func buildRecords(entries []aggregate.Entry, deviceID, userID string, windowStart, windowEnd int64, now time.Time) ([]model.UsageRecord, *model.DailyUsageSummary) {
	if len(entries) == 0 {
		return nil, nil
	}

	uploadedAt := now.UnixMilli()
	records := make([]model.UsageRecord, 0, len(entries))

	var totalScreenTime int64
	var mostUsedApp string
	var maxUsageTime int64

	for _, entry := range entries {
		records = append(records, model.UsageRecord{
			DeviceID:    deviceID,
			UserID:      userID,
			PackageName: entry.PackageName,
			AppName:     entry.AppName,
			UsageTime:   entry.UsageTime,
			FirstUsed:   entry.FirstUsed,
			LastUsed:    entry.LastUsed,
			Timestamp:   uploadedAt,
			StartPeriod: windowStart,
			EndPeriod:   windowEnd,
		})

		totalScreenTime += entry.UsageTime
		if entry.UsageTime > maxUsageTime {
			maxUsageTime = entry.UsageTime
			mostUsedApp = entry.AppName
		}
	}

	summary := &model.DailyUsageSummary{
		DeviceID:        deviceID,
		UserID:          userID,
		Date:            now.Format("2006-01-02"),
		TotalScreenTime: totalScreenTime,
		AppCount:        len(records),
		MostUsedApp:     mostUsedApp,
	}

	return records, summary
}
