package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/homeflux/analytics/internal/models"
)

func onlineAt(deviceID int64, hour int) models.DeviceEvent {
	return ev(deviceID, models.KindOnline, time.Date(2026, 3, 1, hour, 0, 0, 0, time.UTC))
}

func TestAnalyzeUsagePatterns_PeakHour(t *testing.T) {
	tests := []struct {
		name     string
		events   []models.DeviceEvent
		wantPeak int
	}{
		{
			name:     "no events",
			events:   nil,
			wantPeak: -1,
		},
		{
			name: "only offline events",
			events: []models.DeviceEvent{
				ev(1, models.KindOffline, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
			},
			wantPeak: -1,
		},
		{
			name: "single busiest hour",
			events: []models.DeviceEvent{
				onlineAt(1, 7), onlineAt(2, 18), onlineAt(3, 18),
			},
			wantPeak: 18,
		},
		{
			name: "tie resolved to the smaller hour",
			events: []models.DeviceEvent{
				onlineAt(1, 14), onlineAt(2, 14), onlineAt(3, 14),
				onlineAt(4, 9), onlineAt(5, 9), onlineAt(6, 9),
			},
			wantPeak: 9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := AnalyzeUsagePatterns(tt.events, Reconstructor{})
			assert.Equal(t, tt.wantPeak, pattern.PeakHour)
		})
	}
}

func TestAnalyzeUsagePatterns_RunStats(t *testing.T) {
	base := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	events := []models.DeviceEvent{
		ev(1, models.KindOnline, base),
		ev(1, models.KindOffline, base.Add(2*time.Hour)),
		ev(2, models.KindOnline, base.Add(time.Hour)),
		ev(2, models.KindOffline, base.Add(7*time.Hour)),
	}

	pattern := AnalyzeUsagePatterns(events, Reconstructor{})
	assert.True(t, pattern.HasRunStats)
	assert.InDelta(t, 4.0, pattern.AvgContinuousRunHours, 1e-9)
	assert.InDelta(t, 6.0, pattern.MaxContinuousRunHours, 1e-9)
	assert.Equal(t, 1, pattern.HourlyUsage[6])
	assert.Equal(t, 1, pattern.HourlyUsage[7])
}

func TestAnalyzeUsagePatterns_NoSessions(t *testing.T) {
	// Online events without matching offlines count toward the hourly
	// histogram but produce no run statistics.
	pattern := AnalyzeUsagePatterns([]models.DeviceEvent{onlineAt(1, 12)}, Reconstructor{})
	assert.Equal(t, 12, pattern.PeakHour)
	assert.False(t, pattern.HasRunStats)
	assert.Zero(t, pattern.AvgContinuousRunHours)
	assert.Zero(t, pattern.MaxContinuousRunHours)
}
