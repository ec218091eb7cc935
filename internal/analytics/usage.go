package analytics

import "github.com/homeflux/analytics/internal/models"

// AnalyzeUsagePatterns derives the hourly usage distribution from all
// ONLINE events and the continuous-runtime statistics from the sessions of
// every device combined. PeakHour is -1 when no online events exist; on a
// tie the smallest hour wins.
func AnalyzeUsagePatterns(events []models.DeviceEvent, rec Reconstructor) models.UsagePattern {
	var pattern models.UsagePattern
	pattern.PeakHour = -1

	total := 0
	for _, ev := range events {
		if ev.Kind == models.KindOnline {
			pattern.HourlyUsage[ev.Time.Hour()]++
			total++
		}
	}
	if total > 0 {
		best := -1
		for hour := 0; hour < 24; hour++ {
			if pattern.HourlyUsage[hour] > best {
				best = pattern.HourlyUsage[hour]
				pattern.PeakHour = hour
			}
		}
	}

	var durations []float64
	for _, deviceEvents := range groupedInStableOrder(events) {
		for _, s := range rec.Sessions(deviceEvents) {
			durations = append(durations, s.DurationHours)
		}
	}
	if len(durations) == 0 {
		return pattern
	}

	pattern.HasRunStats = true
	var sum float64
	pattern.MaxContinuousRunHours = durations[0]
	for _, d := range durations {
		sum += d
		if d > pattern.MaxContinuousRunHours {
			pattern.MaxContinuousRunHours = d
		}
	}
	pattern.AvgContinuousRunHours = sum / float64(len(durations))
	return pattern
}

// groupedInStableOrder yields per-device event slices ordered by first
// appearance of the device in the input, so the combined duration list is a
// pure function of input order.
func groupedInStableOrder(events []models.DeviceEvent) [][]models.DeviceEvent {
	grouped := groupEventsByDevice(events)
	seen := make(map[int64]bool, len(grouped))
	ordered := make([][]models.DeviceEvent, 0, len(grouped))
	for _, ev := range events {
		if !seen[ev.DeviceID] {
			seen[ev.DeviceID] = true
			ordered = append(ordered, grouped[ev.DeviceID])
		}
	}
	return ordered
}
