package analytics

import (
	"math"

	"github.com/homeflux/analytics/internal/models"
)

// AggregateStats reduces each device's reconstructed sessions into a stats
// record. Every device of the roster yields exactly one record, in roster
// order; a device with no sessions keeps zeroed statistics apart from its
// name and power rating.
func AggregateStats(devices []models.Device, events []models.DeviceEvent, rec Reconstructor) []models.DeviceStats {
	grouped := groupEventsByDevice(events)

	stats := make([]models.DeviceStats, 0, len(devices))
	for _, dev := range devices {
		sessions := rec.Sessions(grouped[dev.ID])
		stats = append(stats, reduceSessions(dev, sessions))
	}
	return stats
}

func reduceSessions(dev models.Device, sessions []models.Session) models.DeviceStats {
	st := models.DeviceStats{
		DeviceID:   dev.ID,
		Name:       dev.Name,
		PowerWatts: dev.PowerWatts,
	}
	if len(sessions) == 0 {
		return st
	}

	durations := make([]float64, len(sessions))
	for i, s := range sessions {
		durations[i] = s.DurationHours
		st.TotalRunHours += s.DurationHours
	}

	st.SessionCount = len(sessions)
	st.AvgRunHours = st.TotalRunHours / float64(st.SessionCount)
	st.MaxRunHours = durations[0]
	st.MinRunHours = durations[0]
	for _, d := range durations[1:] {
		if d > st.MaxRunHours {
			st.MaxRunHours = d
		}
		if d < st.MinRunHours {
			st.MinRunHours = d
		}
	}
	st.StdDevRunHours = populationStdDev(durations, st.AvgRunHours)
	st.TotalConsumptionKWh = st.TotalRunHours * dev.PowerWatts / 1000.0
	return st
}

// populationStdDev divides by N, not N-1. Returns 0 for an empty input.
func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
