package analytics

import (
	"sort"

	"github.com/homeflux/analytics/internal/models"
)

const dayFormat = "2006-01-02"

// DailyConsumptionSeries buckets sessions by the calendar day they started
// and converts runtime to consumption at the given power rating. The result
// has one entry per distinct day with at least one session start, ordered
// ascending by date.
func DailyConsumptionSeries(sessions []models.Session, powerWatts float64) []models.DailyConsumption {
	byDay := make(map[string]float64)
	for _, s := range sessions {
		byDay[s.Start.Format(dayFormat)] += s.DurationHours * powerWatts / 1000.0
	}

	series := make([]models.DailyConsumption, 0, len(byDay))
	for day, kwh := range byDay {
		series = append(series, models.DailyConsumption{Date: day, ConsumptionKWh: kwh})
	}
	sort.Slice(series, func(i, k int) bool {
		return series[i].Date < series[k].Date
	})
	return series
}

// TotalConsumption sums a daily series.
func TotalConsumption(series []models.DailyConsumption) float64 {
	var total float64
	for _, d := range series {
		total += d.ConsumptionKWh
	}
	return total
}
