package analytics

import (
	"sort"

	"github.com/homeflux/analytics/internal/models"
)

// FlagHighConsumption returns the devices whose total consumption exceeds
// the population mean plus one standard deviation. Devices that never ran
// (consumption exactly 0) are excluded from both the statistic and the
// candidate set. The result is sorted descending by consumption; ties keep
// encounter order.
func FlagHighConsumption(stats []models.DeviceStats) []models.HighConsumptionFlag {
	var positive []float64
	for _, st := range stats {
		if st.TotalConsumptionKWh > 0 {
			positive = append(positive, st.TotalConsumptionKWh)
		}
	}
	if len(positive) == 0 {
		return nil
	}

	var sum float64
	for _, c := range positive {
		sum += c
	}
	mean := sum / float64(len(positive))
	threshold := mean + populationStdDev(positive, mean)

	var flags []models.HighConsumptionFlag
	for _, st := range stats {
		if st.TotalConsumptionKWh > 0 && st.TotalConsumptionKWh > threshold {
			flags = append(flags, models.HighConsumptionFlag{
				DeviceID:            st.DeviceID,
				Name:                st.Name,
				TotalConsumptionKWh: st.TotalConsumptionKWh,
				PowerWatts:          st.PowerWatts,
				AvgRunHours:         st.AvgRunHours,
			})
		}
	}

	sort.SliceStable(flags, func(i, k int) bool {
		return flags[i].TotalConsumptionKWh > flags[k].TotalConsumptionKWh
	})
	return flags
}
