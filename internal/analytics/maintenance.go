package analytics

import "github.com/homeflux/analytics/internal/models"

// Risk thresholds: runtime variability dominates usage intensity.
const (
	highVariabilityHours   = 5.0
	mediumVariabilityHours = 2.0
	highIntensityHours     = 10.0
)

// ScoreMaintenance derives a maintenance indicator per stats record.
// Usage intensity is the mean session length (0 when a device never ran).
func ScoreMaintenance(stats []models.DeviceStats) []models.MaintenanceIndicator {
	indicators := make([]models.MaintenanceIndicator, 0, len(stats))
	for _, st := range stats {
		intensity := 0.0
		if st.SessionCount > 0 {
			intensity = st.TotalRunHours / float64(st.SessionCount)
		}
		indicators = append(indicators, models.MaintenanceIndicator{
			DeviceID:           st.DeviceID,
			Name:               st.Name,
			UsageIntensity:     intensity,
			RuntimeVariability: st.StdDevRunHours,
			RiskLevel:          riskLevel(intensity, st.StdDevRunHours),
		})
	}
	return indicators
}

// riskLevel evaluates the rules in fixed priority order; the first match
// wins.
func riskLevel(intensity, variability float64) models.RiskLevel {
	switch {
	case variability > highVariabilityHours:
		return models.RiskHigh
	case variability > mediumVariabilityHours:
		return models.RiskMedium
	case intensity > highIntensityHours:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
