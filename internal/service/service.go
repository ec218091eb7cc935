// Package service wires the analytics core to the external collaborators:
// the device directory and the event repositories. It owns the query
// windows (last month for history, last 180 days for scene mining) and the
// textual advisories; all numeric work happens in the pure core packages.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homeflux/analytics/internal/analytics"
	"github.com/homeflux/analytics/internal/database"
	"github.com/homeflux/analytics/internal/forecast"
	"github.com/homeflux/analytics/internal/metrics"
	"github.com/homeflux/analytics/internal/models"
	"github.com/homeflux/analytics/internal/scenes"
)

const (
	// historyWindow is how far back the per-device history view reaches.
	historyWindow = 30 * 24 * time.Hour

	// operateWindow is how far back scene mining reaches.
	operateWindow = 180 * 24 * time.Hour

	// longRunAdvisoryHours triggers the continuous-runtime advisory.
	longRunAdvisoryHours = 8.0

	// advisoryTopDevices caps how many device names the high-consumption
	// advisory spells out.
	advisoryTopDevices = 3
)

// UsageReport is the full analytics result for one owner's devices.
type UsageReport struct {
	DeviceStatistics       []models.DeviceStats          `json:"deviceStatistics"`
	HighConsumptionDevices []models.HighConsumptionFlag  `json:"highConsumptionDevices"`
	UsagePatterns          models.UsagePattern           `json:"usagePatterns"`
	MaintenanceIndicators  []models.MaintenanceIndicator `json:"maintenanceIndicators"`
	Advisories             []string                      `json:"advisories"`
}

// DeviceHistory is the per-device timeline view over the last month.
type DeviceHistory struct {
	Device      models.Device             `json:"device"`
	TotalKWh    float64                   `json:"totalKWh"`
	Daily       []models.DailyConsumption `json:"daily"`
	PeriodStart string                    `json:"periodStart"`
	PeriodEnd   string                    `json:"periodEnd"`
}

// DeviceForecast pairs a device's daily history with its 30-day outlook.
type DeviceForecast struct {
	Device   models.Device              `json:"device"`
	History  []models.DailyConsumption  `json:"history"`
	Forecast models.ConsumptionForecast `json:"forecast"`
}

// Analytics exposes the analytics operations over the repositories.
type Analytics struct {
	devices    database.DeviceRepository
	events     database.EventRepository
	operates   database.OperateRepository
	forecaster *forecast.Forecaster
	rec        analytics.Reconstructor
	logger     *logrus.Logger
	now        func() time.Time
}

// New builds the service. pairingMode selects the session pairing
// algorithm; an empty value falls back to greedy pairing.
func New(
	devices database.DeviceRepository,
	events database.EventRepository,
	operates database.OperateRepository,
	pairingMode analytics.PairingMode,
	logger *logrus.Logger,
) *Analytics {
	return &Analytics{
		devices:    devices,
		events:     events,
		operates:   operates,
		forecaster: forecast.New(nil),
		rec:        analytics.Reconstructor{Mode: pairingMode},
		logger:     logger,
		now:        time.Now,
	}
}

// UsageReport computes per-device statistics, high-consumption flags, usage
// patterns, maintenance indicators and advisories for an owner. An owner
// with no devices yields an empty report, not an error.
func (a *Analytics) UsageReport(ctx context.Context, ownerID int64) (UsageReport, error) {
	devices, err := a.devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return UsageReport{}, fmt.Errorf("listing devices for owner %d: %w", ownerID, err)
	}
	report := UsageReport{
		DeviceStatistics:       []models.DeviceStats{},
		HighConsumptionDevices: []models.HighConsumptionFlag{},
		MaintenanceIndicators:  []models.MaintenanceIndicator{},
		Advisories:             []string{},
		UsagePatterns:          models.UsagePattern{PeakHour: -1},
	}
	if len(devices) == 0 {
		return report, nil
	}

	events, err := a.events.ListDeviceEvents(ctx, deviceIDs(devices), time.Time{}, a.now())
	if err != nil {
		return UsageReport{}, fmt.Errorf("listing device events: %w", err)
	}

	stats := analytics.AggregateStats(devices, events, a.rec)
	flags := analytics.FlagHighConsumption(stats)
	pattern := analytics.AnalyzeUsagePatterns(events, a.rec)

	report.DeviceStatistics = stats
	if flags != nil {
		report.HighConsumptionDevices = flags
	}
	report.UsagePatterns = pattern
	report.MaintenanceIndicators = analytics.ScoreMaintenance(stats)
	report.Advisories = advisories(flags, pattern)

	a.logger.WithFields(logrus.Fields{
		"owner":   ownerID,
		"devices": len(devices),
		"flagged": len(flags),
	}).Debug("usage report computed")
	return report, nil
}

// DeviceHistory reconstructs the last month of a device's runtime as a
// daily consumption series. Sessions without a matching offline event are
// treated as still running and closed at the query time.
func (a *Analytics) DeviceHistory(ctx context.Context, deviceID int64) (DeviceHistory, error) {
	device, err := a.devices.Get(ctx, deviceID)
	if err != nil {
		return DeviceHistory{}, err
	}

	now := a.now()
	from := now.Add(-historyWindow)
	events, err := a.events.ListDeviceEvents(ctx, []int64{deviceID}, from, now)
	if err != nil {
		return DeviceHistory{}, fmt.Errorf("listing device events: %w", err)
	}

	sessions := a.rec.Timeline(events, now)
	daily := analytics.DailyConsumptionSeries(sessions, device.PowerWatts)

	return DeviceHistory{
		Device:      device,
		TotalKWh:    analytics.TotalConsumption(daily),
		Daily:       daily,
		PeriodStart: from.Format("2006-01-02"),
		PeriodEnd:   now.Format("2006-01-02"),
	}, nil
}

// DeviceForecast predicts the next 30 days of a device's consumption from
// its last-month history.
func (a *Analytics) DeviceForecast(ctx context.Context, deviceID int64) (DeviceForecast, error) {
	history, err := a.DeviceHistory(ctx, deviceID)
	if err != nil {
		return DeviceForecast{}, err
	}
	return DeviceForecast{
		Device:   history.Device,
		History:  history.Daily,
		Forecast: a.forecaster.Forecast(history.Daily, a.now()),
	}, nil
}

// RecommendScenes mines the owner's operate events of the last 180 days for
// automation scene candidates.
func (a *Analytics) RecommendScenes(ctx context.Context, ownerID int64) ([]models.SceneRecommendation, error) {
	devices, err := a.devices.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing devices for owner %d: %w", ownerID, err)
	}
	if len(devices) == 0 {
		return []models.SceneRecommendation{}, nil
	}

	since := a.now().Add(-operateWindow)
	records, err := a.operates.ListOperateEvents(ctx, deviceIDs(devices), since)
	if err != nil {
		return nil, fmt.Errorf("listing operate events: %w", err)
	}

	recs := scenes.Mine(records, devices)
	if recs == nil {
		recs = []models.SceneRecommendation{}
	}
	metrics.ScenesRecommended.Add(float64(len(recs)))
	return recs, nil
}

// ApplyEventBatch converts a state-change batch into device flag updates
// and appended online/offline events, written atomically.
func (a *Analytics) ApplyEventBatch(ctx context.Context, details []models.EventDetail) error {
	if len(details) == 0 {
		return nil
	}
	if err := a.events.ApplyEventBatch(ctx, details, a.now()); err != nil {
		return fmt.Errorf("applying event batch: %w", err)
	}
	metrics.EventsIngested.Add(float64(len(details)))
	return nil
}

// PublishUsageMetrics recomputes population gauges across every owner so
// dashboards stay fresh. Failures for one owner are logged and skipped.
func (a *Analytics) PublishUsageMetrics(ctx context.Context) error {
	owners, err := a.devices.ListOwners(ctx)
	if err != nil {
		return fmt.Errorf("listing owners: %w", err)
	}

	var deviceCount, flaggedCount int
	var totalKWh float64
	for _, owner := range owners {
		report, err := a.UsageReport(ctx, owner)
		if err != nil {
			a.logger.WithError(err).WithField("owner", owner).Warn("skipping owner in metrics refresh")
			continue
		}
		deviceCount += len(report.DeviceStatistics)
		flaggedCount += len(report.HighConsumptionDevices)
		for _, st := range report.DeviceStatistics {
			totalKWh += st.TotalConsumptionKWh
		}
	}

	metrics.DevicesObserved.Set(float64(deviceCount))
	metrics.HighConsumptionDevices.Set(float64(flaggedCount))
	metrics.TotalConsumptionKWh.Set(totalKWh)
	return nil
}

func deviceIDs(devices []models.Device) []int64 {
	ids := make([]int64, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	sort.Slice(ids, func(i, k int) bool { return ids[i] < ids[k] })
	return ids
}

// advisories renders the human-readable notes shown alongside the report.
func advisories(flags []models.HighConsumptionFlag, pattern models.UsagePattern) []string {
	notes := []string{}

	if len(flags) > 0 {
		names := make([]string, 0, advisoryTopDevices)
		for _, f := range flags {
			names = append(names, f.Name)
			if len(names) == advisoryTopDevices {
				break
			}
		}
		notes = append(notes, fmt.Sprintf("High-consumption devices detected: %s", strings.Join(names, ", ")))
	}

	if pattern.PeakHour >= 0 {
		notes = append(notes, fmt.Sprintf(
			"Usage peaks around %02d:00; shifting some of it off-peak can lower your bill", pattern.PeakHour))
	}

	if pattern.HasRunStats && pattern.AvgContinuousRunHours > longRunAdvisoryHours {
		notes = append(notes, "Some devices run continuously for long stretches; consider periodic checks")
	}

	return notes
}
