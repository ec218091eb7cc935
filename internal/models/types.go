package models

import "time"

// EventKind distinguishes the two record types in the device event log.
type EventKind string

const (
	KindOnline  EventKind = "online"
	KindOffline EventKind = "offline"
)

// Action is the operation recorded when a user switches a device.
type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

// RiskLevel classifies a device's maintenance risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Device is one entry of the device directory.
type Device struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	PowerWatts float64 `json:"powerWatts"`
	OwnerID    int64   `json:"ownerId"`
	Online     bool    `json:"online"`
	Open       bool    `json:"open"`
}

// DeviceEvent is one append-only entry of a device's online/offline log.
type DeviceEvent struct {
	DeviceID int64     `json:"deviceId"`
	Time     time.Time `json:"time"`
	Kind     EventKind `json:"kind"`
}

// OperateEvent records a user switching a device on or off.
type OperateEvent struct {
	DeviceID int64     `json:"deviceId"`
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
}

// EventDetail is one record of an ingested state-change batch: the desired
// on/off state for a device.
type EventDetail struct {
	DeviceID int64 `json:"deviceId"`
	Open     bool  `json:"open"`
}

// Session is one continuous device-on interval reconstructed from paired
// online/offline events. It is derived data and never persisted.
type Session struct {
	DeviceID      int64     `json:"deviceId"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"durationHours"`
}

// DeviceStats holds per-device runtime and consumption statistics. Every
// device of the input roster yields exactly one record; a device with no
// reconstructed sessions keeps zeroed statistics.
type DeviceStats struct {
	DeviceID            int64   `json:"deviceId"`
	Name                string  `json:"name"`
	PowerWatts          float64 `json:"powerWatts"`
	TotalRunHours       float64 `json:"totalRunHours"`
	SessionCount        int     `json:"sessionCount"`
	AvgRunHours         float64 `json:"avgRunHours"`
	MaxRunHours         float64 `json:"maxRunHours"`
	MinRunHours         float64 `json:"minRunHours"`
	StdDevRunHours      float64 `json:"stdDevRunHours"`
	TotalConsumptionKWh float64 `json:"totalConsumptionKWh"`
}

// HighConsumptionFlag marks a device whose consumption exceeds the
// population mean plus one standard deviation.
type HighConsumptionFlag struct {
	DeviceID            int64   `json:"deviceId"`
	Name                string  `json:"name"`
	TotalConsumptionKWh float64 `json:"totalConsumptionKWh"`
	PowerWatts          float64 `json:"powerWatts"`
	AvgRunHours         float64 `json:"avgRunHours"`
}

// MaintenanceIndicator carries the derived maintenance risk for a device.
type MaintenanceIndicator struct {
	DeviceID           int64     `json:"deviceId"`
	Name               string    `json:"name"`
	UsageIntensity     float64   `json:"usageIntensity"`
	RuntimeVariability float64   `json:"runtimeVariability"`
	RiskLevel          RiskLevel `json:"riskLevel"`
}

// UsagePattern summarizes when and how long devices run across the whole
// roster. AvgContinuousRunHours and MaxContinuousRunHours are only
// meaningful when HasRunStats is true (at least one session exists
// system-wide).
type UsagePattern struct {
	HourlyUsage           [24]int `json:"hourlyUsage"`
	PeakHour              int     `json:"peakHour"`
	HasRunStats           bool    `json:"hasRunStats"`
	AvgContinuousRunHours float64 `json:"avgContinuousRunHours"`
	MaxContinuousRunHours float64 `json:"maxContinuousRunHours"`
}

// DailyConsumption is the consumption attributed to one calendar day,
// keyed by the day (YYYY-MM-DD) the contributing sessions started.
type DailyConsumption struct {
	Date           string  `json:"date"`
	ConsumptionKWh float64 `json:"consumptionKWh"`
}

// ForecastPoint is one predicted day of consumption.
type ForecastPoint struct {
	Date                    string  `json:"date"`
	PredictedConsumptionKWh float64 `json:"predictedConsumptionKWh"`
}

// ConsumptionForecast is a 30-day consumption outlook. Confidence is nil
// when the flat-average fallback produced the points.
type ConsumptionForecast struct {
	Points     []ForecastPoint `json:"points"`
	TotalKWh   float64         `json:"totalKWh"`
	Confidence *float64        `json:"confidence,omitempty"`
}

// SceneType distinguishes the two recommendation shapes.
type SceneType string

const (
	SceneSequential   SceneType = "sequential"
	SceneSimultaneous SceneType = "simultaneous"
)

// SceneRecommendation is a candidate automation rule inferred from
// recurring co-occurring device operations. Sequential recommendations use
// the trigger/target fields; simultaneous ones use the device list fields.
type SceneRecommendation struct {
	Type        SceneType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	TriggerDeviceID   int64  `json:"triggerDeviceId,omitempty"`
	TriggerDeviceName string `json:"triggerDeviceName,omitempty"`
	TriggerAction     Action `json:"triggerAction,omitempty"`
	TargetDeviceID    int64  `json:"targetDeviceId,omitempty"`
	TargetDeviceName  string `json:"targetDeviceName,omitempty"`
	TargetAction      Action `json:"targetAction,omitempty"`

	DeviceIDs   []int64  `json:"deviceIds,omitempty"`
	DeviceNames []string `json:"deviceNames,omitempty"`
	Action      Action   `json:"action,omitempty"`
}
