// Package forecast predicts near-term daily consumption from a historical
// daily series.
//
// The prediction strategy is pluggable; the default (and only) strategy
// fits an ordinary-least-squares line over a short trailing window of the
// min-max-normalized series. Trend predictions stay in normalized [0,1]
// space; consumers treat them as a relative outlook rather than absolute
// kWh values.
package forecast

import (
	"errors"
	"math"
	"time"

	"github.com/homeflux/analytics/internal/models"
)

// Horizon is the number of future days every forecast covers.
const Horizon = 30

// minHistory is the number of daily points below which only the flat
// average forecast is produced.
const minHistory = 7

// maxExpectedStdDev anchors the confidence mapping: a raw-series standard
// deviation at or above this yields confidence 0.
const maxExpectedStdDev = 0.5

const dayFormat = "2006-01-02"

// Strategy produces horizon predictions from a historical series.
type Strategy interface {
	Predict(history []float64, horizon int) ([]float64, error)
}

// Forecaster turns a daily consumption series into a 30-day outlook.
// The zero value is not usable; construct with New.
type Forecaster struct {
	strategy Strategy
}

// New returns a Forecaster backed by the given strategy, or by the linear
// trend strategy when nil.
func New(strategy Strategy) *Forecaster {
	if strategy == nil {
		strategy = LinearTrend{Window: minHistory}
	}
	return &Forecaster{strategy: strategy}
}

// Forecast predicts the next 30 days of consumption starting the day after
// now. With fewer than 7 historical points, or when the strategy fails,
// every predicted day carries the flat average and no confidence value is
// reported. An empty series yields an all-zero forecast.
func (f *Forecaster) Forecast(series []models.DailyConsumption, now time.Time) models.ConsumptionForecast {
	history := make([]float64, len(series))
	for i, d := range series {
		history[i] = d.ConsumptionKWh
	}

	var (
		predictions []float64
		confidence  *float64
	)
	if len(history) < minHistory {
		predictions = flatAverage(history, Horizon)
	} else {
		preds, err := f.strategy.Predict(history, Horizon)
		if err != nil {
			predictions = flatAverage(tail(history, minHistory), Horizon)
		} else {
			predictions = preds
			c := confidenceOf(history)
			confidence = &c
		}
	}

	out := models.ConsumptionForecast{
		Points:     make([]models.ForecastPoint, Horizon),
		Confidence: confidence,
	}
	for i := 0; i < Horizon; i++ {
		out.Points[i] = models.ForecastPoint{
			Date:                    now.AddDate(0, 0, i+1).Format(dayFormat),
			PredictedConsumptionKWh: predictions[i],
		}
		out.TotalKWh += predictions[i]
	}
	return out
}

// LinearTrend fits an OLS line over the trailing Window points of the
// normalized series and extrapolates it, clamping each prediction to [0,1].
type LinearTrend struct {
	Window int
}

// Predict implements Strategy. It fails on degenerate inputs (fewer than
// two points in the fitting window), which callers turn into the flat
// fallback.
func (lt LinearTrend) Predict(history []float64, horizon int) ([]float64, error) {
	window := lt.Window
	if window <= 0 {
		window = minHistory
	}

	normalized, _, _ := Normalize(history)
	recent := tail(normalized, window)
	if len(recent) < 2 {
		return nil, errors.New("not enough points to fit a trend")
	}

	slope, intercept, err := fitLine(recent)
	if err != nil {
		return nil, err
	}

	predictions := make([]float64, horizon)
	for i := 0; i < horizon; i++ {
		v := slope*float64(len(recent)+i) + intercept
		predictions[i] = math.Max(0, math.Min(1, v))
	}
	return predictions, nil
}

// fitLine performs ordinary least squares over index positions 0..n-1.
func fitLine(values []float64) (slope, intercept float64, err error) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	det := n*sumXX - sumX*sumX
	if det == 0 {
		return 0, 0, errors.New("degenerate regression input")
	}
	slope = (n*sumXY - sumX*sumY) / det
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}

// confidenceOf maps the raw series' population standard deviation into
// [0,1]: the steadier the history, the higher the confidence.
func confidenceOf(history []float64) float64 {
	if len(history) < 2 {
		return 0.5
	}
	var sum float64
	for _, v := range history {
		sum += v
	}
	mean := sum / float64(len(history))

	var sumSq float64
	for _, v := range history {
		diff := v - mean
		sumSq += diff * diff
	}
	stdDev := math.Sqrt(sumSq / float64(len(history)))

	confidence := math.Max(0, 1-stdDev/maxExpectedStdDev)
	return math.Min(1, confidence)
}

func flatAverage(history []float64, horizon int) []float64 {
	var avg float64
	if len(history) > 0 {
		var sum float64
		for _, v := range history {
			sum += v
		}
		avg = sum / float64(len(history))
	}
	out := make([]float64, horizon)
	for i := range out {
		out[i] = avg
	}
	return out
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
