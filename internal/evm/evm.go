// Package evm implements Earned Value Management: performance indices and
// variances per measurement, trend forecasting and threshold alerts.
package evm

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"
)

// ErrOutOfOrder is returned when a measurement predates the latest one.
var ErrOutOfOrder = errors.New("measurement date is before the latest measurement")

// Metrics is one measurement and everything derived from it.
type Metrics struct {
	Date           time.Time `json:"date" yaml:"date"`
	PlannedPercent float64   `json:"planned_percent" yaml:"planned_percent"`
	ActualPercent  float64   `json:"actual_percent" yaml:"actual_percent"`

	PV  float64 `json:"pv" yaml:"pv"`
	EV  float64 `json:"ev" yaml:"ev"`
	AC  float64 `json:"ac" yaml:"ac"`
	CPI float64 `json:"cpi" yaml:"cpi"`
	SPI float64 `json:"spi" yaml:"spi"`
	CV  float64 `json:"cv" yaml:"cv"`
	SV  float64 `json:"sv" yaml:"sv"`
	EAC float64 `json:"eac" yaml:"eac"`
	ETC float64 `json:"etc" yaml:"etc"`
	VAC float64 `json:"vac" yaml:"vac"`
	BAC float64 `json:"bac" yaml:"bac"`
}

// Forecast is a projection of final cost from the CPI trend.
type Forecast struct {
	EAC      float64 `json:"forecasted_eac"`
	ETC      float64 `json:"forecasted_etc"`
	TrendCPI float64 `json:"trend_cpi"`
}

// SCurvePoint is one point of the cumulative PV/EV/AC chart.
type SCurvePoint struct {
	Date string  `json:"date"`
	PV   float64 `json:"pv"`
	EV   float64 `json:"ev"`
	AC   float64 `json:"ac"`
}

// Engine accumulates measurements against a fixed budget at completion.
// It is not safe for concurrent use.
type Engine struct {
	bac     float64
	history []Metrics
}

// New returns an engine with an empty history.
func New(bac float64) *Engine {
	return &Engine{bac: bac}
}

// NewWithHistory returns an engine continuing a caller-owned series. The
// series is copied and must be in date order.
func NewWithHistory(bac float64, history []Metrics) (*Engine, error) {
	for i := 1; i < len(history); i++ {
		if history[i].Date.Before(history[i-1].Date) {
			return nil, fmt.Errorf("history entry %d: %w", i, ErrOutOfOrder)
		}
	}
	return &Engine{bac: bac, history: slices.Clone(history)}, nil
}

// BAC returns the budget at completion.
func (e *Engine) BAC() float64 { return e.bac }

// Compute derives the metrics of a measurement without recording it.
func (e *Engine) Compute(date time.Time, plannedPercent, actualPercent, actualCost float64) Metrics {
	m := Metrics{
		Date:           date,
		PlannedPercent: plannedPercent,
		ActualPercent:  actualPercent,
		PV:             e.bac * plannedPercent / 100,
		EV:             e.bac * actualPercent / 100,
		AC:             actualCost,
		BAC:            e.bac,
	}
	if m.AC != 0 {
		m.CPI = m.EV / m.AC
	}
	if m.PV != 0 {
		m.SPI = m.EV / m.PV
	}
	m.CV = m.EV - m.AC
	m.SV = m.EV - m.PV
	m.EAC = e.bac
	if m.CPI != 0 {
		m.EAC = e.bac / m.CPI
	}
	m.ETC = m.EAC - m.AC
	m.VAC = e.bac - m.EAC
	return m
}

// AddMeasurement computes a measurement and appends it to the history.
func (e *Engine) AddMeasurement(date time.Time, plannedPercent, actualPercent, actualCost float64) (Metrics, error) {
	if latest, ok := e.Latest(); ok && date.Before(latest.Date) {
		return Metrics{}, fmt.Errorf("%s before %s: %w",
			date.Format(time.DateOnly), latest.Date.Format(time.DateOnly), ErrOutOfOrder)
	}
	m := e.Compute(date, plannedPercent, actualPercent, actualCost)
	e.history = append(e.history, m)
	return m, nil
}

// Latest returns the most recent measurement.
func (e *Engine) Latest() (Metrics, bool) {
	if len(e.history) == 0 {
		return Metrics{}, false
	}
	return e.history[len(e.history)-1], true
}

// Len returns the number of measurements.
func (e *Engine) Len() int { return len(e.history) }

// History yields the measurements oldest first. The sequence can be ranged
// over any number of times.
func (e *Engine) History() iter.Seq[Metrics] {
	return func(yield func(Metrics) bool) {
		for _, m := range e.history {
			if !yield(m) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the history.
func (e *Engine) Snapshot() []Metrics {
	return slices.Clone(e.history)
}

// ForecastUsingTrend projects final cost from the mean CPI of the whole
// history. With fewer than two measurements the latest point is returned
// as is.
func (e *Engine) ForecastUsingTrend() Forecast {
	latest, ok := e.Latest()
	if !ok {
		return Forecast{EAC: e.bac, ETC: e.bac, TrendCPI: 1.0}
	}
	if len(e.history) < 2 {
		return Forecast{EAC: latest.EAC, ETC: latest.ETC, TrendCPI: latest.CPI}
	}

	var sum float64
	for m := range e.History() {
		sum += m.CPI
	}
	trend := sum / float64(len(e.history))

	remaining := e.bac - latest.EV
	etc := remaining
	if trend != 0 {
		etc = remaining / trend
	}
	return Forecast{EAC: latest.AC + etc, ETC: etc, TrendCPI: trend}
}

// SCurve returns PV, EV and AC per measurement date.
func (e *Engine) SCurve() []SCurvePoint {
	points := make([]SCurvePoint, 0, len(e.history))
	for m := range e.History() {
		points = append(points, SCurvePoint{
			Date: m.Date.Format(time.DateOnly),
			PV:   m.PV,
			EV:   m.EV,
			AC:   m.AC,
		})
	}
	return points
}
