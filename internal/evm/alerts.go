package evm

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// AlertKind is the urgency class of an alert.
type AlertKind string

const (
	AlertCritical AlertKind = "CRITICAL"
	AlertWarning  AlertKind = "WARNING"
	AlertInfo     AlertKind = "INFO"
)

// Thresholds applied to the latest measurement.
const (
	SPICritical     = 0.90
	SPIWarning      = 0.95
	CPICritical     = 0.85
	CPIWarning      = 0.95
	VACCriticalFrac = 0.10
	GoodPerformance = 1.05
)

// Alert is a structured finding about the latest measurement.
type Alert struct {
	ID                string    `json:"id"`
	Kind              AlertKind `json:"kind"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Metric            string    `json:"metric"`
	Value             float64   `json:"value"`
	Severity          int       `json:"severity"` // 1-10
	Date              time.Time `json:"date"`
	RecommendedAction string    `json:"recommended_action"`
}

// GenerateAlerts evaluates the latest measurement against the fixed
// thresholds. At most one schedule, one cost and one forecast alert is
// raised, plus an INFO alert when both indices are well ahead of plan.
func (e *Engine) GenerateAlerts() []Alert {
	latest, ok := e.Latest()
	if !ok {
		return nil
	}
	var alerts []Alert

	switch {
	case latest.SPI < SPICritical:
		alerts = append(alerts, Alert{
			ID:                "EVM_SPI_CRITICAL",
			Kind:              AlertCritical,
			Title:             fmt.Sprintf("Project %.1f%% behind schedule", (1-latest.SPI)*100),
			Description:       fmt.Sprintf("SPI = %.2f. The schedule is at critical risk.", latest.SPI),
			Metric:            "SPI",
			Value:             latest.SPI,
			Severity:          10,
			RecommendedAction: "Compress the schedule. Review critical activities and consider fast-tracking.",
		})
	case latest.SPI < SPIWarning:
		alerts = append(alerts, Alert{
			ID:                "EVM_SPI_WARNING",
			Kind:              AlertWarning,
			Title:             fmt.Sprintf("Slight schedule delay (%.1f%%)", (1-latest.SPI)*100),
			Description:       fmt.Sprintf("SPI = %.2f", latest.SPI),
			Metric:            "SPI",
			Value:             latest.SPI,
			Severity:          6,
			RecommendedAction: "Monitor closely and keep the variance from growing.",
		})
	}

	switch {
	case latest.CPI < CPICritical:
		alerts = append(alerts, Alert{
			ID:                "EVM_CPI_CRITICAL",
			Kind:              AlertCritical,
			Title:             fmt.Sprintf("Project %.1f%% over budget", (1-latest.CPI)*100),
			Description:       fmt.Sprintf("CPI = %.2f. The budget is at critical risk.", latest.CPI),
			Metric:            "CPI",
			Value:             latest.CPI,
			Severity:          10,
			RecommendedAction: "Review costs urgently. Optimise resources and renegotiate with suppliers.",
		})
	case latest.CPI < CPIWarning:
		alerts = append(alerts, Alert{
			ID:                "EVM_CPI_WARNING",
			Kind:              AlertWarning,
			Title:             fmt.Sprintf("Slight budget overrun (%.1f%%)", (1-latest.CPI)*100),
			Description:       fmt.Sprintf("CPI = %.2f", latest.CPI),
			Metric:            "CPI",
			Value:             latest.CPI,
			Severity:          7,
			RecommendedAction: "Control costs and avoid waste.",
		})
	}

	switch {
	case latest.VAC < -e.bac*VACCriticalFrac:
		over := 0.0
		if e.bac != 0 {
			over = (latest.EAC/e.bac - 1) * 100
		}
		alerts = append(alerts, Alert{
			ID:                "EVM_VAC_CRITICAL",
			Kind:              AlertCritical,
			Title:             "Forecast overrun of " + money(math.Abs(latest.VAC)),
			Description:       fmt.Sprintf("Forecast EAC: %s (%.1f%% above budget)", money(latest.EAC), over),
			Metric:            "VAC",
			Value:             latest.VAC,
			Severity:          9,
			RecommendedAction: "Request approval to exceed the budget urgently. Re-plan scope.",
		})
	case latest.VAC < 0:
		alerts = append(alerts, Alert{
			ID:                "EVM_VAC_WARNING",
			Kind:              AlertWarning,
			Title:             "Forecast slight overrun of " + money(math.Abs(latest.VAC)),
			Description:       "Forecast EAC: " + money(latest.EAC),
			Metric:            "VAC",
			Value:             latest.VAC,
			Severity:          5,
			RecommendedAction: "Watch the trend. Consider a contingency reserve.",
		})
	}

	if latest.CPI >= GoodPerformance && latest.SPI >= GoodPerformance {
		alerts = append(alerts, Alert{
			ID:                "EVM_PERFORMANCE_GOOD",
			Kind:              AlertInfo,
			Title:             "Project performing above plan",
			Description:       fmt.Sprintf("CPI = %.2f, SPI = %.2f", latest.CPI, latest.SPI),
			Metric:            "CPI_SPI",
			Value:             (latest.CPI + latest.SPI) / 2,
			Severity:          1,
			RecommendedAction: "Keep the pace and document what is working.",
		})
	}

	for i := range alerts {
		alerts[i].Date = latest.Date
	}
	return alerts
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
