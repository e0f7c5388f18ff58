// Package render turns backend analysis results into UI-ready view models.
// Every function here is pure: inputs are never mutated.
package render

import (
	"math"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

const GaugeUnknown = "unknown"

type Gauge struct {
	Level   string  `json:"level"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Icon    string  `json:"icon"`
	Score   float64 `json:"score"`
	Percent float64 `json:"percent"`
	Known   bool    `json:"known"`
}

type gaugeConfig struct {
	label string
	color string
	icon  string
}

var gaugeConfigs = map[domain.RiskLevel]gaugeConfig{
	domain.RiskLow:      {label: "Low Risk", color: "#10b981", icon: "shield-check"},
	domain.RiskModerate: {label: "Moderate Risk", color: "#f59e0b", icon: "alert-circle"},
	domain.RiskHigh:     {label: "High Risk", color: "#f97316", icon: "alert-triangle"},
	domain.RiskCritical: {label: "Critical Risk", color: "#ef4444", icon: "alert-octagon"},
}

var unknownGauge = gaugeConfig{label: "Unknown", color: "#6b7280", icon: "help-circle"}

// RiskGauge maps a risk level to one of the four fixed gauge configurations.
// Unrecognised levels render an explicit unknown state with Known=false.
func RiskGauge(level domain.RiskLevel, score float64) Gauge {
	normalized := domain.RiskLevel(strings.ToLower(strings.TrimSpace(string(level))))
	cfg, ok := gaugeConfigs[normalized]
	name := string(normalized)
	if !ok {
		cfg = unknownGauge
		name = GaugeUnknown
	}
	return Gauge{
		Level:   name,
		Label:   cfg.label,
		Color:   cfg.color,
		Icon:    cfg.icon,
		Score:   score,
		Percent: clampPercent(score),
		Known:   ok,
	}
}

func clampPercent(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
