package render

import "github.com/kirillkom/blood-insights/internal/core/domain"

// Badge breakpoints on a 0-100 risk score.
const (
	badgeModerateFrom = 30
	badgeHighFrom     = 60
	badgeCriticalFrom = 80
)

// BadgeLevel partitions [0,100] at 30/60/80.
func BadgeLevel(score float64) domain.RiskLevel {
	switch {
	case score < badgeModerateFrom:
		return domain.RiskLow
	case score < badgeHighFrom:
		return domain.RiskModerate
	case score < badgeCriticalFrom:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

type Badge struct {
	Level domain.RiskLevel `json:"level"`
	Label string           `json:"label"`
	Color string           `json:"color"`
}

func RiskBadge(score float64) Badge {
	level := BadgeLevel(score)
	cfg := gaugeConfigs[level]
	return Badge{Level: level, Label: cfg.label, Color: cfg.color}
}
