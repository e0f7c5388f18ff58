package render

import (
	"github.com/kirillkom/blood-insights/internal/core/domain"
)

// SyntheticBoundFactor scales the observed value into a stand-in upper bound
// when the backend omits normal_max. The bound only sizes the chart.
const SyntheticBoundFactor = 1.2

const defaultStatusColor = "#3b82f6"

var statusColors = map[domain.FindingStatus]string{
	domain.StatusNormal:     "#10b981",
	domain.StatusBorderline: "#f59e0b",
	domain.StatusAbnormal:   "#f97316",
	domain.StatusCritical:   "#ef4444",
}

type ChartEntry struct {
	Parameter    string               `json:"parameter"`
	Value        float64              `json:"value"`
	ReferenceMin *float64             `json:"reference_min,omitempty"`
	Reference    float64              `json:"reference"`
	Synthetic    bool                 `json:"synthetic_reference"`
	Status       domain.FindingStatus `json:"status"`
	Color        string               `json:"color"`
}

// Band is a chart reference band.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// StatusColor is a fixed five-way mapping; anything unrecognised gets the default colour.
func StatusColor(status domain.FindingStatus) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return defaultStatusColor
}

// ChartBound returns the reference upper bound for a finding and whether it was synthesised.
func ChartBound(finding domain.ParameterFinding) (float64, bool) {
	if finding.NormalMax != nil {
		return *finding.NormalMax, false
	}
	return finding.Value * SyntheticBoundFactor, true
}

// Chart produces one bar pair per finding, in input order.
func Chart(findings []domain.ParameterFinding) []ChartEntry {
	entries := make([]ChartEntry, 0, len(findings))
	for _, finding := range findings {
		bound, synthetic := ChartBound(finding)
		entry := ChartEntry{
			Parameter: finding.Parameter,
			Value:     finding.Value,
			Reference: bound,
			Synthetic: synthetic,
			Status:    finding.Status,
			Color:     StatusColor(finding.Status),
		}
		if finding.NormalMin != nil {
			lower := *finding.NormalMin
			entry.ReferenceMin = &lower
		}
		entries = append(entries, entry)
	}
	return entries
}

// ReferenceBand is the normal range of a catalog definition. The returned
// band always satisfies Min <= Max.
func ReferenceBand(def domain.ParameterDefinition) Band {
	lo, hi := def.NormalRangeMin, def.NormalRangeMax
	if lo > hi {
		lo, hi = hi, lo
	}
	return Band{Min: lo, Max: hi}
}
