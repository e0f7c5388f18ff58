package render

import "github.com/kirillkom/blood-insights/internal/core/domain"

var priorityColors = map[domain.Priority]string{
	domain.PriorityHigh:   "#ef4444",
	domain.PriorityMedium: "#f59e0b",
	domain.PriorityLow:    "#10b981",
}

type RecommendationCard struct {
	domain.Recommendation
	PriorityColor string `json:"priority_color"`
}

type RecommendationGroup struct {
	Category domain.RecommendationCategory `json:"category"`
	Items    []RecommendationCard          `json:"items"`
}

func PriorityColor(priority domain.Priority) string {
	if color, ok := priorityColors[priority]; ok {
		return color
	}
	return unknownGauge.color
}

// GroupRecommendations partitions by category. Groups appear in order of first
// occurrence and items keep their input order inside a group.
func GroupRecommendations(recs []domain.Recommendation) []RecommendationGroup {
	groups := make([]RecommendationGroup, 0, 4)
	index := make(map[domain.RecommendationCategory]int, 4)
	for _, rec := range recs {
		i, ok := index[rec.Category]
		if !ok {
			i = len(groups)
			index[rec.Category] = i
			groups = append(groups, RecommendationGroup{Category: rec.Category})
		}
		groups[i].Items = append(groups[i].Items, RecommendationCard{
			Recommendation: rec,
			PriorityColor:  PriorityColor(rec.Priority),
		})
	}
	return groups
}
