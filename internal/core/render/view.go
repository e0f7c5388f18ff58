package render

import "github.com/kirillkom/blood-insights/internal/core/domain"

// View is everything the result screen paints for one analysis.
type View struct {
	Gauge                Gauge                 `json:"gauge"`
	Summary              string                `json:"summary"`
	Chart                []ChartEntry          `json:"chart"`
	DiseaseCards         []DiseaseCard         `json:"disease_cards"`
	RecommendationGroups []RecommendationGroup `json:"recommendation_groups"`
}

func Render(result domain.AnalysisResult) View {
	return View{
		Gauge:                RiskGauge(result.RiskLevel, result.OverallRiskScore),
		Summary:              result.Summary,
		Chart:                Chart(result.ParameterAnalysis),
		DiseaseCards:         DiseaseCards(result.DiseaseRisks),
		RecommendationGroups: GroupRecommendations(result.Recommendations),
	}
}
