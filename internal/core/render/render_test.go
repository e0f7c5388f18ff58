package render

import (
	"math"
	"testing"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

func ptr(v float64) *float64 { return &v }

func TestRiskGaugeKnownAndUnknownLevels(t *testing.T) {
	for _, level := range []domain.RiskLevel{domain.RiskLow, domain.RiskModerate, domain.RiskHigh, domain.RiskCritical} {
		g := RiskGauge(level, 50)
		if !g.Known || g.Level != string(level) {
			t.Fatalf("expected known gauge for %s, got %+v", level, g)
		}
	}

	g := RiskGauge("severe", 50)
	if g.Known || g.Level != GaugeUnknown || g.Label != "Unknown" {
		t.Fatalf("expected explicit unknown gauge, got %+v", g)
	}
	if g := RiskGauge(" High ", 70); !g.Known || g.Level != "high" {
		t.Fatalf("expected case-insensitive match, got %+v", g)
	}
}

func TestRiskGaugeClampsPercent(t *testing.T) {
	if g := RiskGauge(domain.RiskLow, -4); g.Percent != 0 {
		t.Fatalf("expected 0, got %v", g.Percent)
	}
	if g := RiskGauge(domain.RiskCritical, 140); g.Percent != 100 {
		t.Fatalf("expected 100, got %v", g.Percent)
	}
	if g := RiskGauge(domain.RiskCritical, math.NaN()); g.Percent != 0 {
		t.Fatalf("expected 0 for NaN, got %v", g.Percent)
	}
}

func TestBadgeLevelBreakpoints(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{29.999, domain.RiskLow},
		{30, domain.RiskModerate},
		{59.9, domain.RiskModerate},
		{60, domain.RiskHigh},
		{79.99, domain.RiskHigh},
		{80, domain.RiskCritical},
		{100, domain.RiskCritical},
	}
	for _, tc := range cases {
		if got := BadgeLevel(tc.score); got != tc.want {
			t.Fatalf("BadgeLevel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestBadgeLevelIsTotalPartition(t *testing.T) {
	order := map[domain.RiskLevel]int{domain.RiskLow: 0, domain.RiskModerate: 1, domain.RiskHigh: 2, domain.RiskCritical: 3}
	prev := -1
	for i := 0; i <= 10000; i++ {
		score := float64(i) / 100
		rank, ok := order[BadgeLevel(score)]
		if !ok {
			t.Fatalf("score %v fell outside the partition", score)
		}
		if rank < prev {
			t.Fatalf("badge level decreased at score %v", score)
		}
		prev = rank
	}
}

func TestChartSynthesisesMissingUpperBoundWithoutMutation(t *testing.T) {
	findings := []domain.ParameterFinding{
		{Parameter: "hemoglobin", Value: 13.5, NormalMin: ptr(12), NormalMax: ptr(16), Status: domain.StatusNormal},
		{Parameter: "wbc", Value: 7200, Status: domain.StatusBorderline},
		{Parameter: "crp", Value: 2, Status: "odd"},
	}

	entries := Chart(findings)
	if len(entries) != len(findings) {
		t.Fatalf("expected one entry per finding, got %d", len(entries))
	}
	if entries[0].Reference != 16 || entries[0].Synthetic {
		t.Fatalf("expected real bound, got %+v", entries[0])
	}
	if math.Abs(entries[1].Reference-8640) > 1e-9 || !entries[1].Synthetic {
		t.Fatalf("expected synthetic bound 8640, got %+v", entries[1])
	}
	if findings[1].NormalMax != nil {
		t.Fatalf("synthetic bound must not be written back to the finding")
	}
	if entries[2].Color != defaultStatusColor {
		t.Fatalf("expected default colour for unknown status, got %s", entries[2].Color)
	}
	if entries[0].Color != StatusColor(domain.StatusNormal) || entries[1].Color != StatusColor(domain.StatusBorderline) {
		t.Fatalf("unexpected status colours %+v", entries)
	}
}

func TestReferenceBandOrdering(t *testing.T) {
	band := ReferenceBand(domain.ParameterDefinition{NormalRangeMin: 4.5, NormalRangeMax: 11})
	if band.Min != 4.5 || band.Max != 11 {
		t.Fatalf("unexpected band %+v", band)
	}
	band = ReferenceBand(domain.ParameterDefinition{NormalRangeMin: 0, NormalRangeMax: 0})
	if band.Min > band.Max {
		t.Fatalf("band must satisfy min <= max, got %+v", band)
	}
}

func TestLegacyDiseaseIconOrderIsSignificant(t *testing.T) {
	cases := map[string]string{
		"Heart Disease":             IconCardiac,
		"Cardiovascular risk":       IconCardiac,
		"Heart pressure overload":   IconCardiac,
		"Diabetes and hypertension": IconMetabolic,
		"Glucose intolerance":       IconMetabolic,
		"Neurodegeneration":         IconNeurological,
		"Brain pressure":            IconNeurological,
		"High Blood Pressure":       IconVascular,
		"Hypertension stage 2":      IconVascular,
		"Iron Deficiency Anemia":    IconAlert,
		"Cardio-diabetic complex":   IconCardiac,
		"glucose-driven neuropathy": IconMetabolic,
	}
	for name, want := range cases {
		if got := LegacyDiseaseIcon(name); got != want {
			t.Fatalf("LegacyDiseaseIcon(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestDiseaseIconKeepsKeywordPrecedence(t *testing.T) {
	cases := map[string]string{
		"Cardiometabolic Syndrome":  IconCardiac,
		"Diabetic neuropathy":       IconNeurological,
		"Type 2 Diabetes (early)":   IconMetabolic,
		"Heart rhythm irregularity": IconCardiac,
		"Iron Deficiency Anemia":    IconAlert,
		"Anemia":                    IconAlert,
		"Something unheard of":      IconAlert,
	}
	for name, want := range cases {
		if got := DiseaseIcon(name); got != want {
			t.Fatalf("DiseaseIcon(%q) = %s, want %s", name, got, want)
		}
		if legacy := LegacyDiseaseIcon(name); legacy != IconAlert && legacy != DiseaseIcon(name) {
			t.Fatalf("DiseaseIcon(%q) overrides keyword icon %s", name, legacy)
		}
	}
}

func TestDiseaseIconTaxonomyRefinesAlertOnly(t *testing.T) {
	cases := map[string]string{
		"Coronary Artery Disease": IconCardiac,
		"Hyperglycemia":           IconMetabolic,
		"Stroke (ischemic)":       IconNeurological,
		"Atherosclerosis":         IconVascular,
	}
	for name, want := range cases {
		if LegacyDiseaseIcon(name) != IconAlert {
			t.Fatalf("%q should not match a keyword rule", name)
		}
		if got := DiseaseIcon(name); got != want {
			t.Fatalf("DiseaseIcon(%q) = %s, want %s", name, got, want)
		}
	}

	allowed := map[string]bool{IconCardiac: true, IconMetabolic: true, IconNeurological: true, IconVascular: true, IconAlert: true}
	for name, icon := range diseaseTaxonomy {
		if !allowed[icon] {
			t.Fatalf("taxonomy entry %q uses unknown icon %q", name, icon)
		}
		if LegacyDiseaseIcon(name) != IconAlert {
			t.Fatalf("taxonomy entry %q is shadowed by a keyword rule", name)
		}
	}
}

func TestNormalizeDiseaseName(t *testing.T) {
	if got := NormalizeDiseaseName("  Type-2   Diabetes (suspected)"); got != "type 2 diabetes" {
		t.Fatalf("unexpected normalisation %q", got)
	}
}

func TestGroupRecommendationsPreservesOrder(t *testing.T) {
	recs := []domain.Recommendation{
		{Category: domain.CategoryDiet, Priority: domain.PriorityHigh, Action: "item0"},
		{Category: domain.CategoryExercise, Priority: domain.PriorityLow, Action: "item1"},
		{Category: domain.CategoryDiet, Priority: domain.PriorityMedium, Action: "item2"},
	}

	groups := GroupRecommendations(recs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Category != domain.CategoryDiet || groups[1].Category != domain.CategoryExercise {
		t.Fatalf("unexpected group order %s, %s", groups[0].Category, groups[1].Category)
	}
	if len(groups[0].Items) != 2 || groups[0].Items[0].Action != "item0" || groups[0].Items[1].Action != "item2" {
		t.Fatalf("unexpected diet group %+v", groups[0].Items)
	}
	if groups[0].Items[0].PriorityColor != PriorityColor(domain.PriorityHigh) {
		t.Fatalf("expected priority colour on card")
	}
}

func TestDiseaseCardsKeepInputOrder(t *testing.T) {
	risks := []domain.DiseaseRisk{
		{Disease: "Hypertension", RiskLevel: domain.RiskHigh, Severity: 70},
		{Disease: "Anemia", RiskLevel: domain.RiskLow, Severity: 10},
	}
	cards := DiseaseCards(risks)
	if len(cards) != 2 || cards[0].Disease != "Hypertension" || cards[1].Disease != "Anemia" {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if cards[0].Icon != IconVascular || cards[0].Color != RiskColor(domain.RiskHigh) {
		t.Fatalf("unexpected first card %+v", cards[0])
	}
}

func TestRenderProducesAllViews(t *testing.T) {
	result := domain.AnalysisResult{
		OverallRiskScore: 45,
		RiskLevel:        domain.RiskModerate,
		Summary:          "summary",
		ParameterAnalysis: []domain.ParameterFinding{
			{Parameter: "hemoglobin", Value: 13.5, NormalMax: ptr(16), Status: domain.StatusNormal},
			{Parameter: "wbc", Value: 7200, Status: domain.StatusNormal},
		},
		Recommendations: []domain.Recommendation{
			{Category: domain.CategoryMedical, Priority: domain.PriorityHigh, Action: "See a doctor"},
			{Category: domain.CategoryLifestyle, Priority: domain.PriorityLow, Action: "Sleep"},
		},
	}

	view := Render(result)
	if view.Gauge.Level != "moderate" {
		t.Fatalf("unexpected gauge %+v", view.Gauge)
	}
	if len(view.Chart) != 2 || len(view.DiseaseCards) != 0 || len(view.RecommendationGroups) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
}
