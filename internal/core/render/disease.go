package render

import (
	"strings"
	"unicode"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

const (
	IconCardiac      = "cardiac"
	IconMetabolic    = "metabolic"
	IconNeurological = "neurological"
	IconVascular     = "vascular"
	IconAlert        = "alert"
)

// diseaseTaxonomy classifies normalised names the keyword rules leave on the
// generic alert icon. It never overrides a keyword match.
var diseaseTaxonomy = map[string]string{
	"coronary artery disease": IconCardiac,
	"myocardial infarction":   IconCardiac,
	"arrhythmia":              IconCardiac,
	"atrial fibrillation":     IconCardiac,
	"metabolic syndrome":      IconMetabolic,
	"hyperglycemia":           IconMetabolic,
	"hypoglycemia":            IconMetabolic,
	"insulin resistance":      IconMetabolic,
	"dyslipidemia":            IconMetabolic,
	"hypercholesterolemia":    IconMetabolic,
	"hypothyroidism":          IconMetabolic,
	"hyperthyroidism":         IconMetabolic,
	"stroke":                  IconNeurological,
	"dementia":                IconNeurological,
	"hypotension":             IconVascular,
	"atherosclerosis":         IconVascular,
	"deep vein thrombosis":    IconVascular,
}

// legacyKeywordRules is ordered; the first matching rule wins.
var legacyKeywordRules = []struct {
	keywords []string
	icon     string
}{
	{keywords: []string{"heart", "cardio"}, icon: IconCardiac},
	{keywords: []string{"diabetes", "glucose"}, icon: IconMetabolic},
	{keywords: []string{"brain", "neuro"}, icon: IconNeurological},
	{keywords: []string{"pressure", "hypertension"}, icon: IconVascular},
}

var riskColors = map[domain.RiskLevel]string{
	domain.RiskLow:      "#10b981",
	domain.RiskModerate: "#f59e0b",
	domain.RiskHigh:     "#ef4444",
}

type DiseaseCard struct {
	Disease     string           `json:"disease"`
	RiskLevel   domain.RiskLevel `json:"risk_level"`
	Severity    float64          `json:"severity"`
	Icon        string           `json:"icon"`
	Color       string           `json:"color"`
	Indicators  []string         `json:"indicators"`
	Explanation string           `json:"explanation"`
	Prevention  string           `json:"prevention,omitempty"`
	Symptoms    []string         `json:"symptoms,omitempty"`
}

// DiseaseIcon applies the ordered keyword rules; the taxonomy table only
// refines names that would otherwise get IconAlert.
func DiseaseIcon(disease string) string {
	if icon := LegacyDiseaseIcon(disease); icon != IconAlert {
		return icon
	}
	if icon, ok := diseaseTaxonomy[NormalizeDiseaseName(disease)]; ok {
		return icon
	}
	return IconAlert
}

// LegacyDiseaseIcon is the first-match keyword search over the disease name.
func LegacyDiseaseIcon(disease string) string {
	name := strings.ToLower(disease)
	for _, rule := range legacyKeywordRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(name, keyword) {
				return rule.icon
			}
		}
	}
	return IconAlert
}

// NormalizeDiseaseName lowercases, drops parenthesised qualifiers and
// collapses punctuation to single spaces.
func NormalizeDiseaseName(disease string) string {
	name := strings.ToLower(disease)
	if idx := strings.Index(name, "("); idx >= 0 {
		name = name[:idx]
	}
	var b strings.Builder
	space := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

func RiskColor(level domain.RiskLevel) string {
	if color, ok := riskColors[level]; ok {
		return color
	}
	return unknownGauge.color
}

// DiseaseCards keeps the input order; no grouping.
func DiseaseCards(risks []domain.DiseaseRisk) []DiseaseCard {
	cards := make([]DiseaseCard, 0, len(risks))
	for _, risk := range risks {
		cards = append(cards, DiseaseCard{
			Disease:     risk.Disease,
			RiskLevel:   risk.RiskLevel,
			Severity:    risk.Severity,
			Icon:        DiseaseIcon(risk.Disease),
			Color:       RiskColor(risk.RiskLevel),
			Indicators:  append([]string(nil), risk.Indicators...),
			Explanation: risk.Explanation,
			Prevention:  risk.Prevention,
			Symptoms:    append([]string(nil), risk.Symptoms...),
		})
	}
	return cards
}
