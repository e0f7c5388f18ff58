// Package narration turns an analysis into spoken text and tracks playback.
package narration

import (
	"strconv"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

// BuildText flattens a result in a fixed order: score, risk level, summary,
// then every disease risk, then every recommendation.
func BuildText(result domain.AnalysisResult) string {
	parts := []string{
		"Overall risk score: " + formatScore(result.OverallRiskScore) + " out of 100.",
		"Risk level: " + titleWord(string(result.RiskLevel)) + ".",
	}
	parts = appendSentence(parts, "", result.Summary)

	for _, risk := range result.DiseaseRisks {
		parts = appendSentence(parts, "Disease risk: ", risk.Disease)
		parts = appendSentence(parts, "Risk level: ", titleWord(string(risk.RiskLevel)))
		parts = appendSentence(parts, "", risk.Explanation)
		parts = appendSentence(parts, "Prevention: ", risk.Prevention)
	}
	for _, rec := range result.Recommendations {
		parts = appendSentence(parts, "Recommendation: ", rec.Action)
		parts = appendSentence(parts, "", rec.Reasoning)
	}
	return strings.Join(parts, " ")
}

func appendSentence(parts []string, label, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return parts
	}
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return append(parts, label+text)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// titleWord upper-cases the first letter so dictionary terms like "High" match.
func titleWord(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return "Unknown"
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
