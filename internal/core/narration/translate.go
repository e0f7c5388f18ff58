package narration

import "strings"

const DefaultLanguage = "en"

var supportedLanguages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"te": "Telugu",
}

type term struct {
	en         string
	translated string
}

// medicalTerms is applied in order; multi-word terms come before the words they contain.
var medicalTerms = map[string][]term{
	"hi": {
		{en: "Iron Deficiency Anemia", translated: "आयरन की कमी से एनीमिया"},
		{en: "Vitamin B12 Deficiency", translated: "विटामिन बी12 की कमी"},
		{en: "Thrombocytopenia", translated: "थ्रोम्बोसाइटोपेनिया"},
		{en: "Leukocytosis", translated: "ल्यूकोसाइटोसिस"},
		{en: "Normal", translated: "सामान्य"},
		{en: "Diet", translated: "आहार"},
		{en: "Exercise", translated: "व्यायाम"},
		{en: "Lifestyle", translated: "जीवनशैली"},
		{en: "Medical", translated: "चिकित्सा"},
		{en: "High", translated: "उच्च"},
		{en: "Medium", translated: "मध्यम"},
		{en: "Low", translated: "कम"},
	},
	"te": {
		{en: "Iron Deficiency Anemia", translated: "ఇనుము లోపం రక్తహీనత"},
		{en: "Vitamin B12 Deficiency", translated: "విటమిన్ B12 లోపం"},
		{en: "Thrombocytopenia", translated: "థ్రాంబోసైటోపీనియా"},
		{en: "Leukocytosis", translated: "ల్యూకోసైటోసిస్"},
		{en: "Normal", translated: "సాధారణం"},
		{en: "Diet", translated: "ఆహారం"},
		{en: "Exercise", translated: "వ్యాయామం"},
		{en: "Lifestyle", translated: "జీవనశైలి"},
		{en: "Medical", translated: "వైద్య"},
		{en: "High", translated: "అధిక"},
		{en: "Medium", translated: "మధ్యస్థ"},
		{en: "Low", translated: "తక్కువ"},
	},
}

// NormalizeLanguage returns code when supported and DefaultLanguage otherwise.
func NormalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := supportedLanguages[code]; ok {
		return code
	}
	return DefaultLanguage
}

func SupportedLanguages() map[string]string {
	out := make(map[string]string, len(supportedLanguages))
	for code, name := range supportedLanguages {
		out[code] = name
	}
	return out
}

// Translate swaps known medical terms into the target language. Matching is
// case-sensitive; English and unsupported languages return text unchanged.
func Translate(text, language string) string {
	language = NormalizeLanguage(language)
	for _, t := range medicalTerms[language] {
		text = strings.ReplaceAll(text, t.en, t.translated)
	}
	return text
}
