package domain

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type FindingStatus string

const (
	StatusNormal     FindingStatus = "normal"
	StatusBorderline FindingStatus = "borderline"
	StatusAbnormal   FindingStatus = "abnormal"
	StatusCritical   FindingStatus = "critical"
)

type RecommendationCategory string

const (
	CategoryDiet      RecommendationCategory = "diet"
	CategoryExercise  RecommendationCategory = "exercise"
	CategoryLifestyle RecommendationCategory = "lifestyle"
	CategoryMedical   RecommendationCategory = "medical"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParameterValues maps a parameter name to its measured value.
type ParameterValues map[string]float64

type AnalysisResult struct {
	OverallRiskScore  float64            `json:"overall_risk_score"`
	RiskLevel         RiskLevel          `json:"risk_level"`
	Summary           string             `json:"summary"`
	ParameterAnalysis []ParameterFinding `json:"parameter_analysis"`
	DiseaseRisks      []DiseaseRisk      `json:"disease_risks"`
	Recommendations   []Recommendation   `json:"recommendations"`
}

type ParameterFinding struct {
	Parameter    string        `json:"parameter"`
	Value        float64       `json:"value"`
	NormalMin    *float64      `json:"normal_min,omitempty"`
	NormalMax    *float64      `json:"normal_max,omitempty"`
	Status       FindingStatus `json:"status"`
	ConcernLevel float64       `json:"concern_level"`
	Explanation  string        `json:"explanation,omitempty"`
}

type DiseaseRisk struct {
	Disease     string    `json:"disease"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Severity    float64   `json:"severity"`
	Indicators  []string  `json:"indicators"`
	Explanation string    `json:"explanation"`
	Prevention  string    `json:"prevention,omitempty"`
	Symptoms    []string  `json:"symptoms,omitempty"`
}

type Recommendation struct {
	Category  RecommendationCategory `json:"category"`
	Priority  Priority               `json:"priority"`
	Action    string                 `json:"action"`
	Reasoning string                 `json:"reasoning,omitempty"`
	Foods     []string               `json:"foods,omitempty"`
	Exercises []string               `json:"exercises,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
}

type UploadResult struct {
	ReportID            ID              `json:"report_id"`
	ExtractedParameters ParameterValues `json:"extracted_parameters"`
}

type AnalyzeResponse struct {
	ReportID  ID             `json:"report_id"`
	Analysis  AnalysisResult `json:"analysis"`
	CreatedAt Timestamp      `json:"created_at"`
}

// HistoryEntry is a denormalized projection of a past analysis.
type HistoryEntry struct {
	ID          ID              `json:"id"`
	CreatedAt   Timestamp       `json:"created_at"`
	OverallRisk string          `json:"overall_risk"`
	RiskScore   float64         `json:"risk_score"`
	Parameters  ParameterValues `json:"parameters"`
	Analysis    AnalysisResult  `json:"analysis"`
}

type Report struct {
	ID         ID              `json:"id"`
	CreatedAt  Timestamp       `json:"created_at"`
	Parameters ParameterValues `json:"parameters"`
	Analysis   AnalysisResult  `json:"analysis"`
}
