package domain

type ParameterDefinition struct {
	ID             ID      `json:"id"`
	ParameterName  string  `json:"parameter_name"`
	DisplayName    string  `json:"display_name"`
	Unit           string  `json:"unit"`
	NormalRangeMin float64 `json:"normal_range_min"`
	NormalRangeMax float64 `json:"normal_range_max"`
	Category       string  `json:"category"`
}
