package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

//go:embed contract.yaml
var contractYAML []byte

// Schema names of backend response bodies.
const (
	SchemaAuthResponse       = "AuthResponse"
	SchemaUser               = "User"
	SchemaMessageResponse    = "MessageResponse"
	SchemaParametersResponse = "ParametersResponse"
	SchemaAnalyzeResponse    = "AnalyzeResponse"
	SchemaAnalysisResult     = "AnalysisResult"
	SchemaUploadResponse     = "UploadResponse"
	SchemaHistoryResponse    = "HistoryResponse"
	SchemaReport             = "Report"
)

// Validator checks raw backend bodies against the embedded OpenAPI contract
// before they are decoded into domain types.
type Validator struct {
	schemas map[string]*openapi3.Schema
}

func Load(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contractYAML)
	if err != nil {
		return nil, fmt.Errorf("load backend contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate backend contract: %w", err)
	}

	schemas := make(map[string]*openapi3.Schema, len(doc.Components.Schemas))
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("backend contract schema %s is unresolved", name)
		}
		schemas[name] = ref.Value
	}
	return &Validator{schemas: schemas}, nil
}

func MustLoad() *Validator {
	v, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports a domain.ErrDecode when body does not match schema.
func (v *Validator) Validate(schema string, body []byte) error {
	s, ok := v.schemas[schema]
	if !ok {
		return fmt.Errorf("unknown contract schema %q", schema)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.WrapError(domain.ErrDecode, schema, err)
	}
	if err := s.VisitJSON(value); err != nil {
		return domain.WrapError(domain.ErrDecode, schema, err)
	}
	return nil
}

func (v *Validator) Schemas() []string {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
