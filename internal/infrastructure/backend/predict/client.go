package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/contract"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/rest"
)

// legacyContentType is what the single-endpoint deployment expects even
// though the body is JSON.
const legacyContentType = "application/x-www-form-urlencoded"

// Client talks to deployments that only expose POST /predict. Everything
// except analysis is reported as domain.ErrUnsupported.
type Client struct {
	http      *resty.Client
	validator *contract.Validator
}

func New(baseURL string, timeout time.Duration, validator *contract.Validator) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{http: httpClient, validator: validator}
}

func (c *Client) Analyze(ctx context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error) {
	if values == nil {
		values = domain.ParameterValues{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", legacyContentType).
		SetBody(raw).
		Post("/predict")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, rest.NetworkError("predict", err)
	}
	if resp.IsError() {
		return nil, rest.DecodeHTTPError("predict", resp.StatusCode(), resp.Body())
	}

	body := unwrapAnalysis(resp.Body())
	if c.validator != nil {
		if err := c.validator.Validate(contract.SchemaAnalysisResult, body); err != nil {
			return nil, fmt.Errorf("predict: %w", err)
		}
	}
	var analysis domain.AnalysisResult
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, domain.WrapError(domain.ErrDecode, "predict", err)
	}
	// Nothing is persisted, so there is no report id or creation time.
	return &domain.AnalyzeResponse{Analysis: analysis}, nil
}

// unwrapAnalysis accepts both a bare analysis object and {"analysis": {...}}.
func unwrapAnalysis(body []byte) []byte {
	var envelope struct {
		Analysis json.RawMessage `json:"analysis"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Analysis) > 0 {
		return envelope.Analysis
	}
	return body
}

var errPredictOnly = errors.New("backend exposes only /predict")

func unsupported(operation string) error {
	return domain.WrapError(domain.ErrUnsupported, operation, errPredictOnly)
}

func (c *Client) Signup(context.Context, domain.SignupRequest) (*domain.Session, error) {
	return nil, unsupported("auth.signup")
}

func (c *Client) Login(context.Context, domain.Credentials) (*domain.Session, error) {
	return nil, unsupported("auth.login")
}

func (c *Client) Logout(context.Context) error {
	return unsupported("auth.logout")
}

func (c *Client) CurrentUser(context.Context) (*domain.User, error) {
	return nil, unsupported("auth.user")
}

func (c *Client) Parameters(context.Context) ([]domain.ParameterDefinition, error) {
	return nil, unsupported("parameters.list")
}

func (c *Client) Upload(context.Context, string, string, io.Reader) (*domain.UploadResult, error) {
	return nil, unsupported("reports.upload")
}

func (c *Client) History(context.Context) ([]domain.HistoryEntry, error) {
	return nil, unsupported("reports.history")
}

func (c *Client) Report(context.Context, string) (*domain.Report, error) {
	return nil, unsupported("reports.get")
}
