package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
	"github.com/kirillkom/blood-insights/internal/infrastructure/backend/contract"
	"github.com/kirillkom/blood-insights/internal/infrastructure/resilience"
)

// CallObserver records backend call outcomes.
type CallObserver interface {
	StartCall(service, operation string) func(statusCode int, err error)
}

type Options struct {
	// Timeout of zero leaves calls unbounded; cancellation comes from the context.
	Timeout    time.Duration
	HTTPClient *http.Client
	Executor   *resilience.Executor
	Observer   CallObserver
	Service    string
}

// Client speaks the analysis backend's REST/JSON contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenSource
	validator  *contract.Validator
	executor   *resilience.Executor
	observer   CallObserver
	service    string
}

func New(baseURL string, tokens ports.TokenSource, validator *contract.Validator, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	service := opts.Service
	if service == "" {
		service = "blood-insights"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		validator:  validator,
		executor:   opts.Executor,
		observer:   opts.Observer,
		service:    service,
	}
}

type authResponse struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, error) {
	var out authResponse
	err := c.do(ctx, request{
		operation: "auth.signup",
		method:    http.MethodPost,
		path:      "/auth/signup",
		payload:   req,
		skipAuth:  true,
		schema:    contract.SchemaAuthResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: out.Token, User: out.User}, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var out authResponse
	err := c.do(ctx, request{
		operation: "auth.login",
		method:    http.MethodPost,
		path:      "/auth/login",
		payload:   creds,
		skipAuth:  true,
		schema:    contract.SchemaAuthResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: out.Token, User: out.User}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	var out struct {
		Message string `json:"message"`
	}
	return c.do(ctx, request{
		operation:  "auth.logout",
		method:     http.MethodPost,
		path:       "/auth/logout",
		schema:     contract.SchemaMessageResponse,
		allowEmpty: true,
	}, &out)
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, request{
		operation: "auth.user",
		method:    http.MethodGet,
		path:      "/auth/user",
		schema:    contract.SchemaUser,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Parameters(ctx context.Context) ([]domain.ParameterDefinition, error) {
	var out struct {
		Parameters []domain.ParameterDefinition `json:"parameters"`
	}
	err := c.do(ctx, request{
		operation: "parameters.list",
		method:    http.MethodGet,
		path:      "/parameters",
		schema:    contract.SchemaParametersResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	for _, def := range out.Parameters {
		if def.NormalRangeMin > def.NormalRangeMax {
			return nil, domain.WrapError(domain.ErrDecode, "parameters.list", fmt.Errorf(
				"parameter %s has normal_range_min %.4g above normal_range_max %.4g",
				def.ParameterName, def.NormalRangeMin, def.NormalRangeMax,
			))
		}
	}
	return out.Parameters, nil
}

func (c *Client) Analyze(ctx context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error) {
	if values == nil {
		values = domain.ParameterValues{}
	}
	var out domain.AnalyzeResponse
	err := c.do(ctx, request{
		operation: "reports.analyze",
		method:    http.MethodPost,
		path:      "/reports/analyze",
		payload:   map[string]any{"parameters": values},
		schema:    contract.SchemaAnalyzeResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*domain.UploadResult, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(filename))))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("copy upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var out domain.UploadResult
	err = c.do(ctx, request{
		operation:   "reports.upload",
		method:      http.MethodPost,
		path:        "/reports/upload",
		body:        form.Bytes(),
		contentType: writer.FormDataContentType(),
		schema:      contract.SchemaUploadResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	var out struct {
		Reports []domain.HistoryEntry `json:"reports"`
	}
	err := c.do(ctx, request{
		operation: "reports.history",
		method:    http.MethodGet,
		path:      "/reports/history",
		schema:    contract.SchemaHistoryResponse,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Reports, nil
}

func (c *Client) Report(ctx context.Context, id string) (*domain.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "reports.get", fmt.Errorf("report id is required"))
	}
	var out domain.Report
	err := c.do(ctx, request{
		operation: "reports.get",
		method:    http.MethodGet,
		path:      "/reports/" + url.PathEscape(id),
		schema:    contract.SchemaReport,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
