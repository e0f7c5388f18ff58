package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

type backendFake struct {
	session      *domain.Session
	authErr      error
	logoutErr    error
	logoutCalls  int
	user         *domain.User
	userErr      error
	params       []domain.ParameterDefinition
	paramsErr    error
	paramCalls   int
	analysis     *domain.AnalyzeResponse
	analyzeErr   error
	analyzed     domain.ParameterValues
	uploadCalls  int
	uploadedName string
	uploadedType string
	uploadedBody []byte
	history      []domain.HistoryEntry
	historyErr   error
	report       *domain.Report
	reportErr    error
	openedID     string
}

func (f *backendFake) Signup(context.Context, domain.SignupRequest) (*domain.Session, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.session, nil
}

func (f *backendFake) Login(context.Context, domain.Credentials) (*domain.Session, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.session, nil
}

func (f *backendFake) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *backendFake) CurrentUser(context.Context) (*domain.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *backendFake) Parameters(context.Context) ([]domain.ParameterDefinition, error) {
	f.paramCalls++
	if f.paramsErr != nil {
		return nil, f.paramsErr
	}
	return f.params, nil
}

func (f *backendFake) Analyze(_ context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error) {
	f.analyzed = values
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analysis, nil
}

func (f *backendFake) Upload(_ context.Context, filename, contentType string, body io.Reader) (*domain.UploadResult, error) {
	f.uploadCalls++
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploadedName = filename
	f.uploadedType = contentType
	f.uploadedBody = raw
	return &domain.UploadResult{ReportID: "r-1", ExtractedParameters: domain.ParameterValues{"hemoglobin": 13.2}}, nil
}

func (f *backendFake) History(context.Context) ([]domain.HistoryEntry, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *backendFake) Report(_ context.Context, id string) (*domain.Report, error) {
	f.openedID = id
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	return f.report, nil
}

func unauthorized() error {
	return domain.WrapError(domain.ErrUnauthorized, "backend.current_user", &domain.HTTPError{StatusCode: 401, Message: "Token expired"})
}

var errBoom = errors.New("boom")
