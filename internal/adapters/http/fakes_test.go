package httpadapter

import (
	"context"
	"io"
	"net/http"

	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/session"
)

type authFake struct {
	store     *session.Store
	err       error
	logoutErr error
	user      *domain.User
}

func (f *authFake) Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, error) {
	return f.Login(ctx, domain.Credentials{Email: req.Email, Password: req.Password})
}

func (f *authFake) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	sess := &domain.Session{Token: "tok", User: domain.User{ID: "1", Email: creds.Email}}
	if err := f.store.SetSession(ctx, sess.Token, sess.User); err != nil {
		return nil, err
	}
	return sess, nil
}

func (f *authFake) Logout(ctx context.Context) error {
	_ = f.store.Clear(ctx)
	return f.logoutErr
}

func (f *authFake) CurrentUser(context.Context) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *authFake) IsAuthenticated(ctx context.Context) bool { return f.store.IsAuthenticated(ctx) }

type catalogFake struct {
	defs []domain.ParameterDefinition
	err  error
}

func (f catalogFake) Parameters(context.Context) ([]domain.ParameterDefinition, error) {
	return f.defs, f.err
}

type analysisFake struct {
	resp      *domain.AnalyzeResponse
	err       error
	submitted domain.ParameterValues
	uploaded  string
}

func (f *analysisFake) Analyze(_ context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error) {
	f.submitted = values
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *analysisFake) Upload(_ context.Context, filename, _ string, body io.Reader) (*domain.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := io.ReadAll(body)
	f.uploaded = filename + ":" + string(raw)
	return &domain.UploadResult{ReportID: "55", ExtractedParameters: domain.ParameterValues{"hemoglobin": 12.1}}, nil
}

type historyFake struct {
	entries []domain.HistoryEntry
	report  *domain.Report
	err     error
}

func (f historyFake) List(context.Context) ([]domain.HistoryEntry, error) { return f.entries, f.err }

func (f historyFake) Open(_ context.Context, id string) (*domain.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.report == nil || f.report.ID.String() != id {
		return nil, domain.WrapError(domain.ErrNotFound, "open report", &domain.HTTPError{StatusCode: 404, Message: "Report not found"})
	}
	return f.report, nil
}

func (f historyFake) Export(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("PK"))
	return err
}

type speechFake struct {
	spoken   *domain.AnalysisResult
	language string
	status   domain.SpeechStatus
}

func (f *speechFake) Speak(_ context.Context, result domain.AnalysisResult, language string) error {
	f.spoken = &result
	f.language = language
	f.status = domain.SpeechStatus{State: domain.SpeechSpeaking, Language: language}
	return nil
}

func (f *speechFake) Stop() { f.status.State = domain.SpeechStopped }

func (f *speechFake) Status() domain.SpeechStatus { return f.status }

type routerFixture struct {
	handler  http.Handler
	store    *session.Store
	auth     *authFake
	analysis *analysisFake
	speech   *speechFake
}

func newRouterFixture(cfg config.Config, history historyFake) *routerFixture {
	store := session.NewStore(session.NewMemoryKV())
	f := &routerFixture{
		store:    store,
		auth:     &authFake{store: store, user: &domain.User{ID: "1", Email: "a@b.c"}},
		analysis: &analysisFake{},
		speech:   &speechFake{status: domain.SpeechStatus{State: domain.SpeechIdle}},
	}
	f.handler = NewRouter(cfg, Services{
		Auth:    f.auth,
		Session: store,
		Catalog: catalogFake{defs: []domain.ParameterDefinition{
			{ID: "1", ParameterName: "hemoglobin", Category: "CBC", NormalRangeMin: 12, NormalRangeMax: 16},
			{ID: "2", ParameterName: "glucose", Category: "Metabolic", NormalRangeMin: 70, NormalRangeMax: 100},
			{ID: "3", ParameterName: "wbc", Category: "CBC", NormalRangeMin: 4000, NormalRangeMax: 11000},
		}},
		Analysis: f.analysis,
		History:  history,
		Speech:   f.speech,
	}).Handler()
	return f
}
