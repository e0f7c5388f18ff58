package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/narration"
	"github.com/kirillkom/blood-insights/internal/core/ports"
	"github.com/kirillkom/blood-insights/internal/core/render"
	"github.com/kirillkom/blood-insights/internal/core/session"
	"github.com/kirillkom/blood-insights/internal/core/usecase"
	"github.com/kirillkom/blood-insights/internal/observability/metrics"
)

const (
	serviceName      = "blood-dashboard"
	multipartSlack   = 1 << 20
	maxJSONBodyBytes = 1 << 20
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Services are the inbound ports the dashboard serves. Metrics is optional.
type Services struct {
	Auth     ports.SessionService
	Session  ports.SessionState
	Catalog  ports.CatalogReader
	Analysis ports.AnalysisRunner
	History  ports.HistoryReader
	Speech   ports.SpeechNarrator
	Metrics  *metrics.HTTPServerMetrics
}

type Router struct {
	cfg config.Config
	svc Services
}

func NewRouter(cfg config.Config, svc Services) *Router {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = narration.DefaultLanguage
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = usecase.DefaultUploadMaxBytes
	}
	return &Router{cfg: cfg, svc: svc}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	if rt.svc.Metrics != nil {
		mux.Handle("/metrics", rt.svc.Metrics.Handler())
	}
	mux.HandleFunc("/v1/session", rt.getSession)
	mux.HandleFunc("/v1/auth/signup", rt.signup)
	mux.HandleFunc("/v1/auth/login", rt.login)
	mux.HandleFunc("/v1/auth/logout", rt.logout)
	mux.HandleFunc("/v1/auth/user", rt.currentUser)
	mux.HandleFunc("/v1/parameters", rt.parameters)
	mux.HandleFunc("/v1/reports/upload", rt.uploadReport)
	mux.HandleFunc("/v1/reports/analyze", rt.analyze)
	mux.HandleFunc("/v1/reports/history", rt.history)
	mux.HandleFunc("/v1/reports/history/export", rt.exportHistory)
	mux.HandleFunc("/v1/reports/", rt.getReportByID)
	mux.HandleFunc("/v1/speech", rt.speechStatus)
	mux.HandleFunc("/v1/speech/speak", rt.speak)
	mux.HandleFunc("/v1/speech/stop", rt.stopSpeech)
	mux.HandleFunc("/v1/settings/language", rt.setLanguage)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIBackpressureMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.svc.Metrics != nil {
		handler = rt.svc.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionResponse struct {
	Authenticated  bool         `json:"authenticated"`
	User           *domain.User `json:"user,omitempty"`
	Language       string       `json:"language"`
	TokenExpiresAt *time.Time   `json:"token_expires_at,omitempty"`
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()
	resp := sessionResponse{
		Authenticated: rt.svc.Session.IsAuthenticated(ctx),
		Language:      rt.svc.Session.Language(ctx, rt.cfg.DefaultLanguage),
	}
	if resp.Authenticated {
		if user, err := rt.svc.Session.User(ctx); err == nil {
			resp.User = user
		}
		if token, err := rt.svc.Session.Token(ctx); err == nil {
			if exp, ok := session.TokenExpiry(token); ok {
				resp.TokenExpiresAt = &exp
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) signup(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req domain.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := rt.svc.Auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": sess.User, "authenticated": true})
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req domain.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := rt.svc.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": sess.User, "authenticated": true})
}

// logout always succeeds locally; a backend failure is reported as a warning.
func (rt *Router) logout(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	resp := map[string]any{"message": "Logged out", "authenticated": false}
	if err := rt.svc.Auth.Logout(r.Context()); err != nil {
		if rt.svc.Session.IsAuthenticated(r.Context()) {
			writeError(w, err)
			return
		}
		resp["warning"] = domain.MessageOf(err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) currentUser(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	user, err := rt.svc.Auth.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type parameterView struct {
	domain.ParameterDefinition
	Band render.Band `json:"band"`
}

type parameterGroupView struct {
	Category   string          `json:"category"`
	Parameters []parameterView `json:"parameters"`
}

func (rt *Router) parameters(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	defs, err := rt.svc.Catalog.Parameters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	groups := usecase.GroupByCategory(defs)
	out := make([]parameterGroupView, 0, len(groups))
	for _, group := range groups {
		view := parameterGroupView{Category: group.Category, Parameters: make([]parameterView, 0, len(group.Parameters))}
		for _, def := range group.Parameters {
			view.Parameters = append(view.Parameters, parameterView{ParameterDefinition: def, Band: render.ReferenceBand(def)})
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{"parameters": defs, "groups": out})
}

func (rt *Router) uploadReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes+multipartSlack)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorMessage(w, http.StatusBadRequest, "File too large")
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	result, err := rt.svc.Analysis.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type analyzeRequest struct {
	Parameters domain.ParameterValues `json:"parameters"`
	// RawParameters carries unparsed form input; non-numeric entries become 0.
	RawParameters map[string]string `json:"raw_parameters"`
}

type analysisResponse struct {
	ReportID  domain.ID             `json:"report_id,omitempty"`
	CreatedAt domain.Timestamp      `json:"created_at"`
	Analysis  domain.AnalysisResult `json:"analysis"`
	View      render.View           `json:"view"`
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	values := usecase.ParseParameterInput(req.RawParameters)
	for name, value := range req.Parameters {
		values[name] = value
	}

	resp, err := rt.svc.Analysis.Analyze(r.Context(), values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		ReportID:  resp.ReportID,
		CreatedAt: resp.CreatedAt,
		Analysis:  resp.Analysis,
		View:      render.Render(resp.Analysis),
	})
}

func (rt *Router) history(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	entries, err := rt.svc.History.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": usecase.HistoryRows(entries)})
}

func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	var buf bytes.Buffer
	if err := rt.svc.History.Export(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("blood-history-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, &buf)
}

type reportResponse struct {
	*domain.Report
	View render.View `json:"view"`
}

func (rt *Router) getReportByID(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/reports/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeErrorMessage(w, http.StatusBadRequest, "report id is required")
		return
	}
	report, err := rt.svc.History.Open(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: report, View: render.Render(report.Analysis)})
}

type speakRequest struct {
	ReportID string                 `json:"report_id"`
	Analysis *domain.AnalysisResult `json:"analysis"`
	Language string                 `json:"language"`
}

func (rt *Router) speak(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req speakRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var result domain.AnalysisResult
	switch {
	case strings.TrimSpace(req.ReportID) != "":
		report, err := rt.svc.History.Open(r.Context(), req.ReportID)
		if err != nil {
			writeError(w, err)
			return
		}
		result = report.Analysis
	case req.Analysis != nil:
		result = *req.Analysis
	default:
		writeErrorMessage(w, http.StatusBadRequest, "report_id or analysis is required")
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = rt.svc.Session.Language(r.Context(), rt.cfg.DefaultLanguage)
	}
	if err := rt.svc.Speech.Speak(r.Context(), result, language); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rt.svc.Speech.Status())
}

func (rt *Router) stopSpeech(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	rt.svc.Speech.Stop()
	writeJSON(w, http.StatusOK, rt.svc.Speech.Status())
}

func (rt *Router) speechStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Speech.Status())
}

func (rt *Router) setLanguage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPut) {
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	code := strings.ToLower(strings.TrimSpace(req.Language))
	if _, ok := narration.SupportedLanguages()[code]; !ok {
		writeErrorMessage(w, http.StatusBadRequest, fmt.Sprintf("unsupported language %q", req.Language))
		return
	}
	if err := rt.svc.Session.SetLanguage(r.Context(), code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": code})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		slog.Debug("invalid_json_body", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeErrorMessage(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
