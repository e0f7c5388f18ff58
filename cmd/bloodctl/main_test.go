package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/blood-insights/internal/config"
)

const analysisJSON = `{
  "overall_risk_score": 42,
  "risk_level": "moderate",
  "summary": "Mild anemia pattern",
  "parameter_analysis": [
    {"parameter": "hemoglobin", "value": 11.2, "normal_min": 12, "normal_max": 16, "status": "borderline", "concern_level": 40}
  ],
  "disease_risks": [
    {"disease": "Iron Deficiency Anemia", "risk_level": "moderate", "severity": 45, "indicators": ["hemoglobin"], "explanation": "Low hemoglobin"}
  ],
  "recommendations": [
    {"category": "diet", "priority": "high", "action": "Eat more leafy greens"}
  ]
}`

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":1,"email":"ann@example.com","full_name":"Ann"},"token":"tok-1"}`))
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Logged out"}`))
	})
	mux.HandleFunc("/api/parameters", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"parameters":[
			{"id":1,"parameter_name":"hemoglobin","display_name":"Hemoglobin","unit":"g/dL","normal_range_min":12,"normal_range_max":16,"category":"CBC"},
			{"id":2,"parameter_name":"glucose","display_name":"Glucose","unit":"mg/dL","normal_range_min":70,"normal_range_max":100,"category":"Metabolic"}
		]}`))
	})
	mux.HandleFunc("/api/reports/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Missing token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"report_id":12,"created_at":"2026-01-02T10:00:00","analysis":` + analysisJSON + `}`))
	})
	mux.HandleFunc("/api/reports/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reports":[{"id":12,"created_at":"2026-01-02T10:00:00","overall_risk":"moderate","risk_score":42,"parameters":{"hemoglobin":11.2},"analysis":` + analysisJSON + `}]}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.out = &out
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newTestCLI(t *testing.T, backendURL string) *cli {
	t.Helper()
	c := &cli{
		cfg: config.Config{
			BackendURL:      backendURL + "/api",
			BackendMode:     config.BackendModeREST,
			SessionStore:    config.SessionStoreFile,
			SessionDir:      t.TempDir(),
			SpeechCommand:   "cat",
			DefaultLanguage: "en",
			LogLevel:        "error",
		},
		errOut: &bytes.Buffer{},
	}
	t.Cleanup(c.close)
	return c
}

func TestLoginAnalyzeAndHistory(t *testing.T) {
	server := fakeBackend(t)
	c := newTestCLI(t, server.URL)

	out, err := run(t, c, "login", "--email", "ann@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if !strings.Contains(out, "Logged in as ann@example.com") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = run(t, c, "analyze", "-p", "hemoglobin=11.2", "-p", "glucose=abc")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	for _, want := range []string{"Report 12", "Moderate Risk", "hemoglobin", "DIET", "Eat more leafy greens", "[alert]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("analyze output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, c, "history", "-o", "json")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode history json: %v\n%s", err, out)
	}
	badge, _ := rows[0]["badge"].(map[string]any)
	if len(rows) != 1 || badge["level"] != "moderate" {
		t.Fatalf("unexpected history rows %v", rows)
	}
}

func TestParamsYAMLUsesJSONFieldNames(t *testing.T) {
	server := fakeBackend(t)
	c := newTestCLI(t, server.URL)

	out, err := run(t, c, "params", "-o", "yaml")
	if err != nil {
		t.Fatalf("params error = %v", err)
	}
	if !strings.Contains(out, "parameter_name: hemoglobin") || !strings.Contains(out, "category: Metabolic") {
		t.Fatalf("unexpected yaml output:\n%s", out)
	}
}

func TestLoginFailureSurfacesBackendMessage(t *testing.T) {
	server := fakeBackend(t)
	c := newTestCLI(t, server.URL)

	_, err := run(t, c, "login", "--email", "ann@example.com", "--password", "wrong")
	if err == nil {
		t.Fatalf("expected login error")
	}
	if exitCode(err) != 3 {
		t.Fatalf("expected auth exit code, got %d", exitCode(err))
	}
}

func TestAnalyzeRejectsMalformedParam(t *testing.T) {
	c := newTestCLI(t, "http://127.0.0.1:1")
	if _, err := run(t, c, "analyze", "-p", "hemoglobin"); err == nil || exitCode(err) != 2 {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestHistoryExportWritesWorkbook(t *testing.T) {
	server := fakeBackend(t)
	c := newTestCLI(t, server.URL)
	if _, err := run(t, c, "login", "--email", "ann@example.com", "--password", "secret"); err != nil {
		t.Fatalf("login error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "history.xlsx")
	if _, err := run(t, c, "history", "--export", path); err != nil {
		t.Fatalf("export error = %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("PK")) {
		t.Fatalf("expected a zip-based xlsx file")
	}
}

func TestLanguageRoundTrip(t *testing.T) {
	c := newTestCLI(t, "http://127.0.0.1:1")
	out, err := run(t, c, "language", "hi")
	if err != nil {
		t.Fatalf("language error = %v", err)
	}
	if !strings.Contains(out, "hi (Hindi)") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := run(t, c, "language", "fr"); err == nil {
		t.Fatalf("expected unsupported language error")
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	c := newTestCLI(t, "http://127.0.0.1:1")
	if _, err := run(t, c, "language", "-o", "xml"); err == nil {
		t.Fatalf("expected output format error")
	}
}
