package bootstrap

import (
	"context"
	"testing"

	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/core/domain"
)

func TestNewWiresFileSessionAndRESTBackend(t *testing.T) {
	cfg := config.Config{
		BackendURL:    "http://127.0.0.1:1/api",
		BackendMode:   config.BackendModeREST,
		SessionStore:  config.SessionStoreFile,
		SessionDir:    t.TempDir(),
		SpeechCommand: "cat",
	}
	app, err := New(context.Background(), cfg, "test", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Auth.IsAuthenticated(context.Background()) {
		t.Fatalf("fresh session dir should be anonymous")
	}
	if err := app.Session.SetSession(context.Background(), "tok", domain.User{ID: "1"}); err != nil {
		t.Fatalf("SetSession() error = %v", err)
	}
	if !app.Auth.IsAuthenticated(context.Background()) {
		t.Fatalf("expected session persisted through the file store")
	}
}

func TestNewPredictModeReportsUnsupported(t *testing.T) {
	cfg := config.Config{
		BackendMode:   config.BackendModePredict,
		PredictURL:    "http://127.0.0.1:1",
		SessionDir:    t.TempDir(),
		SpeechCommand: "cat",
	}
	app, err := New(context.Background(), cfg, "test", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if _, err := app.History.List(context.Background()); !domain.IsKind(err, domain.ErrUnsupported) {
		t.Fatalf("expected unsupported history in predict mode, got %v", err)
	}
}

func TestNewRejectsUnknownModes(t *testing.T) {
	if _, err := New(context.Background(), config.Config{BackendMode: "grpc", SessionDir: t.TempDir()}, "test", nil); err == nil {
		t.Fatalf("expected unknown backend mode error")
	}
	if _, err := New(context.Background(), config.Config{SessionStore: "etcd"}, "test", nil); err == nil {
		t.Fatalf("expected unknown session store error")
	}
}
