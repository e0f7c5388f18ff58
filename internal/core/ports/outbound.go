package ports

import (
	"context"
	"io"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

// AuthBackend issues and revokes sessions on the analysis backend.
type AuthBackend interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// CatalogBackend serves parameter definitions.
type CatalogBackend interface {
	Parameters(ctx context.Context) ([]domain.ParameterDefinition, error)
}

// AnalysisBackend scores a parameter value set.
type AnalysisBackend interface {
	Analyze(ctx context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error)
}

// ReportBackend handles uploaded reports and stored analyses.
type ReportBackend interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*domain.UploadResult, error)
	History(ctx context.Context) ([]domain.HistoryEntry, error)
	Report(ctx context.Context, id string) (*domain.Report, error)
}

// Backend is the full HTTP contract of the analysis service.
type Backend interface {
	AuthBackend
	CatalogBackend
	AnalysisBackend
	ReportBackend
}

// TokenSource supplies the bearer token attached to authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// KVStore is a durable string key-value store.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SpeechEngine plays text aloud. Speak returns once playback has started;
// done is invoked exactly once with nil on natural completion or the
// cancellation/playback error otherwise.
type SpeechEngine interface {
	Speak(ctx context.Context, text, language string, done func(error)) error
}

// ReportInspector rejects uploads the backend cannot process.
type ReportInspector interface {
	Inspect(filename, contentType string, data []byte) error
}

// HistoryExporter renders history rows into a document.
type HistoryExporter interface {
	Export(w io.Writer, rows []domain.HistoryEntry) error
}
