package ports

import (
	"context"
	"io"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

// SessionService is the inbound contract for authentication flows.
type SessionService interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.Session, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	IsAuthenticated(ctx context.Context) bool
}

// CatalogReader loads parameter definitions for manual entry.
type CatalogReader interface {
	Parameters(ctx context.Context) ([]domain.ParameterDefinition, error)
}

// AnalysisRunner submits values and uploads reports.
type AnalysisRunner interface {
	Analyze(ctx context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error)
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*domain.UploadResult, error)
}

// HistoryReader lists and reopens past analyses.
type HistoryReader interface {
	List(ctx context.Context) ([]domain.HistoryEntry, error)
	Open(ctx context.Context, id string) (*domain.Report, error)
	Export(ctx context.Context, w io.Writer) error
}

// SessionState exposes the locally persisted session.
type SessionState interface {
	IsAuthenticated(ctx context.Context) bool
	Token(ctx context.Context) (string, error)
	User(ctx context.Context) (*domain.User, error)
	Language(ctx context.Context, fallback string) string
	SetLanguage(ctx context.Context, code string) error
}

// SpeechNarrator reads analyses aloud.
type SpeechNarrator interface {
	Speak(ctx context.Context, result domain.AnalysisResult, language string) error
	Stop()
	Status() domain.SpeechStatus
}
