package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
)

// DefaultUploadMaxBytes matches the backend's MAX_CONTENT_LENGTH.
const DefaultUploadMaxBytes int64 = 16 << 20

var allowedUploadTypes = map[string]string{
	"image/jpeg":      "image/jpeg",
	"image/jpg":       "image/jpeg",
	"image/png":       "image/png",
	"application/pdf": "application/pdf",
}

// AnalysisObserver is told about every analysis the service returns.
type AnalysisObserver func(source string, result domain.AnalysisResult)

type AnalysisService struct {
	analyzer  ports.AnalysisBackend
	reports   ports.ReportBackend
	inspector ports.ReportInspector
	maxBytes  int64
	observer  AnalysisObserver
}

type AnalysisOptions struct {
	// Inspector is optional; nil skips content inspection.
	Inspector ports.ReportInspector
	MaxBytes  int64
	Observer  AnalysisObserver
}

func NewAnalysisService(
	analyzer ports.AnalysisBackend,
	reports ports.ReportBackend,
	opts AnalysisOptions,
) *AnalysisService {
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &AnalysisService{
		analyzer:  analyzer,
		reports:   reports,
		inspector: opts.Inspector,
		maxBytes:  maxBytes,
		observer:  opts.Observer,
	}
}

// Analyze submits values as-is. Ranges and completeness are the backend's call.
func (s *AnalysisService) Analyze(ctx context.Context, values domain.ParameterValues) (*domain.AnalyzeResponse, error) {
	if values == nil {
		values = domain.ParameterValues{}
	}
	resp, err := s.analyzer.Analyze(ctx, values)
	if err != nil {
		return nil, fmt.Errorf("analyze parameters: %w", err)
	}
	if s.observer != nil {
		s.observer("manual", resp.Analysis)
	}
	return resp, nil
}

// Upload pre-checks type, size and readability before anything leaves the process.
func (s *AnalysisService) Upload(
	ctx context.Context,
	filename, contentType string,
	body io.Reader,
) (*domain.UploadResult, error) {
	filename = sanitizeFilename(filename)
	mediaType, err := uploadMediaType(filename, contentType)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("empty file"))
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("file too large: limit is %d bytes", s.maxBytes))
	}
	if s.inspector != nil {
		if err := s.inspector.Inspect(filename, mediaType, data); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "upload", err)
		}
	}

	result, err := s.reports.Upload(ctx, filename, mediaType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("upload report: %w", err)
	}
	return result, nil
}

func uploadMediaType(filename, contentType string) (string, error) {
	candidate := strings.TrimSpace(contentType)
	if candidate == "" || candidate == "application/octet-stream" {
		candidate = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if parsed, _, err := mime.ParseMediaType(candidate); err == nil {
		candidate = parsed
	}
	normalized, ok := allowedUploadTypes[strings.ToLower(candidate)]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "upload", fmt.Errorf("unsupported file type %q", contentType))
	}
	return normalized, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "/" {
		return "report.bin"
	}
	return base
}

// ParseParameterInput mirrors manual entry: anything that is not a number
// becomes 0. Blank fields are omitted.
func ParseParameterInput(raw map[string]string) domain.ParameterValues {
	values := make(domain.ParameterValues, len(raw))
	for name, text := range raw {
		name = strings.TrimSpace(name)
		text = strings.TrimSpace(text)
		if name == "" || text == "" {
			continue
		}
		values[name] = parseFloatPrefix(text)
	}
	return values
}

// parseFloatPrefix reads the longest decimal prefix, so "13.5 g/dL" is 13.5.
// Values that overflow a float64 become 0.
func parseFloatPrefix(text string) float64 {
	end := floatPrefixLen(text)
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(text[:end], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// floatPrefixLen scans [+-]digits[.digits][(e|E)[+-]digits] once and returns
// the length of the longest valid prefix, or 0.
func floatPrefixLen(text string) int {
	i := 0
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		i++
	}
	digits := 0
	for i < len(text) && isDigit(text[i]) {
		i++
		digits++
	}
	if i < len(text) && text[i] == '.' {
		i++
		for i < len(text) && isDigit(text[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < len(text) && (text[j] == '+' || text[j] == '-') {
			j++
		}
		start := j
		for j < len(text) && isDigit(text[j]) {
			j++
		}
		if j > start {
			end = j
		}
	}
	return end
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
