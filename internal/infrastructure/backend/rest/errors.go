package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/infrastructure/resilience"
)

const (
	networkErrorMessage     = "Network error"
	unavailableErrorMessage = "Service temporarily unavailable"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// DecodeHTTPError turns a non-2xx response into the single HTTPError shape,
// tagged with the semantic kind callers branch on.
func DecodeHTTPError(operation string, statusCode int, raw []byte) error {
	httpErr := &domain.HTTPError{
		StatusCode: statusCode,
		Message:    domain.DefaultErrorMessage,
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		httpErr.Code = strings.TrimSpace(envelope.Error)
		detail, _ := envelope.Detail.(string)
		switch {
		case strings.TrimSpace(envelope.Message) != "":
			httpErr.Message = strings.TrimSpace(envelope.Message)
		case httpErr.Code != "":
			httpErr.Message = httpErr.Code
		case strings.TrimSpace(detail) != "":
			httpErr.Message = strings.TrimSpace(detail)
		}
	}

	return domain.WrapError(kindForStatus(statusCode), operation, httpErr)
}

func kindForStatus(statusCode int) error {
	switch {
	case statusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case statusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case statusCode == http.StatusRequestTimeout,
		statusCode == http.StatusTooManyRequests,
		statusCode >= 500:
		return domain.ErrTemporary
	default:
		return domain.ErrInvalidInput
	}
}

// NetworkError reports a transport failure as a temporary HTTPError without status.
func NetworkError(operation string, err error) error {
	return domain.WrapError(domain.ErrTemporary, operation, fmt.Errorf("%w: %w", &domain.HTTPError{Message: networkErrorMessage}, err))
}

func decodeError(operation string, err error) error {
	return domain.WrapError(domain.ErrDecode, operation, err)
}

func classifyBackendError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{RecordFailure: false}
	}
	return resilience.ErrorClassification{RecordFailure: domain.IsKind(err, domain.ErrTemporary)}
}

func wrapCircuitError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, fmt.Errorf("%w: %w", &domain.HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    unavailableErrorMessage,
		}, err))
	}
	return err
}
