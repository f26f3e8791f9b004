package restclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
	"github.com/edumate/edumate-orchestrator/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "http status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("%s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("%s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func newHTTPStatusError(operation string, resp *http.Response) *HTTPStatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Classify decides whether the executor retries a failed attempt.
func Classify(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return resilience.Verdict{Retry: true, CountsAgainst: true}
		}
		return resilience.Verdict{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retry: true, CountsAgainst: true}
	}

	return resilience.Verdict{CountsAgainst: true}
}

func mapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		kind := kindForStatus(statusErr.StatusCode)
		if isRetryableHTTPStatus(statusErr.StatusCode) {
			return fmt.Errorf("%s: %w: %w: %w", operation, kind, domain.ErrTemporary, err)
		}
		return domain.WrapError(kind, operation, err)
	}

	if resilience.IsCircuitOpen(err) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrTransport, domain.ErrTemporary, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w: %w", operation, domain.ErrTransport, domain.ErrTemporary, err)
	}
	return domain.WrapError(domain.ErrTransport, operation, err)
}

func kindForStatus(statusCode int) error {
	switch statusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	default:
		return domain.ErrServer
	}
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
