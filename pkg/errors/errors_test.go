package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name          string
		field         string
		message       string
		value         interface{}
		expectedError string
	}{
		{
			name:          "with field",
			field:         "absolute_expiration",
			message:       "must be in the future",
			value:         "2001-01-01T00:00:00Z",
			expectedError: "validation error: absolute_expiration: must be in the future",
		},
		{
			name:          "without field",
			field:         "",
			message:       "invalid input",
			value:         nil,
			expectedError: "validation error: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)
			if err.Error() != tt.expectedError {
				t.Errorf("Expected error %q, got %q", tt.expectedError, err.Error())
			}
			if err.Code() != CodeValidation {
				t.Errorf("Expected code %q, got %q", CodeValidation, err.Code())
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("Expected validation error to match ErrInvalidInput")
			}
			if !IsValidation(fmt.Errorf("wrapped: %w", err)) {
				t.Error("Expected wrapped validation error to be detected")
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("cache", "sessions")
	if got := err.Error(); got != "cache 'sessions' not found" {
		t.Errorf("unexpected message %q", got)
	}
	if !IsNotFound(err) {
		t.Error("Expected IsNotFound to be true")
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, StatusCode(err))
	}
}

func TestServiceError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3320: connection refused")
	err := fmt.Errorf("health: %w", NewServiceError("olric", "health check put failed", cause))

	if !IsServiceUnavailable(err) {
		t.Error("Expected IsServiceUnavailable on wrapped service error")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected service error to unwrap to its cause")
	}
	if GetErrorCode(err) != CodeServiceUnavailable {
		t.Errorf("Expected code %q, got %q", CodeServiceUnavailable, GetErrorCode(err))
	}
	if IsServiceUnavailable(errors.New("boom")) {
		t.Error("plain error should not be a service error")
	}

	httpErr := ToHTTPError(err, "req-2")
	if httpErr.Status != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, httpErr.Status)
	}
	if httpErr.Details["service"] != "olric" {
		t.Errorf("Expected service detail, got %v", httpErr.Details)
	}
}

func TestConflictError(t *testing.T) {
	err := NewConflictError("cache", "name", "sessions")
	if got := err.Error(); got != "cache with name='sessions' already exists" {
		t.Errorf("unexpected message %q", got)
	}
	if !IsConflict(fmt.Errorf("register: %w", err)) {
		t.Error("Expected IsConflict on wrapped error")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("ttl", "must be positive", "-1s"), http.StatusBadRequest},
		{"conflict", NewConflictError("cache", "", ""), http.StatusConflict},
		{"service", NewServiceError("olric", "", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"too large", NewPayloadTooLargeError(1024, nil), http.StatusRequestEntityTooLarge},
		{"cancelled", fmt.Errorf("get: %w", context.Canceled), 499},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusCode(tt.err); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteHTTPError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHTTPError(w, NewValidationError("expires_at", "must be in the future", nil), "req-1")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"code":"VALIDATION_ERROR"`, `"field":"expires_at"`, `"trace_id":"req-1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %s, got %s", want, body)
		}
	}
}

func TestIsClientError(t *testing.T) {
	if !IsClientError(CodeValidation) {
		t.Error("validation should be a client error")
	}
	if IsClientError(CodeServiceUnavailable) {
		t.Error("service unavailable should not be a client error")
	}
}
