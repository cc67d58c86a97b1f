package amazon

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredentials is returned before any network call when the
	// credential set is incomplete.
	ErrMissingCredentials = errors.New("amazon: missing credentials")
	ErrEmptyKeywords      = errors.New("amazon: keywords are required")
	// ErrNoActiveConfig is returned when no active credential set is stored.
	ErrNoActiveConfig = errors.New("no active Amazon configuration found")
)

// TransportError is a non-2xx answer from an external HTTP API.
type TransportError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s error: %d - %s", e.Service, e.StatusCode, e.Body)
}

// APIError carries the Errors array PA-API returns inside a 2xx body.
type APIError struct {
	Details []ErrorDetail
}

type ErrorDetail struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

func (e *APIError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Code+": "+d.Message)
	}
	return "amazon api: " + strings.Join(parts, "; ")
}
