package amazon

import (
	"errors"
	"net/http"
	"strings"

	"bachatlist/internal/amazon"
	"bachatlist/internal/catalog"
	"bachatlist/internal/monitor"
)

// StatusFor maps a catalog or sync error to an HTTP status and a message
// safe to show an admin.
func StatusFor(err error) (int, string) {
	var (
		transport *amazon.TransportError
		apiErr    *amazon.APIError
	)

	switch {
	case errors.Is(err, monitor.ErrSyncInProgress):
		return http.StatusConflict, "A price sync is already running"
	case errors.Is(err, amazon.ErrNoActiveConfig):
		return http.StatusBadRequest, "No active Amazon configuration found"
	case errors.Is(err, amazon.ErrMissingCredentials):
		return http.StatusBadRequest, "Amazon API key is missing or invalid."
	case errors.Is(err, amazon.ErrEmptyKeywords):
		return http.StatusBadRequest, "Missing required parameter: keywords"
	case errors.Is(err, catalog.ErrMissingASIN):
		return http.StatusBadRequest, "Missing required field: asin"
	case errors.Is(err, catalog.ErrNoCategory):
		return http.StatusBadRequest, "No category found. Please provide a categoryId or ensure categories exist."
	case errors.Is(err, catalog.ErrNoASINs):
		return http.StatusBadRequest, "No ASINs found in the uploaded file"
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.As(err, &transport) && (transport.StatusCode == http.StatusForbidden || transport.StatusCode == http.StatusUnauthorized):
		return http.StatusForbidden, "Amazon PA-API access denied."
	case errors.As(err, &transport) && transport.StatusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "Amazon PA-API request limit reached, try again later."
	case errors.As(err, &apiErr) && hasCode(apiErr, "InvalidParameterValue"):
		return http.StatusBadRequest, "Invalid ASIN or parameters."
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func hasCode(e *amazon.APIError, code string) bool {
	for _, d := range e.Details {
		if strings.Contains(d.Code, code) {
			return true
		}
	}
	return false
}
