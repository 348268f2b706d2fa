package oracle

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pageza/nutriwise/backend/internal/extract"
	"google.golang.org/api/googleapi"
)

const (
	msgInvalidKey = "Configuration error: Invalid API key"
	msgQuota      = "API quota exceeded. Please try again later."
	msgPermission = "API key does not have permission to access this model"
	msgNoContent  = "No response received from the oracle"
	msgTimeout    = "The oracle did not answer in time. Please try again."
	msgTransport  = "Oracle request failed"
)

// TransportFailure maps an error from Client.Generate onto the same Failure
// value the extractor produces. The raw error text goes into Details.
func TransportFailure(err error) *extract.Failure {
	if err == nil {
		return nil
	}
	return extract.NewFailure(extract.TransportFailure, transportMessage(err), err.Error())
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		return msgInvalidKey
	case errors.Is(err, ErrNoContent):
		return msgNoContent
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return msgQuota
		case http.StatusForbidden:
			return msgPermission
		case http.StatusUnauthorized:
			return msgInvalidKey
		}
	}

	text := err.Error()
	switch {
	case strings.Contains(text, "API key"), strings.Contains(text, "API_KEY_INVALID"):
		return msgInvalidKey
	case strings.Contains(strings.ToLower(text), "quota"), strings.Contains(text, "RESOURCE_EXHAUSTED"):
		return msgQuota
	case strings.Contains(text, "PERMISSION_DENIED"):
		return msgPermission
	case strings.Contains(text, "DeadlineExceeded"), strings.Contains(text, "deadline exceeded"):
		return msgTimeout
	}
	return msgTransport
}
