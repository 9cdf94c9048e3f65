package sfapi

import (
	"fmt"
	"strings"
)

// APIError is a SOAP fault, an OAuth error, or an unexpected HTTP status
// returned by the remote org.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Code != "" && !strings.HasPrefix(msg, e.Code) {
		msg = e.Code + ": " + msg
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (HTTP %d)", msg, e.HTTPStatus)
	}
	return msg
}

// ResolutionError is returned when an org alias matches no profile.
type ResolutionError struct {
	Alias string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no org found for alias %q", e.Alias)
}
