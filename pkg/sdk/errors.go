package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoUser is returned when a successful account response carries no user.
	ErrNoUser = errors.New("account response has no user")
	// ErrInvalidAccount is returned when the account payload fails validation.
	ErrInvalidAccount = errors.New("invalid account payload")
	// ErrUnknownRole is returned for a role outside the closed role set.
	ErrUnknownRole = errors.New("unknown role")
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %s: %s", http.StatusText(e.StatusCode), e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// newAPIError extracts the backend's {"message": ...} field when present.
// The backend sometimes sends an array of messages.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return apiErr
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil {
		apiErr.Message = single
		return apiErr
	}
	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil {
		apiErr.Message = strings.Join(many, "; ")
	}
	return apiErr
}
