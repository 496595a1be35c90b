package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common reusable application errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrValidation          = errors.New("validation failed")
	ErrBadRequest          = errors.New("bad request")
	ErrServer              = errors.New("server error")
	ErrNetwork             = errors.New("network error")
	ErrRateLimited         = errors.New("too many requests")
	ErrSessionExpired      = errors.New("session expired or invalid")
	ErrDuplicateSubmission = errors.New("a request for this item is already in progress")
	ErrUnknownResource     = errors.New("unknown resource")
	ErrUnsupportedMutation = errors.New("unsupported mutation")
)

// FieldError is a single field-level validation failure reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

// APIError is a classified failure returned by the transport layer.
// Kind is one of the sentinels above and is what errors.Is matches against.
type APIError struct {
	Kind    error
	Status  int
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// FromStatus maps an HTTP status to its sentinel kind.
func FromStatus(status int, hasFields bool) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusBadRequest && hasFields:
		return ErrValidation
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first APIError in err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}

// Notices turns an error into the user-facing messages it should produce.
// Validation failures yield one message per field; everything else yields one.
func Notices(err error, subject string) []string {
	if err == nil {
		return nil
	}
	apiErr, _ := As(err)

	switch {
	case errors.Is(err, ErrValidation) && apiErr != nil && len(apiErr.Fields) > 0:
		out := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			out = append(out, f.String())
		}
		return out
	case errors.Is(err, ErrNetwork):
		return []string{"Unable to reach the server. Check your connection and try again."}
	case errors.Is(err, ErrUnauthorized):
		return []string{"Your session has expired. Please sign in again."}
	case errors.Is(err, ErrForbidden):
		return []string{"You do not have permission to perform this action."}
	case errors.Is(err, ErrNotFound):
		return []string{fmt.Sprintf("%s not found.", subject)}
	case errors.Is(err, ErrServer):
		return []string{"Something went wrong on the server. Please try again later."}
	case errors.Is(err, ErrDuplicateSubmission):
		return []string{ErrDuplicateSubmission.Error()}
	}

	if apiErr != nil && apiErr.Message != "" {
		return []string{apiErr.Message}
	}
	return []string{fmt.Sprintf("Request for %s failed.", subject)}
}
