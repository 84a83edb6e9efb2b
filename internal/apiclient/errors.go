package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ErrUnauthorized matches any *ResponseError carrying a 401 status.
var ErrUnauthorized = errors.New("unauthorized")

// ResponseError is returned for every non-2xx backend response.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Is reports ErrUnauthorized for 401 responses.
func (e *ResponseError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Detail extracts a human-readable message from the response body. It
// understands {"detail": ...}, {"error": ...} and {"message": ...} objects as
// well as field error maps ({"username": ["taken"]}).
func (e *ResponseError) Detail() string {
	if len(e.Body) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message", "non_field_errors"} {
		if raw, ok := fields[key]; ok {
			if s := firstString(raw); s != "" {
				return s
			}
		}
	}

	var parts []string
	for key, raw := range fields {
		if s := firstString(raw); s != "" {
			parts = append(parts, key+": "+s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	// Map iteration order is random; keep the message stable.
	slices.Sort(parts)
	return strings.Join(parts, "; ")
}

// firstString decodes raw as a string or the first element of a string list.
func firstString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

// Outcome classifies the result of a backend call for navigation decisions.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnauthorized
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthorized:
		return "unauthorized"
	default:
		return "failure"
	}
}

// Classify maps an error returned by Client to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	default:
		return OutcomeFailure
	}
}
