package leads

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoTransport is returned when delivery is configured but no sender was built.
var ErrNoTransport = errors.New("leads: email transport unavailable")

// Issue codes.
const (
	CodeInvalidType   = "invalid_type"
	CodeTooSmall      = "too_small"
	CodeInvalidString = "invalid_string"
)

// Issue is one field-level violation.
type Issue struct {
	Code    string   `json:"code"`
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// Field returns the offending field name, or "" for a root-level issue.
func (i Issue) Field() string {
	if len(i.Path) == 0 {
		return ""
	}
	return i.Path[0]
}

// ParseError means the body was not a JSON document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "leads: parse request: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError carries every violated field, not just the first.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if f := issue.Field(); f != "" {
			parts = append(parts, f+": "+issue.Message)
		} else {
			parts = append(parts, issue.Message)
		}
	}
	return "leads: invalid input: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in schema order.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issue.Field())
	}
	return out
}

// ConfigurationError means the process cannot deliver until reconfigured.
type ConfigurationError struct {
	Missing map[string]bool
}

func (e *ConfigurationError) Error() string {
	var names []string
	for name, absent := range e.Missing {
		if absent {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return fmt.Sprintf("leads: delivery not configured (missing %s)", strings.Join(names, ", "))
}

// DeliveryError wraps a transport failure. It is never retried.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return e.Err.Error() }
func (e *DeliveryError) Unwrap() error { return e.Err }
