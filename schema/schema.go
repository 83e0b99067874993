// Package schema is the validation engine behind the adapter's parameter
// pipeline. A route may declare at most one Schema each for its path, query
// and body inputs; validation failures carry a machine-readable issue list
// that the adapter echoes to clients verbatim.
package schema

import (
	"fmt"
	"strings"
)

// Issue is a single per-field validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is a structured validation failure. Issues may be empty when the
// input could not be decoded into the expected shape at all.
type Error struct {
	Message string
	Issues  []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", iss.Path, iss.Message))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// Schema validates an extracted input value. On success it returns the
// validated value, which may be a typed transformation of the input (for
// struct schemas, the decoded struct). On failure it returns a *Error.
type Schema interface {
	Validate(v any) (any, error)
}

// Func adapts a plain function into a Schema.
type Func func(v any) (any, error)

func (f Func) Validate(v any) (any, error) { return f(v) }
