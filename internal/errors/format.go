package errors

import (
	"fmt"
	"strings"
)

// Format renders the error for terminal output: code and message first, then
// detail, hint, and the wrapped cause when present.
func (e *Error) Format() string {
	var b strings.Builder

	if e.Code != "" {
		fmt.Fprintf(&b, "ERROR %s: %s\n", e.Code, e.Message)
	} else {
		fmt.Fprintf(&b, "ERROR: %s\n", e.Message)
	}

	if e.Detail != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Detail)
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "\n  Caused by: %s\n", e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Hint: %s\n", e.Suggestion)
	}

	return b.String()
}
