package core

import (
	"fmt"
	"strings"
)

// Error is a structured error carrying a stable machine-readable code and
// optional detail fields. Use cases join it with their sentinel errors so
// boundaries can match on either.
type Error struct {
	Err     error
	Code    string
	Details map[string]any
}

func NewError(err error, code string, details map[string]any) *Error {
	return &Error{Err: err, Code: code, Details: details}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err.Error())
	}
	for k, v := range e.Details {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
