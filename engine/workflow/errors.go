package workflow

import "errors"

// ErrNotFound is returned when a workflow id does not resolve.
var ErrNotFound = errors.New("workflow not found")
