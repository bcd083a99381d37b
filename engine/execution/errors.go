package execution

import "errors"

// ErrNotFound is returned when an execution id does not resolve.
var ErrNotFound = errors.New("execution not found")
