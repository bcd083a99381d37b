package uc

import "errors"

var (
	// ErrWorkflowNotFound is returned when the workflow id does not resolve.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrExecutionNotFound is returned when a resume-execution id does not resolve.
	ErrExecutionNotFound = errors.New("execution not found")
	// ErrNodeNotFound is returned when a caller-named node is absent from the graph.
	ErrNodeNotFound = errors.New("node not found in workflow")
	// ErrNoActivatorNodes is returned when a full-input execution finds no
	// trigger or webhook node to seed from.
	ErrNoActivatorNodes = errors.New("workflow has no trigger or webhook nodes")
	// ErrInvalidInput is returned for structurally invalid requests.
	ErrInvalidInput = errors.New("invalid input")
)
