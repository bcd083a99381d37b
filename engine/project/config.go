package project

import "github.com/nodeflow-io/nodeflow/engine/core"

// Context identifies the project an execution runs under. Ownership and
// quota enforcement live outside the orchestration core; this is carried
// for policy checks and audit logging.
type Context struct {
	ID   core.ID `json:"id"`
	Name string  `json:"name"`
}
