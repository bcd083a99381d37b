package execution

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// Engine is the underlying run engine. It owns node execution, data
// passing and execution-record bookkeeping; the orchestration core only
// decides what to hand it.
type Engine interface {
	// Run accepts a normalized payload and returns the id of the created
	// execution record.
	Run(ctx context.Context, payload *Payload) (core.ID, error)
	// NeedsWebhook reports whether the workflow's webhook-class nodes are
	// registered and the execution must suspend for an external event.
	NeedsWebhook(ctx context.Context, payload *Payload) (bool, error)
}

// PolicyChecker verifies that a failing workflow may invoke another
// workflow as a sub-workflow.
type PolicyChecker interface {
	Check(ctx context.Context, target *workflow.Config, callerWorkflowID core.ID, failedNode string) error
}
