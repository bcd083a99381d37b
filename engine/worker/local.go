package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// Local is the in-process run-engine adapter. It accepts normalized
// payloads, records the execution and answers webhook-readiness probes.
// Node execution and data passing belong to the runner loop behind it,
// not to the orchestration core.
type Local struct {
	executions execution.Repository
	registry   node.Registry
}

func NewLocal(executions execution.Repository, registry node.Registry) *Local {
	return &Local{executions: executions, registry: registry}
}

func (e *Local) Run(ctx context.Context, payload *execution.Payload) (core.ID, error) {
	exec := &execution.Execution{
		ID:                core.MustNewID(),
		WorkflowID:        payload.Workflow.ID,
		ParentExecutionID: payload.ParentExecutionID,
		Status:            core.StatusRunning,
		Mode:              payload.Mode,
		StartedAt:         time.Now().UTC(),
		Data: &execution.Data{
			RunData: payload.RunData,
		},
	}
	if err := e.executions.Create(ctx, exec); err != nil {
		return "", fmt.Errorf("recording execution: %w", err)
	}
	logger.FromContext(ctx).Debug("execution accepted by run engine",
		"exec_id", exec.ID,
		"workflow_id", payload.Workflow.ID,
		"destination_node", payload.DestinationNode,
		"dirty_nodes", payload.DirtyNodeNames)
	return exec.ID, nil
}

// NeedsWebhook reports whether the payload's workflow depends on an
// external webhook event: at least one enabled webhook-category node
// with no pin data standing in for it.
func (e *Local) NeedsWebhook(_ context.Context, payload *execution.Payload) (bool, error) {
	for i := range payload.Workflow.Nodes {
		n := &payload.Workflow.Nodes[i]
		if n.Disabled {
			continue
		}
		desc, err := e.registry.Resolve(n.Type, n.TypeVersion)
		if err != nil || desc.Kind != node.KindWebhook {
			continue
		}
		if _, pinned := payload.PinData[n.Name]; !pinned {
			return true, nil
		}
	}
	return false, nil
}
