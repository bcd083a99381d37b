package execrouter

import (
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/execution/uc"
)

// ExecuteWorkflowRequest is the body of a manual execution request.
type ExecuteWorkflowRequest struct {
	Input   core.Input     `json:"input"`
	Options ExecuteOptions `json:"options"`
}

// ExecuteOptions is the options bundle controlling partial execution,
// resume and trigger injection.
type ExecuteOptions struct {
	DestinationNode string       `json:"destination_node,omitempty"`
	ExecutionID     string       `json:"execution_id,omitempty"`
	StartNodes      []string     `json:"start_nodes,omitempty"`
	DirtyNodes      []string     `json:"dirty_nodes,omitempty"`
	TriggerData     *TriggerData `json:"trigger_data,omitempty"`
	PushRef         string       `json:"push_ref,omitempty"`
}

// TriggerData names a trigger node and the literal payload to inject.
type TriggerData struct {
	Name    string      `json:"name" binding:"required"`
	Payload core.Output `json:"payload"`
}

// ExecuteWorkflowResponse is the execution handle returned to callers.
// Status is present only for executions suspended waiting on a webhook.
type ExecuteWorkflowResponse struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status,omitempty"`
}

func (r *ExecuteWorkflowRequest) toInput(workflowID core.ID) *uc.ExecuteInput {
	in := &uc.ExecuteInput{
		WorkflowID:      workflowID,
		Input:           r.Input,
		DestinationNode: r.Options.DestinationNode,
		ExecutionID:     core.ID(r.Options.ExecutionID),
		StartNodes:      r.Options.StartNodes,
		DirtyNodes:      r.Options.DirtyNodes,
		PushRef:         r.Options.PushRef,
	}
	if r.Options.TriggerData != nil {
		in.TriggerData = &execution.TriggerSpec{
			Name:    r.Options.TriggerData.Name,
			Payload: r.Options.TriggerData.Payload,
		}
	}
	return in
}
