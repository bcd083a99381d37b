package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// -----------------------------------------------------------------------------
// Execute
// -----------------------------------------------------------------------------

// ExecuteInput is the options bundle for one manual execution request.
type ExecuteInput struct {
	WorkflowID      core.ID
	Input           core.Input
	DestinationNode string
	// ExecutionID resumes from a prior execution's cached run data.
	ExecutionID core.ID
	// StartNodes are explicit start nodes for partial executions.
	StartNodes []string
	// DirtyNodes name cached outputs that must be discarded and recomputed.
	DirtyNodes []string
	// TriggerData injects a literal payload for a named trigger node.
	TriggerData *execution.TriggerSpec
	// PushRef correlates the execution with a push channel session.
	PushRef string
}

// ExecuteOutput is the execution handle returned to the caller. Status is
// set only when the execution was suspended waiting for an external
// event; started executions return the id alone.
type ExecuteOutput struct {
	ExecutionID core.ID
	Status      core.StatusType
}

// Execute decides which subset of the workflow graph must run, from which
// starting point, and whether the run must suspend for a webhook event,
// then hands the normalized payload to the run engine.
type Execute struct {
	workflows  workflow.Repository
	executions execution.Repository
	registry   node.Registry
	engine     execution.Engine
	builder    *payloadBuilder
}

func NewExecute(
	workflows workflow.Repository,
	executions execution.Repository,
	registry node.Registry,
	engine execution.Engine,
) *Execute {
	return &Execute{
		workflows:  workflows,
		executions: executions,
		registry:   registry,
		engine:     engine,
		builder:    &payloadBuilder{registry: registry},
	}
}

func (uc *Execute) Execute(ctx context.Context, in *ExecuteInput) (*ExecuteOutput, error) {
	if in == nil || in.WorkflowID.IsZero() {
		return nil, errors.Join(
			ErrInvalidInput,
			core.NewError(nil, "BAD_REQUEST", map[string]any{"reason": "workflow ID is required"}),
		)
	}
	log := logger.FromContext(ctx)
	wf, err := uc.loadWorkflow(ctx, in.WorkflowID)
	if err != nil {
		return nil, err
	}
	if in.DestinationNode != "" && wf.GetNode(in.DestinationNode) == nil {
		return nil, errors.Join(
			ErrNodeNotFound,
			core.NewError(nil, "BAD_REQUEST", map[string]any{"destination_node": in.DestinationNode}),
		)
	}
	prior, err := uc.loadPriorExecution(ctx, in.ExecutionID)
	if err != nil {
		return nil, err
	}
	payload, err := uc.builder.build(wf, in, prior)
	if err != nil {
		return nil, err
	}
	uc.resolvePinnedActivator(payload)
	if uc.shouldCheckWebhook(payload) {
		waiting, err := uc.engine.NeedsWebhook(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("checking webhook readiness: %w", err)
		}
		if waiting {
			return uc.createWaitingHandle(ctx, payload)
		}
	}
	// Manual runs never execute as the persisted active workflow. The
	// payload holds a private copy, so this never leaks to the store.
	payload.Workflow.Active = false
	execID, err := uc.engine.Run(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("delegating execution of workflow %s: %w", in.WorkflowID, err)
	}
	log.Info("workflow execution started",
		"workflow_id", in.WorkflowID,
		"exec_id", execID,
		"strategy", classify(in, prior).String())
	return &ExecuteOutput{ExecutionID: execID}, nil
}

func (uc *Execute) loadWorkflow(ctx context.Context, id core.ID) (*workflow.Config, error) {
	wf, err := uc.workflows.GetByID(ctx, id)
	if errors.Is(err, workflow.ErrNotFound) {
		return nil, errors.Join(
			ErrWorkflowNotFound,
			core.NewError(err, "NOT_FOUND", map[string]any{"workflow_id": id}),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading workflow %s: %w", id, err)
	}
	return wf, nil
}

func (uc *Execute) loadPriorExecution(ctx context.Context, id core.ID) (*execution.Execution, error) {
	if id.IsZero() {
		return nil, nil
	}
	prior, err := uc.executions.GetByID(ctx, id, true)
	if errors.Is(err, execution.ErrNotFound) {
		return nil, errors.Join(
			ErrExecutionNotFound,
			core.NewError(err, "NOT_FOUND", map[string]any{"execution_id": id}),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading prior execution %s: %w", id, err)
	}
	return prior, nil
}

// resolvePinnedActivator runs the selector over the assembled payload. A
// caller-specified trigger override always wins; a computed activator
// fills the gap otherwise.
func (uc *Execute) resolvePinnedActivator(payload *execution.Payload) {
	if payload.TriggerToStartFrom != nil {
		return
	}
	activator := selectPinnedActivator(
		payload.Workflow,
		uc.registry,
		payload.PinData,
		payload.StartNodes,
		payload.DestinationNode,
	)
	if activator == nil {
		return
	}
	payload.TriggerToStartFrom = &execution.TriggerSpec{
		Name:    activator.Name,
		Payload: payload.PinData[activator.Name],
	}
}

// shouldCheckWebhook limits the webhook-readiness probe to executions
// with no resolved activator that are missing any of start nodes, run
// data or a destination: without all three the workflow may genuinely
// depend on an external event.
func (uc *Execute) shouldCheckWebhook(payload *execution.Payload) bool {
	return payload.TriggerToStartFrom == nil &&
		(len(payload.StartNodes) == 0 ||
			len(payload.RunData) == 0 ||
			payload.DestinationNode == "")
}

// createWaitingHandle persists a suspended execution record without ever
// touching the run engine's execute path.
func (uc *Execute) createWaitingHandle(
	ctx context.Context,
	payload *execution.Payload,
) (*ExecuteOutput, error) {
	exec := &execution.Execution{
		ID:         core.MustNewID(),
		WorkflowID: payload.Workflow.ID,
		Status:     core.StatusWaiting,
		Mode:       payload.Mode,
		Finished:   false,
		StartedAt:  time.Now().UTC(),
	}
	if err := uc.executions.Create(ctx, exec); err != nil {
		return nil, fmt.Errorf("creating waiting execution record: %w", err)
	}
	logger.FromContext(ctx).Info("workflow execution waiting for webhook",
		"workflow_id", payload.Workflow.ID,
		"exec_id", exec.ID)
	return &ExecuteOutput{ExecutionID: exec.ID, Status: core.StatusWaiting}, nil
}
