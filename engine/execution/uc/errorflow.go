package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/project"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// -----------------------------------------------------------------------------
// HandleErrorWorkflow
// -----------------------------------------------------------------------------

// FailureReport describes the original failure handed to the error
// workflow's trigger node.
type FailureReport struct {
	WorkflowID       core.ID `json:"workflow_id"`
	ExecutionID      core.ID `json:"execution_id,omitempty"`
	LastNodeExecuted string  `json:"last_node_executed,omitempty"`
	Message          string  `json:"message"`
	Stack            string  `json:"stack,omitempty"`
}

// HandleErrorInput carries everything needed to dispatch an error
// workflow on behalf of a failed execution.
type HandleErrorInput struct {
	ErrorWorkflowID core.ID
	Failure         FailureReport
	Project         project.Context
}

// HandleErrorWorkflow locates and runs the designated error-handling
// workflow for a failure that happened elsewhere. It runs during another
// failure's handling, so it must never propagate anything to its caller:
// every exit path funnels through one logging boundary.
type HandleErrorWorkflow struct {
	workflows   workflow.Repository
	executions  execution.Repository
	engine      execution.Engine
	policy      execution.PolicyChecker
	triggerType string
}

func NewHandleErrorWorkflow(
	workflows workflow.Repository,
	executions execution.Repository,
	engine execution.Engine,
	policy execution.PolicyChecker,
) *HandleErrorWorkflow {
	return &HandleErrorWorkflow{
		workflows:   workflows,
		executions:  executions,
		engine:      engine,
		policy:      policy,
		triggerType: node.TypeErrorTrigger,
	}
}

// Execute dispatches the error workflow best-effort. It never returns an
// error and never panics out.
func (uc *HandleErrorWorkflow) Execute(ctx context.Context, in *HandleErrorInput) {
	log := logger.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("error workflow dispatch panicked",
				"error_workflow_id", in.ErrorWorkflowID,
				"panic", r)
		}
	}()
	if err := uc.run(ctx, in); err != nil {
		log.Error("error workflow dispatch failed",
			"error_workflow_id", in.ErrorWorkflowID,
			"failed_workflow_id", in.Failure.WorkflowID,
			"project", in.Project.Name,
			"error", err)
	}
}

func (uc *HandleErrorWorkflow) run(ctx context.Context, in *HandleErrorInput) error {
	log := logger.FromContext(ctx)
	errWf, err := uc.workflows.GetByID(ctx, in.ErrorWorkflowID)
	if errors.Is(err, workflow.ErrNotFound) {
		log.Warn("designated error workflow does not exist",
			"error_workflow_id", in.ErrorWorkflowID,
			"failed_workflow_id", in.Failure.WorkflowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading error workflow %s: %w", in.ErrorWorkflowID, err)
	}
	if err := uc.policy.Check(ctx, errWf, in.Failure.WorkflowID, in.Failure.LastNodeExecuted); err != nil {
		if errors.Is(err, execution.ErrPolicyRejected) {
			return uc.recordPolicyRejection(ctx, errWf, in, err)
		}
		return fmt.Errorf("checking sub-workflow policy: %w", err)
	}
	trigger := uc.findErrorTrigger(errWf)
	if trigger == nil {
		log.Warn("error workflow has no error trigger node",
			"error_workflow_id", errWf.ID)
		return nil
	}
	payload := uc.buildErrorPayload(errWf, trigger, in)
	execID, err := uc.engine.Run(ctx, payload)
	if err != nil {
		return fmt.Errorf("delegating error workflow %s: %w", errWf.ID, err)
	}
	log.Info("error workflow dispatched",
		"error_workflow_id", errWf.ID,
		"exec_id", execID,
		"failed_workflow_id", in.Failure.WorkflowID)
	return nil
}

// recordPolicyRejection synthesizes a failed execution record so the
// rejection stays auditable. Nothing actually runs.
func (uc *HandleErrorWorkflow) recordPolicyRejection(
	ctx context.Context,
	errWf *workflow.Config,
	in *HandleErrorInput,
	cause error,
) error {
	now := time.Now().UTC()
	exec := &execution.Execution{
		ID:                core.MustNewID(),
		WorkflowID:        errWf.ID,
		ParentExecutionID: in.Failure.ExecutionID,
		Status:            core.StatusFailed,
		Mode:              execution.ModeError,
		Finished:          false,
		StartedAt:         now,
		StoppedAt:         &now,
		Data: &execution.Data{
			LastNodeExecuted: in.Failure.LastNodeExecuted,
			ErrorMessage:     cause.Error(),
		},
	}
	if err := uc.executions.Create(ctx, exec); err != nil {
		return fmt.Errorf("recording policy rejection: %w", err)
	}
	logger.FromContext(ctx).Warn("error workflow invocation rejected by policy",
		"error_workflow_id", errWf.ID,
		"failed_workflow_id", in.Failure.WorkflowID,
		"exec_id", exec.ID)
	return nil
}

func (uc *HandleErrorWorkflow) findErrorTrigger(wf *workflow.Config) *workflow.Node {
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if !n.Disabled && n.Type == uc.triggerType {
			return n
		}
	}
	return nil
}

func (uc *HandleErrorWorkflow) buildErrorPayload(
	errWf *workflow.Config,
	trigger *workflow.Node,
	in *HandleErrorInput,
) *execution.Payload {
	failure := core.Output{
		"workflow_id": in.Failure.WorkflowID.String(),
		"node":        in.Failure.LastNodeExecuted,
		"message":     in.Failure.Message,
		"stack":       in.Failure.Stack,
	}
	return &execution.Payload{
		Workflow:   errWf.Clone(),
		Mode:       execution.ModeError,
		StartNodes: []string{trigger.Name},
		ExecutionStack: []execution.StackEntry{
			{NodeName: trigger.Name, Data: failure},
		},
		ParentExecutionID: in.Failure.ExecutionID,
	}
}
