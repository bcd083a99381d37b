package uc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/project"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

func errorWorkflow() *workflow.Config {
	return &workflow.Config{
		ID:   "wf-errors",
		Name: "on failure",
		Nodes: []workflow.Node{
			{Name: "OnError", Type: node.TypeErrorTrigger, TypeVersion: 1},
			{Name: "Notify", Type: "nodeflow.noop", TypeVersion: 1},
		},
		Connections: map[string][]string{
			"OnError": {"Notify"},
		},
	}
}

func failureInput() *HandleErrorInput {
	return &HandleErrorInput{
		ErrorWorkflowID: "wf-errors",
		Failure: FailureReport{
			WorkflowID:       "wf-broken",
			ExecutionID:      "exec-broken",
			LastNodeExecuted: "Crashy",
			Message:          "boom",
			Stack:            "Crashy <- A <- T",
		},
		Project: project.Context{ID: "proj-1", Name: "default"},
	}
}

func TestHandleErrorWorkflow_Execute(t *testing.T) {
	t.Run("Should dispatch the error workflow seeded from its error trigger", func(t *testing.T) {
		engine := &fakeEngine{}
		execRepo := newFakeExecutionRepo()
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(errorWorkflow()), execRepo, engine, &fakePolicy{},
		)
		uc.Execute(context.Background(), failureInput())

		require.Len(t, engine.ran, 1)
		payload := engine.ran[0]
		assert.Equal(t, execution.ModeError, payload.Mode)
		assert.Equal(t, []string{"OnError"}, payload.StartNodes)
		assert.Equal(t, core.ID("exec-broken"), payload.ParentExecutionID)
		require.Len(t, payload.ExecutionStack, 1)
		assert.Equal(t, "OnError", payload.ExecutionStack[0].NodeName)
		assert.Equal(t, core.Output{
			"workflow_id": "wf-broken",
			"node":        "Crashy",
			"message":     "boom",
			"stack":       "Crashy <- A <- T",
		}, payload.ExecutionStack[0].Data)
	})
	t.Run("Should do nothing when the error workflow is gone", func(t *testing.T) {
		engine := &fakeEngine{}
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(), newFakeExecutionRepo(), engine, &fakePolicy{},
		)
		uc.Execute(context.Background(), failureInput())
		assert.Empty(t, engine.ran)
	})
	t.Run("Should do nothing when the workflow lacks an error trigger", func(t *testing.T) {
		wf := errorWorkflow()
		wf.Nodes[0].Disabled = true
		engine := &fakeEngine{}
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine, &fakePolicy{},
		)
		uc.Execute(context.Background(), failureInput())
		assert.Empty(t, engine.ran)
	})
	t.Run("Should record a failed execution when policy rejects the caller", func(t *testing.T) {
		engine := &fakeEngine{}
		execRepo := newFakeExecutionRepo()
		policyErr := fmt.Errorf("%w: caller not allowed", execution.ErrPolicyRejected)
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(errorWorkflow()), execRepo, engine, &fakePolicy{err: policyErr},
		)
		uc.Execute(context.Background(), failureInput())

		assert.Empty(t, engine.ran, "rejected invocations must never reach the run engine")
		require.Len(t, execRepo.created, 1)
		rec := execRepo.created[0]
		assert.Equal(t, core.ID("wf-errors"), rec.WorkflowID)
		assert.Equal(t, core.StatusFailed, rec.Status)
		assert.Equal(t, execution.ModeError, rec.Mode)
		assert.False(t, rec.Finished)
		require.NotNil(t, rec.StoppedAt)
		require.NotNil(t, rec.Data)
		assert.Equal(t, "Crashy", rec.Data.LastNodeExecuted)
		assert.Contains(t, rec.Data.ErrorMessage, "caller not allowed")
	})
	t.Run("Should swallow run engine failures", func(t *testing.T) {
		engine := &fakeEngine{runErr: errors.New("queue full")}
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(errorWorkflow()), newFakeExecutionRepo(), engine, &fakePolicy{},
		)
		assert.NotPanics(t, func() {
			uc.Execute(context.Background(), failureInput())
		})
	})
	t.Run("Should swallow unexpected policy failures", func(t *testing.T) {
		engine := &fakeEngine{}
		execRepo := newFakeExecutionRepo()
		uc := NewHandleErrorWorkflow(
			newFakeWorkflowRepo(errorWorkflow()), execRepo, engine,
			&fakePolicy{err: errors.New("policy store down")},
		)
		assert.NotPanics(t, func() {
			uc.Execute(context.Background(), failureInput())
		})
		assert.Empty(t, engine.ran)
		assert.Empty(t, execRepo.created)
	})
}
