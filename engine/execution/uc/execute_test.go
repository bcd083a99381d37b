package uc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

func newExecuteUC(
	wfRepo workflow.Repository,
	execRepo execution.Repository,
	engine execution.Engine,
) *Execute {
	return NewExecute(wfRepo, execRepo, testRegistry(), engine)
}

func TestExecute_Validation(t *testing.T) {
	uc := newExecuteUC(newFakeWorkflowRepo(), newFakeExecutionRepo(), &fakeEngine{})
	t.Run("Should reject a nil input", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
	t.Run("Should reject a missing workflow ID", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &ExecuteInput{})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
	t.Run("Should surface an unknown workflow", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "nope"})
		require.ErrorIs(t, err, ErrWorkflowNotFound)
	})
	t.Run("Should surface an unknown destination node", func(t *testing.T) {
		uc := newExecuteUC(newFakeWorkflowRepo(manualAndChain()), newFakeExecutionRepo(), &fakeEngine{})
		_, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID:      "wf-manual",
			DestinationNode: "ghost",
		})
		require.ErrorIs(t, err, ErrNodeNotFound)
	})
	t.Run("Should surface an unknown prior execution", func(t *testing.T) {
		uc := newExecuteUC(newFakeWorkflowRepo(manualAndChain()), newFakeExecutionRepo(), &fakeEngine{})
		_, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID:  "wf-manual",
			ExecutionID: "gone",
		})
		require.ErrorIs(t, err, ErrExecutionNotFound)
	})
}

func TestExecute_Run(t *testing.T) {
	t.Run("Should run the workflow and return the engine's execution id", func(t *testing.T) {
		engine := &fakeEngine{nextID: "exec-42"}
		uc := newExecuteUC(newFakeWorkflowRepo(manualAndChain()), newFakeExecutionRepo(), engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-manual"})
		require.NoError(t, err)
		assert.Equal(t, core.ID("exec-42"), out.ExecutionID)
		assert.Empty(t, out.Status)
		require.Len(t, engine.ran, 1)
	})
	t.Run("Should always run the private copy as inactive", func(t *testing.T) {
		wf := manualAndChain()
		wf.Active = true
		engine := &fakeEngine{}
		uc := newExecuteUC(newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine)
		_, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-manual"})
		require.NoError(t, err)
		require.Len(t, engine.ran, 1)
		assert.False(t, engine.ran[0].Workflow.Active)
		assert.True(t, wf.Active, "stored workflow must keep its activation state")
	})
	t.Run("Should resolve a pinned activator into the payload", func(t *testing.T) {
		wf := manualAndChain()
		wf.PinData = workflow.PinData{"M": {"seed": true}}
		engine := &fakeEngine{}
		uc := newExecuteUC(newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine)
		_, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-manual"})
		require.NoError(t, err)
		require.Len(t, engine.ran, 1)
		trigger := engine.ran[0].TriggerToStartFrom
		require.NotNil(t, trigger)
		assert.Equal(t, "M", trigger.Name)
		assert.Equal(t, core.Output{"seed": true}, trigger.Payload)
	})
	t.Run("Should keep a caller trigger override over the computed activator", func(t *testing.T) {
		wf := manualAndChain()
		wf.PinData = workflow.PinData{"M": {"seed": true}}
		engine := &fakeEngine{}
		uc := newExecuteUC(newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine)
		_, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID:  "wf-manual",
			TriggerData: &execution.TriggerSpec{Name: "M", Payload: core.Output{"event": "x"}},
		})
		require.NoError(t, err)
		require.Len(t, engine.ran, 1)
		assert.Equal(t, core.Output{"event": "x"}, engine.ran[0].TriggerToStartFrom.Payload)
	})
	t.Run("Should resume with prior run data intact", func(t *testing.T) {
		prior := priorWithRunData("prev-1")
		// A fully specified resume never consults the webhook probe.
		engine := &fakeEngine{needsWebhook: true}
		uc := newExecuteUC(newFakeWorkflowRepo(manualAndChain()), newFakeExecutionRepo(prior), engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID:      "wf-manual",
			ExecutionID:     "prev-1",
			DestinationNode: "B",
			StartNodes:      []string{"A"},
			DirtyNodes:      []string{"A"},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Status)
		require.Len(t, engine.ran, 1)
		assert.Equal(t, prior.Data.RunData, engine.ran[0].RunData)
		assert.Equal(t, []string{"A"}, engine.ran[0].DirtyNodeNames)
	})
	t.Run("Should hand explicit start nodes to the run engine", func(t *testing.T) {
		wf := webhookAndManual()
		wf.PinData = workflow.PinData{"W": {"body": "x"}}
		engine := &fakeEngine{}
		uc := newExecuteUC(newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine)
		_, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID: "wf-mixed",
			StartNodes: []string{"MA"},
		})
		require.NoError(t, err)
		require.Len(t, engine.ran, 1)
		assert.Equal(t, []string{"MA"}, engine.ran[0].StartNodes)
		assert.Nil(t, engine.ran[0].TriggerToStartFrom,
			"a pin unrelated to the start node must not seed the execution")
	})
}

func TestExecute_WebhookWait(t *testing.T) {
	t.Run("Should suspend instead of running when a webhook must fire first", func(t *testing.T) {
		engine := &fakeEngine{needsWebhook: true}
		execRepo := newFakeExecutionRepo()
		uc := newExecuteUC(newFakeWorkflowRepo(webhookAndManual()), execRepo, engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-mixed"})
		require.NoError(t, err)
		assert.Equal(t, core.StatusWaiting, out.Status)
		assert.False(t, out.ExecutionID.IsZero())
		assert.Empty(t, engine.ran, "run engine must not be invoked for a waiting handle")
		require.Len(t, execRepo.created, 1)
		assert.Equal(t, core.StatusWaiting, execRepo.created[0].Status)
		assert.Equal(t, execution.ModeManual, execRepo.created[0].Mode)
		assert.False(t, execRepo.created[0].Finished)
	})
	t.Run("Should suspend a destination-only request when a webhook must fire first", func(t *testing.T) {
		engine := &fakeEngine{needsWebhook: true}
		execRepo := newFakeExecutionRepo()
		uc := newExecuteUC(newFakeWorkflowRepo(webhookAndManual()), execRepo, engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{
			WorkflowID:      "wf-mixed",
			DestinationNode: "WA",
		})
		require.NoError(t, err)
		assert.Equal(t, core.StatusWaiting, out.Status)
		assert.Empty(t, engine.ran, "run engine must not be invoked for a waiting handle")
		require.Len(t, execRepo.created, 1)
	})
	t.Run("Should skip the webhook probe when an activator is pinned", func(t *testing.T) {
		wf := webhookAndManual()
		wf.PinData = workflow.PinData{"W": {"body": "x"}}
		engine := &fakeEngine{needsWebhook: true}
		uc := newExecuteUC(newFakeWorkflowRepo(wf), newFakeExecutionRepo(), engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-mixed"})
		require.NoError(t, err)
		assert.Empty(t, out.Status)
		require.Len(t, engine.ran, 1)
	})
	t.Run("Should run directly when the engine reports no webhook dependency", func(t *testing.T) {
		engine := &fakeEngine{needsWebhook: false}
		uc := newExecuteUC(newFakeWorkflowRepo(webhookAndManual()), newFakeExecutionRepo(), engine)
		out, err := uc.Execute(context.Background(), &ExecuteInput{WorkflowID: "wf-mixed"})
		require.NoError(t, err)
		assert.Empty(t, out.Status)
		require.Len(t, engine.ran, 1)
	})
}
