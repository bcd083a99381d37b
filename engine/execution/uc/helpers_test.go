package uc

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

type fakeWorkflowRepo struct {
	workflows map[core.ID]*workflow.Config
}

func newFakeWorkflowRepo(configs ...*workflow.Config) *fakeWorkflowRepo {
	repo := &fakeWorkflowRepo{workflows: make(map[core.ID]*workflow.Config)}
	for _, cfg := range configs {
		repo.workflows[cfg.ID] = cfg
	}
	return repo
}

func (f *fakeWorkflowRepo) GetByID(_ context.Context, id core.ID) (*workflow.Config, error) {
	cfg, ok := f.workflows[id]
	if !ok {
		return nil, workflow.ErrNotFound
	}
	return cfg, nil
}

func (f *fakeWorkflowRepo) Create(_ context.Context, cfg *workflow.Config) error {
	f.workflows[cfg.ID] = cfg
	return nil
}

func (f *fakeWorkflowRepo) List(_ context.Context, _ core.ID) ([]*workflow.Config, error) {
	configs := make([]*workflow.Config, 0, len(f.workflows))
	for _, cfg := range f.workflows {
		configs = append(configs, cfg)
	}
	return configs, nil
}

type fakeExecutionRepo struct {
	executions map[core.ID]*execution.Execution
	created    []*execution.Execution
}

func newFakeExecutionRepo(executions ...*execution.Execution) *fakeExecutionRepo {
	repo := &fakeExecutionRepo{executions: make(map[core.ID]*execution.Execution)}
	for _, exec := range executions {
		repo.executions[exec.ID] = exec
	}
	return repo
}

func (f *fakeExecutionRepo) GetByID(_ context.Context, id core.ID, _ bool) (*execution.Execution, error) {
	exec, ok := f.executions[id]
	if !ok {
		return nil, execution.ErrNotFound
	}
	return exec, nil
}

func (f *fakeExecutionRepo) Create(_ context.Context, exec *execution.Execution) error {
	f.executions[exec.ID] = exec
	f.created = append(f.created, exec)
	return nil
}

type fakeEngine struct {
	needsWebhook bool
	runErr       error
	nextID       core.ID
	ran          []*execution.Payload
}

func (f *fakeEngine) Run(_ context.Context, payload *execution.Payload) (core.ID, error) {
	if f.runErr != nil {
		return "", f.runErr
	}
	f.ran = append(f.ran, payload)
	if f.nextID.IsZero() {
		return core.ID("exec-1"), nil
	}
	return f.nextID, nil
}

func (f *fakeEngine) NeedsWebhook(_ context.Context, _ *execution.Payload) (bool, error) {
	return f.needsWebhook, nil
}

type fakePolicy struct {
	err error
}

func (f *fakePolicy) Check(_ context.Context, _ *workflow.Config, _ core.ID, _ string) error {
	return f.err
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func testRegistry() node.Registry {
	return node.NewDefaultRegistry(
		&node.Descriptor{Name: "nodeflow.noop", Version: 1, Kind: node.KindRegular},
		&node.Descriptor{Name: "nodeflow.cronTrigger", Version: 1, Kind: node.KindTrigger, Group: []string{"trigger"}},
	)
}

// manualAndChain builds: M -> A -> B, plus detached X.
func manualAndChain() *workflow.Config {
	return &workflow.Config{
		ID:   "wf-manual",
		Name: "manual chain",
		Nodes: []workflow.Node{
			{Name: "M", Type: node.TypeManualTrigger, TypeVersion: 1},
			{Name: "A", Type: "nodeflow.noop", TypeVersion: 1},
			{Name: "B", Type: "nodeflow.noop", TypeVersion: 1},
			{Name: "X", Type: "nodeflow.noop", TypeVersion: 1},
		},
		Connections: map[string][]string{
			"M": {"A"},
			"A": {"B"},
		},
	}
}

// webhookAndManual builds two parallel chains: W -> WA and M -> MA.
func webhookAndManual() *workflow.Config {
	return &workflow.Config{
		ID:   "wf-mixed",
		Name: "webhook and manual",
		Nodes: []workflow.Node{
			{Name: "W", Type: node.TypeWebhook, TypeVersion: 1},
			{Name: "WA", Type: "nodeflow.noop", TypeVersion: 1},
			{Name: "M", Type: node.TypeManualTrigger, TypeVersion: 1},
			{Name: "MA", Type: "nodeflow.noop", TypeVersion: 1},
		},
		Connections: map[string][]string{
			"W": {"WA"},
			"M": {"MA"},
		},
	}
}
