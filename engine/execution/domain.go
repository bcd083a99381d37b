package execution

import (
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// -----------------------------------------------------------------------------
// Mode
// -----------------------------------------------------------------------------

// Mode tags how an execution was started.
type Mode string

const (
	ModeManual  Mode = "manual"
	ModeTrigger Mode = "trigger"
	ModeWebhook Mode = "webhook"
	ModeError   Mode = "error"
)

// -----------------------------------------------------------------------------
// RunData
// -----------------------------------------------------------------------------

// RunData is the per-node output cache of one or more prior runs. It is
// supplied only when resuming or partially re-executing and is never
// mutated by the orchestration core.
type RunData map[string][]core.Output

// Has reports whether cached output exists for the node.
func (r RunData) Has(nodeName string) bool {
	outputs, ok := r[nodeName]
	return ok && len(outputs) > 0
}

// -----------------------------------------------------------------------------
// Execution
// -----------------------------------------------------------------------------

// Data is the recorded detail of an execution.
type Data struct {
	RunData          RunData     `json:"run_data,omitempty"`
	LastNodeExecuted string      `json:"last_node_executed,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
	ResultData       core.Output `json:"result_data,omitempty"`
}

// Execution is a persisted execution record. The run engine owns record
// creation on the primary path; the orchestration core writes records
// directly only for waiting handles and synthetic policy-rejection
// failures.
type Execution struct {
	ID                core.ID         `json:"id"`
	WorkflowID        core.ID         `json:"workflow_id"`
	ParentExecutionID core.ID         `json:"parent_execution_id,omitempty"`
	Status            core.StatusType `json:"status"`
	Mode              Mode            `json:"mode"`
	Finished          bool            `json:"finished"`
	StartedAt         time.Time       `json:"started_at"`
	StoppedAt         *time.Time      `json:"stopped_at,omitempty"`
	Data              *Data           `json:"data,omitempty"`
}

// -----------------------------------------------------------------------------
// Payload
// -----------------------------------------------------------------------------

// TriggerSpec names a trigger node together with the literal payload to
// inject for it.
type TriggerSpec struct {
	Name    string      `json:"name"`
	Payload core.Output `json:"payload"`
}

// StackEntry seeds the run engine's execution stack with a node and the
// data it should start from.
type StackEntry struct {
	NodeName string      `json:"node_name"`
	Data     core.Output `json:"data,omitempty"`
}

// Payload is the normalized execution request handed to the run engine.
// It is constructed fresh per call and carries its own workflow copy and
// pin map, so the loaded workflow entity is never aliased or mutated.
type Payload struct {
	Workflow           *workflow.Config `json:"workflow"`
	Mode               Mode             `json:"mode"`
	Input              core.Input       `json:"input,omitempty"`
	DestinationNode    string           `json:"destination_node,omitempty"`
	StartNodes         []string         `json:"start_nodes,omitempty"`
	RunData            RunData          `json:"run_data,omitempty"`
	PinData            workflow.PinData `json:"pin_data,omitempty"`
	TriggerToStartFrom *TriggerSpec     `json:"trigger_to_start_from,omitempty"`
	DirtyNodeNames     []string         `json:"dirty_node_names,omitempty"`
	ExecutionStack     []StackEntry     `json:"execution_stack,omitempty"`
	ParentExecutionID  core.ID          `json:"parent_execution_id,omitempty"`
}
