package workflow

import (
	"fmt"

	"github.com/mohae/deepcopy"
	"github.com/nodeflow-io/nodeflow/engine/core"
)

// -----------------------------------------------------------------------------
// Node
// -----------------------------------------------------------------------------

// Node is a single step in a workflow graph. Its role (trigger, webhook or
// regular) is not stored here; it is derived by resolving Type against the
// node-type registry.
type Node struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	TypeVersion int        `json:"type_version"`
	Disabled    bool       `json:"disabled,omitempty"`
	Parameters  core.Input `json:"parameters,omitempty"`
}

// -----------------------------------------------------------------------------
// PinData
// -----------------------------------------------------------------------------

// PinData maps a node name to a literal output payload that replaces the
// node's real execution output.
type PinData map[string]core.Output

func (p PinData) Clone() PinData {
	if p == nil {
		return nil
	}
	cloned, ok := deepcopy.Copy(p).(PinData)
	if !ok {
		return nil
	}
	return cloned
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

type Settings struct {
	// ErrorWorkflowID designates the workflow to run when an execution of
	// this workflow fails unhandled.
	ErrorWorkflowID core.ID `json:"error_workflow_id,omitempty"`
	// CallerIDs whitelists workflows allowed to invoke this one as a
	// sub-workflow. Empty means any caller within the project.
	CallerIDs []core.ID `json:"caller_ids,omitempty"`
	// Timezone used when scheduling trigger nodes.
	Timezone string `json:"timezone,omitempty"`
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

// Config is a workflow definition as loaded from the workflow store. The
// orchestration core treats it as read-only; execution-scoped overrides
// (pin-data injection, the active flag) live on per-request copies.
type Config struct {
	ID        core.ID  `json:"id"`
	ProjectID core.ID  `json:"project_id,omitempty"`
	Name      string   `json:"name"`
	Active    bool     `json:"active"`
	Nodes     []Node   `json:"nodes"`
	// Connections maps a node name to the names of its direct downstream
	// nodes.
	Connections map[string][]string `json:"connections"`
	PinData     PinData             `json:"pin_data,omitempty"`
	StaticData  map[string]any      `json:"static_data,omitempty"`
	Settings    Settings            `json:"settings"`
}

// GetNode returns the node with the given name, or nil when absent.
func (c *Config) GetNode(name string) *Node {
	for i := range c.Nodes {
		if c.Nodes[i].Name == name {
			return &c.Nodes[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the workflow, safe to mutate per request.
func (c *Config) Clone() *Config {
	cloned, ok := deepcopy.Copy(c).(*Config)
	if !ok {
		return nil
	}
	return cloned
}

// Validate checks structural invariants: unique node names and connection
// entries referencing only existing nodes.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Nodes))
	for i := range c.Nodes {
		name := c.Nodes[i].Name
		if name == "" {
			return fmt.Errorf("workflow %s: node %d has no name", c.ID, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("workflow %s: duplicate node name %q", c.ID, name)
		}
		seen[name] = struct{}{}
	}
	for from, targets := range c.Connections {
		if _, ok := seen[from]; !ok {
			return fmt.Errorf("workflow %s: connection from unknown node %q", c.ID, from)
		}
		for _, to := range targets {
			if _, ok := seen[to]; !ok {
				return fmt.Errorf("workflow %s: connection %q -> unknown node %q", c.ID, from, to)
			}
		}
	}
	return nil
}
