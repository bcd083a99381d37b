package uc

import (
	"sort"

	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// collectPinnedActivators returns every node that can seed the execution:
// enabled, trigger- or webhook-category, not a respond-to-webhook node,
// and carrying pin data. Nodes whose type name ends in "webhook" sort
// before all others; within each group the workflow's node order is kept.
func collectPinnedActivators(
	wf *workflow.Config,
	registry node.Registry,
	pin workflow.PinData,
) []*workflow.Node {
	var activators []*workflow.Node
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Disabled || n.Type == node.TypeRespondToWebhook {
			continue
		}
		if _, pinned := pin[n.Name]; !pinned {
			continue
		}
		desc, err := registry.Resolve(n.Type, n.TypeVersion)
		if err != nil || !desc.IsActivator() {
			continue
		}
		activators = append(activators, n)
	}
	sort.SliceStable(activators, func(i, j int) bool {
		return node.IsWebhookType(activators[i].Type) && !node.IsWebhookType(activators[j].Type)
	})
	return activators
}

// selectPinnedActivator picks the single activator node that should seed
// the execution, or nil when none applies.
//
// Full executions (empty start-node list) prefer an activator that is an
// ancestor of the destination node, falling back to the first activator
// in default order. Partial executions consider only the first supplied
// start node; multi-start-node requests without a common pinned ancestor
// are a documented approximation and may resolve to no activator.
func selectPinnedActivator(
	wf *workflow.Config,
	registry node.Registry,
	pin workflow.PinData,
	startNodes []string,
	destinationNode string,
) *workflow.Node {
	activators := collectPinnedActivators(wf, registry, pin)
	if len(activators) == 0 {
		return nil
	}
	if len(startNodes) == 0 {
		if destinationNode != "" {
			for _, a := range activators {
				if wf.HasParent(destinationNode, a.Name) {
					return a
				}
			}
		}
		return activators[0]
	}
	first := startNodes[0]
	if wf.HasParent(first, activators[0].Name) {
		return activators[0]
	}
	for _, a := range activators {
		if a.Name == first {
			return a
		}
	}
	return nil
}
