package uc

import (
	"errors"

	"dario.cat/mergo"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// -----------------------------------------------------------------------------
// Strategy
// -----------------------------------------------------------------------------

// strategyKind is the closed set of mutually exclusive execution
// strategies. Classification is separated from payload construction so
// each can be tested on its own.
type strategyKind int

const (
	strategyCustomTrigger strategyKind = iota
	strategyPartialResume
	strategyFullWithInput
	strategyFullWithoutInput
)

func (s strategyKind) String() string {
	switch s {
	case strategyCustomTrigger:
		return "custom_trigger"
	case strategyPartialResume:
		return "partial_resume"
	case strategyFullWithInput:
		return "full_with_input"
	default:
		return "full_without_input"
	}
}

// classify resolves the request to exactly one strategy. Priority order
// matters: a custom trigger wins over everything, a resumable prior run
// with a destination wins over plain input.
func classify(in *ExecuteInput, prior *execution.Execution) strategyKind {
	switch {
	case in.TriggerData != nil:
		return strategyCustomTrigger
	case priorRunData(prior) != nil && in.DestinationNode != "":
		return strategyPartialResume
	case len(in.Input) > 0:
		return strategyFullWithInput
	default:
		return strategyFullWithoutInput
	}
}

func priorRunData(prior *execution.Execution) execution.RunData {
	if prior == nil || prior.Data == nil || len(prior.Data.RunData) == 0 {
		return nil
	}
	return prior.Data.RunData
}

// -----------------------------------------------------------------------------
// Payload builder
// -----------------------------------------------------------------------------

type payloadBuilder struct {
	registry node.Registry
}

// build assembles the normalized payload for the classified strategy. The
// workflow entity passed in is never mutated: the payload carries its own
// deep copy together with a private pin map.
func (b *payloadBuilder) build(
	wf *workflow.Config,
	in *ExecuteInput,
	prior *execution.Execution,
) (*execution.Payload, error) {
	payload := &execution.Payload{
		Workflow:        wf.Clone(),
		Mode:            execution.ModeManual,
		DestinationNode: in.DestinationNode,
		PinData:         wf.PinData.Clone(),
	}
	switch classify(in, prior) {
	case strategyCustomTrigger:
		return b.buildCustomTrigger(payload, in)
	case strategyPartialResume:
		return b.buildPartialResume(payload, in, prior)
	case strategyFullWithInput:
		return b.buildFullWithInput(payload, in)
	default:
		// Explicit start nodes ride along so the activator selector can
		// apply its partial-execution rule.
		payload.StartNodes = in.StartNodes
		return payload, nil
	}
}

// buildCustomTrigger injects the caller-supplied payload as pin data for
// the named trigger node and marks it as the trigger to start from. The
// start-node list stays empty so the activator selector populates it.
func (b *payloadBuilder) buildCustomTrigger(
	payload *execution.Payload,
	in *ExecuteInput,
) (*execution.Payload, error) {
	trigger := payload.Workflow.GetNode(in.TriggerData.Name)
	if trigger == nil {
		return nil, errors.Join(
			ErrNodeNotFound,
			core.NewError(nil, "BAD_REQUEST", map[string]any{"trigger_name": in.TriggerData.Name}),
		)
	}
	payload.PinData = pinNode(payload.PinData, trigger.Name, in.TriggerData.Payload)
	payload.TriggerToStartFrom = &execution.TriggerSpec{
		Name:    trigger.Name,
		Payload: in.TriggerData.Payload,
	}
	payload.StartNodes = nil
	return payload, nil
}

// buildPartialResume carries the prior run's cached node outputs plus the
// dirty-node invalidation hints. Restored pin data rides along unchanged.
func (b *payloadBuilder) buildPartialResume(
	payload *execution.Payload,
	in *ExecuteInput,
	prior *execution.Execution,
) (*execution.Payload, error) {
	payload.RunData = priorRunData(prior)
	payload.DirtyNodeNames = in.DirtyNodes
	payload.StartNodes = in.StartNodes
	payload.ParentExecutionID = prior.ID
	return payload, nil
}

// buildFullWithInput selects a start node by priority (manual trigger,
// then any webhook-category node, then the first activator) and injects
// the caller input as its pin data.
func (b *payloadBuilder) buildFullWithInput(
	payload *execution.Payload,
	in *ExecuteInput,
) (*execution.Payload, error) {
	start, err := b.selectInputTarget(payload.Workflow)
	if err != nil {
		return nil, err
	}
	payload.PinData = pinNode(payload.PinData, start.Name, in.Input.AsOutput())
	payload.Input = in.Input
	payload.StartNodes = nil
	return payload, nil
}

func (b *payloadBuilder) selectInputTarget(wf *workflow.Config) (*workflow.Node, error) {
	var firstWebhook, firstActivator *workflow.Node
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Disabled {
			continue
		}
		if n.Type == node.TypeManualTrigger {
			return n, nil
		}
		desc, err := b.registry.Resolve(n.Type, n.TypeVersion)
		if err != nil || !desc.IsActivator() {
			continue
		}
		if desc.Kind == node.KindWebhook && firstWebhook == nil {
			firstWebhook = n
		}
		if firstActivator == nil {
			firstActivator = n
		}
	}
	if firstWebhook != nil {
		return firstWebhook, nil
	}
	if firstActivator != nil {
		return firstActivator, nil
	}
	return nil, errors.Join(
		ErrNoActivatorNodes,
		core.NewError(nil, "BAD_REQUEST", map[string]any{"workflow_id": wf.ID}),
	)
}

// pinNode writes the payload for one node into the pin map, merging over
// any restored pin for that same node. Pins held by other nodes are left
// untouched.
func pinNode(pin workflow.PinData, nodeName string, data core.Output) workflow.PinData {
	if pin == nil {
		pin = make(workflow.PinData)
	}
	if existing, ok := pin[nodeName]; ok && existing != nil {
		merged := make(core.Output, len(existing))
		if err := mergo.Merge(&merged, existing); err == nil {
			if err := mergo.Merge(&merged, data, mergo.WithOverride); err == nil {
				pin[nodeName] = merged
				return pin
			}
		}
	}
	pin[nodeName] = data
	return pin
}
