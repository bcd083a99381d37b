package execution

import (
	"context"
	"errors"

	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

// ErrPolicyRejected is returned by policy checkers that deny a
// sub-workflow invocation.
var ErrPolicyRejected = errors.New("sub-workflow invocation rejected by policy")

// callerListPolicy permits invocation when the target workflow's settings
// whitelist the caller, or carry no whitelist at all.
type callerListPolicy struct{}

// NewCallerListPolicy returns the default sub-workflow policy checker.
func NewCallerListPolicy() PolicyChecker {
	return callerListPolicy{}
}

func (callerListPolicy) Check(
	_ context.Context,
	target *workflow.Config,
	callerWorkflowID core.ID,
	_ string,
) error {
	if len(target.Settings.CallerIDs) == 0 {
		return nil
	}
	for _, id := range target.Settings.CallerIDs {
		if id == callerWorkflowID {
			return nil
		}
	}
	return ErrPolicyRejected
}
