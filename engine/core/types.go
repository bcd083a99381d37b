package core

// -----------------------------------------------------------------------------
// Input / Output
// -----------------------------------------------------------------------------

// Input is the caller-supplied payload handed to a workflow execution.
type Input map[string]any

// Output is the recorded result payload of a single node run.
type Output map[string]any

func (i Input) AsOutput() Output {
	if i == nil {
		return nil
	}
	out := make(Output, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------
// Execution Status
// -----------------------------------------------------------------------------

type StatusType string

const (
	StatusPending StatusType = "PENDING"
	StatusRunning StatusType = "RUNNING"
	StatusWaiting StatusType = "WAITING"
	StatusSuccess StatusType = "SUCCESS"
	StatusFailed  StatusType = "FAILED"
)

func (s StatusType) String() string {
	return string(s)
}
