package execution

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/core"
)

// Repository is the execution store consumed by the orchestration core.
type Repository interface {
	// GetByID loads an execution record. Data is populated only when
	// includeData is set; resume paths need it, handle read-backs do not.
	GetByID(ctx context.Context, id core.ID, includeData bool) (*Execution, error)
	Create(ctx context.Context, exec *Execution) error
}
