package workflow

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/core"
)

// Repository is the workflow store consumed by the orchestration core.
type Repository interface {
	GetByID(ctx context.Context, id core.ID) (*Config, error)
	Create(ctx context.Context, config *Config) error
	List(ctx context.Context, projectID core.ID) ([]*Config, error)
}
