package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
)

type executionDB struct {
	ID                string     `db:"id"`
	WorkflowID        string     `db:"workflow_id"`
	ParentExecutionID *string    `db:"parent_execution_id"`
	Status            string     `db:"status"`
	Mode              string     `db:"mode"`
	Finished          bool       `db:"finished"`
	StartedAt         time.Time  `db:"started_at"`
	StoppedAt         *time.Time `db:"stopped_at"`
	Data              []byte     `db:"data"`
}

func (e *executionDB) toExecution(includeData bool) (*execution.Execution, error) {
	exec := &execution.Execution{
		ID:         core.ID(e.ID),
		WorkflowID: core.ID(e.WorkflowID),
		Status:     core.StatusType(e.Status),
		Mode:       execution.Mode(e.Mode),
		Finished:   e.Finished,
		StartedAt:  e.StartedAt,
		StoppedAt:  e.StoppedAt,
	}
	if e.ParentExecutionID != nil {
		exec.ParentExecutionID = core.ID(*e.ParentExecutionID)
	}
	if includeData && len(e.Data) > 0 {
		exec.Data = &execution.Data{}
		if err := json.Unmarshal(e.Data, exec.Data); err != nil {
			return nil, fmt.Errorf("decoding execution data: %w", err)
		}
	}
	return exec, nil
}

// ExecutionRepo implements execution.Repository.
type ExecutionRepo struct {
	db DB
}

func NewExecutionRepo(db DB) *ExecutionRepo {
	return &ExecutionRepo{db: db}
}

func (r *ExecutionRepo) GetByID(ctx context.Context, id core.ID, includeData bool) (*execution.Execution, error) {
	columns := []string{"id", "workflow_id", "parent_execution_id", "status", "mode", "finished", "started_at", "stopped_at"}
	if includeData {
		columns = append(columns, "data")
	}
	sql, args, err := squirrel.Select(columns...).
		From("executions").
		Where("id = ?", id.String()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var row executionDB
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, execution.ErrNotFound
		}
		return nil, fmt.Errorf("scanning execution: %w", err)
	}
	return row.toExecution(includeData)
}

func (r *ExecutionRepo) Create(ctx context.Context, exec *execution.Execution) error {
	var data []byte
	if exec.Data != nil {
		encoded, err := json.Marshal(exec.Data)
		if err != nil {
			return fmt.Errorf("encoding execution data: %w", err)
		}
		data = encoded
	}
	sql, args, err := squirrel.Insert("executions").
		Columns("id", "workflow_id", "parent_execution_id", "status", "mode", "finished", "started_at", "stopped_at", "data").
		Values(
			exec.ID.String(),
			exec.WorkflowID.String(),
			nullableID(exec.ParentExecutionID),
			exec.Status.String(),
			string(exec.Mode),
			exec.Finished,
			exec.StartedAt,
			exec.StoppedAt,
			data,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}
