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
	"github.com/nodeflow-io/nodeflow/engine/workflow"
)

var workflowColumns = []string{
	"id", "project_id", "name", "active",
	"nodes", "connections", "pin_data", "static_data", "settings",
}

// workflowDB is the row shape of the workflows table; JSONB columns are
// decoded into the domain config on the way out.
type workflowDB struct {
	ID          string  `db:"id"`
	ProjectID   *string `db:"project_id"`
	Name        string  `db:"name"`
	Active      bool    `db:"active"`
	Nodes       []byte  `db:"nodes"`
	Connections []byte  `db:"connections"`
	PinData     []byte  `db:"pin_data"`
	StaticData  []byte  `db:"static_data"`
	Settings    []byte  `db:"settings"`
}

func (w *workflowDB) toConfig() (*workflow.Config, error) {
	cfg := &workflow.Config{
		ID:     core.ID(w.ID),
		Name:   w.Name,
		Active: w.Active,
	}
	if w.ProjectID != nil {
		cfg.ProjectID = core.ID(*w.ProjectID)
	}
	if err := json.Unmarshal(w.Nodes, &cfg.Nodes); err != nil {
		return nil, fmt.Errorf("decoding nodes: %w", err)
	}
	if err := json.Unmarshal(w.Connections, &cfg.Connections); err != nil {
		return nil, fmt.Errorf("decoding connections: %w", err)
	}
	if len(w.PinData) > 0 {
		if err := json.Unmarshal(w.PinData, &cfg.PinData); err != nil {
			return nil, fmt.Errorf("decoding pin data: %w", err)
		}
	}
	if len(w.StaticData) > 0 {
		if err := json.Unmarshal(w.StaticData, &cfg.StaticData); err != nil {
			return nil, fmt.Errorf("decoding static data: %w", err)
		}
	}
	if len(w.Settings) > 0 {
		if err := json.Unmarshal(w.Settings, &cfg.Settings); err != nil {
			return nil, fmt.Errorf("decoding settings: %w", err)
		}
	}
	return cfg, nil
}

// WorkflowRepo implements workflow.Repository.
type WorkflowRepo struct {
	db DB
}

func NewWorkflowRepo(db DB) *WorkflowRepo {
	return &WorkflowRepo{db: db}
}

func (r *WorkflowRepo) GetByID(ctx context.Context, id core.ID) (*workflow.Config, error) {
	sql, args, err := squirrel.Select(workflowColumns...).
		From("workflows").
		Where("id = ?", id.String()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var row workflowDB
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("scanning workflow: %w", err)
	}
	return row.toConfig()
}

func (r *WorkflowRepo) Create(ctx context.Context, cfg *workflow.Config) error {
	nodes, err := json.Marshal(cfg.Nodes)
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	connections, err := json.Marshal(cfg.Connections)
	if err != nil {
		return fmt.Errorf("encoding connections: %w", err)
	}
	settings, err := json.Marshal(cfg.Settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	var pinData, staticData []byte
	if cfg.PinData != nil {
		if pinData, err = json.Marshal(cfg.PinData); err != nil {
			return fmt.Errorf("encoding pin data: %w", err)
		}
	}
	if cfg.StaticData != nil {
		if staticData, err = json.Marshal(cfg.StaticData); err != nil {
			return fmt.Errorf("encoding static data: %w", err)
		}
	}
	sql, args, err := squirrel.Insert("workflows").
		Columns("id", "project_id", "name", "active", "nodes", "connections", "pin_data", "static_data", "settings", "updated_at").
		Values(cfg.ID.String(), nullableID(cfg.ProjectID), cfg.Name, cfg.Active, nodes, connections, pinData, staticData, settings, time.Now().UTC()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting workflow: %w", err)
	}
	return nil
}

func (r *WorkflowRepo) List(ctx context.Context, projectID core.ID) ([]*workflow.Config, error) {
	sb := squirrel.Select(workflowColumns...).
		From("workflows").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if !projectID.IsZero() {
		sb = sb.Where("project_id = ?", projectID.String())
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []*workflowDB
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("scanning workflows: %w", err)
	}
	configs := make([]*workflow.Config, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.toConfig()
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func nullableID(id core.ID) any {
	if id.IsZero() {
		return nil
	}
	return id.String()
}
