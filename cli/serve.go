package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	authuc "github.com/nodeflow-io/nodeflow/engine/auth/uc"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/infra/postgres"
	"github.com/nodeflow-io/nodeflow/engine/infra/server"
	"github.com/nodeflow-io/nodeflow/engine/node"
	"github.com/nodeflow-io/nodeflow/engine/worker"
	"github.com/nodeflow-io/nodeflow/pkg/config"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the nodeflow API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	if logLevel == "" {
		logLevel = cfg.Log.Level
	}
	log := logger.NewLogger(&logger.Config{
		Level: logger.LogLevel(logLevel),
		JSON:  logJSON || cfg.Log.JSON,
	})
	ctx, stop := signal.NotifyContext(
		logger.ContextWithLogger(cmd.Context(), log),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := postgres.ApplyMigrations(ctx, cfg.Database.ConnString); err != nil {
			return err
		}
	}
	store, err := postgres.NewStore(ctx, cfg.Database.ConnString)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	authRepo := postgres.NewAuthRepo(store.Pool())
	executions := postgres.NewExecutionRepo(store.Pool())
	registry := node.NewDefaultRegistry()

	if cfg.Auth.BootstrapEmail != "" {
		if err := bootstrap(ctx, authRepo, cfg.Auth.BootstrapEmail, log); err != nil {
			return err
		}
	}

	srv := server.New(cfg, &server.Deps{
		Workflows:  postgres.NewWorkflowRepo(store.Pool()),
		Executions: executions,
		AuthRepo:   authRepo,
		Registry:   registry,
		Engine:     worker.NewLocal(executions, registry),
		Policy:     execution.NewCallerListPolicy(),
	}, log)
	return srv.Run(ctx)
}

func bootstrap(ctx context.Context, repo authuc.Repository, email string, log logger.Logger) error {
	user, plaintext, err := authuc.NewBootstrapSystem(repo, email).Execute(ctx)
	if errors.Is(err, authuc.ErrAlreadyBootstrapped) {
		log.Debug("Bootstrap skipped, admin already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}
	// Printed once at first boot; the key is otherwise unrecoverable.
	log.Info("Initial admin created, store this API key now",
		"email", user.Email,
		"api_key", plaintext)
	return nil
}
