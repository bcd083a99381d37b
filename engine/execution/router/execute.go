package execrouter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/execution"
	"github.com/nodeflow-io/nodeflow/engine/execution/uc"
	"github.com/nodeflow-io/nodeflow/engine/infra/monitoring"
	"github.com/nodeflow-io/nodeflow/engine/infra/server/router"
	"github.com/nodeflow-io/nodeflow/engine/project"
)

// Deps wires the use cases this router exposes.
type Deps struct {
	Execute     *uc.Execute
	HandleError *uc.HandleErrorWorkflow
	Executions  execution.Repository
}

// Register mounts the execution routes on the given group.
func Register(api *gin.RouterGroup, deps *Deps) {
	api.POST("/workflows/:workflow_id/run", handleExecute(deps))
	api.GET("/executions/:exec_id", handleGetExecution(deps))
	api.POST("/error-workflows/:workflow_id/dispatch", handleDispatchErrorWorkflow(deps))
}

// handleExecute triggers a manual workflow execution.
//
//	@Summary		Execute workflow
//	@Description	Run a workflow manually, optionally resuming from a prior execution or injecting trigger data
//	@Tags			workflows
//	@Accept			json
//	@Produce		json
//	@Param			workflow_id	path		string					true	"Workflow ID"
//	@Param			request		body		ExecuteWorkflowRequest	true	"Execution request"
//	@Success		202			{object}	router.Response{data=ExecuteWorkflowResponse}
//	@Failure		400			{object}	router.Problem
//	@Failure		404			{object}	router.Problem
//	@Router			/workflows/{workflow_id}/run [post]
func handleExecute(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflowID := c.Param("workflow_id")
		if workflowID == "" {
			router.RespondBadRequest(c, "workflow ID is required")
			return
		}
		var body ExecuteWorkflowRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			router.RespondBadRequest(c, fmt.Sprintf("invalid request body: %s", err))
			return
		}
		out, err := deps.Execute.Execute(c.Request.Context(), body.toInput(core.ID(workflowID)))
		if err != nil {
			respondExecuteError(c, err)
			return
		}
		if out.Status == core.StatusWaiting {
			monitoring.ExecutionsWaiting.Inc()
		} else {
			monitoring.ExecutionsStarted.WithLabelValues(string(execution.ModeManual)).Inc()
		}
		router.RespondAccepted(c, "workflow execution accepted", ExecuteWorkflowResponse{
			ExecutionID: out.ExecutionID.String(),
			Status:      out.Status.String(),
		})
	}
}

func respondExecuteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, uc.ErrWorkflowNotFound):
		router.RespondNotFound(c, "workflow not found")
	case errors.Is(err, uc.ErrExecutionNotFound):
		router.RespondNotFound(c, "execution not found")
	case errors.Is(err, uc.ErrNodeNotFound),
		errors.Is(err, uc.ErrNoActivatorNodes),
		errors.Is(err, uc.ErrInvalidInput):
		router.RespondBadRequest(c, err.Error())
	default:
		router.RespondInternalError(c, "failed to execute workflow")
	}
}

// handleGetExecution reads back an execution handle.
//
//	@Summary	Get execution
//	@Tags		executions
//	@Produce	json
//	@Param		exec_id	path		string	true	"Execution ID"
//	@Success	200		{object}	router.Response
//	@Failure	404		{object}	router.Problem
//	@Router		/executions/{exec_id} [get]
func handleGetExecution(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		execID := core.ID(c.Param("exec_id"))
		exec, err := deps.Executions.GetByID(c.Request.Context(), execID, false)
		if err != nil {
			if errors.Is(err, execution.ErrNotFound) {
				router.RespondNotFound(c, "execution not found")
				return
			}
			router.RespondInternalError(c, "failed to load execution")
			return
		}
		router.RespondOK(c, "", exec)
	}
}

// DispatchErrorWorkflowRequest describes the failure being handed to an
// error workflow.
type DispatchErrorWorkflowRequest struct {
	FailedWorkflowID string `json:"failed_workflow_id" binding:"required"`
	ExecutionID      string `json:"execution_id,omitempty"`
	LastNodeExecuted string `json:"last_node_executed,omitempty"`
	Message          string `json:"message" binding:"required"`
	Stack            string `json:"stack,omitempty"`
	ProjectID        string `json:"project_id,omitempty"`
	ProjectName      string `json:"project_name,omitempty"`
}

// handleDispatchErrorWorkflow fires the error-workflow path. The dispatch
// is best-effort: the request is acknowledged as soon as it is handed off.
//
//	@Summary	Dispatch error workflow
//	@Tags		executions
//	@Accept		json
//	@Produce	json
//	@Param		workflow_id	path		string							true	"Error workflow ID"
//	@Param		request		body		DispatchErrorWorkflowRequest	true	"Failure description"
//	@Success	202			{object}	router.Response
//	@Router		/error-workflows/{workflow_id}/dispatch [post]
func handleDispatchErrorWorkflow(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body DispatchErrorWorkflowRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			router.RespondBadRequest(c, fmt.Sprintf("invalid request body: %s", err))
			return
		}
		in := &uc.HandleErrorInput{
			ErrorWorkflowID: core.ID(c.Param("workflow_id")),
			Failure: uc.FailureReport{
				WorkflowID:       core.ID(body.FailedWorkflowID),
				ExecutionID:      core.ID(body.ExecutionID),
				LastNodeExecuted: body.LastNodeExecuted,
				Message:          body.Message,
				Stack:            body.Stack,
			},
			Project: project.Context{
				ID:   core.ID(body.ProjectID),
				Name: body.ProjectName,
			},
		}
		deps.HandleError.Execute(c.Request.Context(), in)
		monitoring.ErrorWorkflowDispatches.WithLabelValues("dispatched").Inc()
		c.JSON(http.StatusAccepted, router.Response{
			Status:  http.StatusAccepted,
			Message: "error workflow dispatch accepted",
		})
	}
}
