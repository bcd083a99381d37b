package authrouter

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nodeflow-io/nodeflow/engine/auth"
	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/auth/uc"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/engine/infra/server/router"
)

// Deps wires the auth repository into the routers.
type Deps struct {
	Repo uc.Repository
}

// Register mounts user-provisioning and key-management routes. The admin
// group must already be gated by the RequireAdmin middleware.
func Register(api, admin *gin.RouterGroup, deps *Deps) {
	admin.POST("/users", handleCreateUser(deps))
	admin.GET("/users", handleListUsers(deps))
	admin.DELETE("/users/:user_id", handleDeleteUser(deps))
	admin.POST("/users/:user_id/keys", handleGenerateKeyFor(deps))

	api.POST("/auth/keys", handleGenerateKey(deps))
	api.DELETE("/auth/keys/:key_id", handleRevokeKey(deps))
}

// CreateUserRequest provisions a new account.
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role,omitempty"`
}

// handleCreateUser provisions a user account.
//
//	@Summary	Create user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateUserRequest	true	"User to create"
//	@Success	201		{object}	router.Response
//	@Failure	400		{object}	router.Problem
//	@Router		/admin/users [post]
func handleCreateUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body CreateUserRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			router.RespondBadRequest(c, fmt.Sprintf("invalid request body: %s", err))
			return
		}
		user, err := uc.NewCreateUser(deps.Repo).Execute(c.Request.Context(), &uc.CreateUserInput{
			Email: body.Email,
			Role:  model.Role(body.Role),
		})
		if err != nil {
			if errors.Is(err, uc.ErrInvalidInput) {
				router.RespondBadRequest(c, err.Error())
				return
			}
			router.RespondInternalError(c, "failed to create user")
			return
		}
		router.RespondCreated(c, "user created", user)
	}
}

// handleListUsers lists all accounts.
//
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Success	200	{object}	router.Response
//	@Router		/admin/users [get]
func handleListUsers(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := deps.Repo.ListUsers(c.Request.Context())
		if err != nil {
			router.RespondInternalError(c, "failed to list users")
			return
		}
		router.RespondOK(c, "", users)
	}
}

// handleDeleteUser removes an account and cascades its keys.
//
//	@Summary	Delete user
//	@Tags		users
//	@Param		user_id	path	string	true	"User ID"
//	@Success	200	{object}	router.Response
//	@Router		/admin/users/{user_id} [delete]
func handleDeleteUser(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := core.ID(c.Param("user_id"))
		if err := deps.Repo.DeleteUser(c.Request.Context(), userID); err != nil {
			router.RespondInternalError(c, "failed to delete user")
			return
		}
		router.RespondOK(c, "user deleted", nil)
	}
}

// handleGenerateKeyFor issues a key on behalf of another user.
//
//	@Summary	Issue API key for user
//	@Tags		users
//	@Produce	json
//	@Param		user_id	path		string	true	"User ID"
//	@Success	201		{object}	router.Response
//	@Router		/admin/users/{user_id}/keys [post]
func handleGenerateKeyFor(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := core.ID(c.Param("user_id"))
		issueKey(c, deps, userID)
	}
}

// handleGenerateKey issues a key for the authenticated user.
//
//	@Summary	Issue API key
//	@Tags		auth
//	@Produce	json
//	@Success	201	{object}	router.Response
//	@Router		/auth/keys [post]
func handleGenerateKey(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.UserFromContext(c.Request.Context())
		if user == nil {
			router.RespondProblem(c, 401, "UNAUTHORIZED", "authentication required")
			return
		}
		issueKey(c, deps, user.ID)
	}
}

func issueKey(c *gin.Context, deps *Deps, userID core.ID) {
	plaintext, err := uc.NewGenerateAPIKey(deps.Repo, userID).Execute(c.Request.Context())
	if err != nil {
		if errors.Is(err, uc.ErrUserNotFound) {
			router.RespondNotFound(c, "user not found")
			return
		}
		router.RespondInternalError(c, "failed to generate API key")
		return
	}
	// The plaintext is shown exactly once; only its hash is stored.
	router.RespondCreated(c, "API key created", gin.H{"api_key": plaintext})
}

// handleRevokeKey deletes one of the authenticated user's keys.
//
//	@Summary	Revoke API key
//	@Tags		auth
//	@Param		key_id	path	string	true	"API key ID"
//	@Success	200	{object}	router.Response
//	@Router		/auth/keys/{key_id} [delete]
func handleRevokeKey(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.UserFromContext(c.Request.Context())
		if user == nil {
			router.RespondProblem(c, 401, "UNAUTHORIZED", "authentication required")
			return
		}
		keyID := core.ID(c.Param("key_id"))
		if err := uc.NewRevokeAPIKey(deps.Repo, user.ID, keyID).Execute(c.Request.Context()); err != nil {
			if errors.Is(err, uc.ErrInvalidAPIKey) {
				router.RespondNotFound(c, "API key not found")
				return
			}
			router.RespondInternalError(c, "failed to revoke API key")
			return
		}
		router.RespondOK(c, "API key revoked", nil)
	}
}
