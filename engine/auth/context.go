package auth

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
)

type contextKey string

const contextKeyUser contextKey = "auth_user"

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}

// UserFromContext returns the authenticated user, or nil when the request
// was not authenticated.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(contextKeyUser).(*model.User)
	return user
}
