package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nodeflow-io/nodeflow/engine/auth/uc"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// Middleware handles API key authentication for all protected routes.
type Middleware struct {
	validate *uc.ValidateAPIKey
}

func NewMiddleware(repo uc.Repository) *Middleware {
	return &Middleware{validate: uc.NewValidateAPIKey(repo)}
}

// Authenticate extracts the Bearer API key from the Authorization header,
// validates it and attaches the owning user to the request context. Push
// channel handshakes cannot set headers, so a pushRef query credential is
// accepted as a fallback.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		plaintext, ok := extractKey(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": http.StatusUnauthorized,
				"error":  "Missing or malformed Authorization header",
			})
			return
		}
		user, err := m.validate.Execute(c.Request.Context(), plaintext)
		if err != nil {
			log.Debug("API key validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status": http.StatusUnauthorized,
				"error":  "Invalid API key",
			})
			return
		}
		c.Request = c.Request.WithContext(ContextWithUser(c.Request.Context(), user))
		c.Next()
	}
}

// RequireAdmin gates admin-provisioning routes on the admin role. Must
// run after Authenticate.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c.Request.Context())
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status": http.StatusForbidden,
				"error":  "Admin role required",
			})
			return
		}
		c.Next()
	}
}

func extractKey(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1]), true
		}
		return "", false
	}
	if pushRef := c.Query("pushRef"); pushRef != "" {
		return pushRef, true
	}
	return "", false
}
