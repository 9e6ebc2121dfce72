package middleware

import (
	"net/http"

	"github.com/sa99080/pharmacy-hub/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Enforcer is the subset of casbin the middleware needs.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// RequireCapability gates a route on the actor's rank having the given
// resource/action capability. The rank claim is set by AuthMiddleware.
func RequireCapability(e Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorRank := c.GetString("rank")
		if actorRank == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := e.Enforce(actorRank, resource, action)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to perform this action",
				gin.H{"required": resource + ":" + action},
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
