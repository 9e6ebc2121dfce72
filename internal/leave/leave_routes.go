package leave

import (
	"github.com/sa99080/pharmacy-hub/internal/middleware"
	"github.com/sa99080/pharmacy-hub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer middleware.Enforcer,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", middleware.RequireCapability(enforcer, rbac.ResourceLeave, rbac.ActionRead), handler.GetOwn)
		leaves.GET("/balance", middleware.RequireCapability(enforcer, rbac.ResourceLeave, rbac.ActionRead), handler.GetBalance)
		leaves.POST("", middleware.RequireCapability(enforcer, rbac.ResourceLeave, rbac.ActionWrite), middleware.Idempotency(rdb), handler.Submit)
		leaves.PUT("/:id", middleware.RequireCapability(enforcer, rbac.ResourceLeave, rbac.ActionWrite), handler.Resubmit)
		leaves.DELETE("/:id", middleware.RequireCapability(enforcer, rbac.ResourceLeave, rbac.ActionWrite), handler.Delete)
	}

	approvals := r.Group("/approvals")
	approvals.Use(middleware.AuthMiddleware())
	{
		approvals.GET("/leaves", middleware.RequireCapability(enforcer, rbac.ResourceApproval, rbac.ActionRead), handler.GetVisible)
		approvals.PATCH("/leaves/:id/status", middleware.RequireCapability(enforcer, rbac.ResourceApproval, rbac.ActionDecide), handler.SetStatus)
	}
}
