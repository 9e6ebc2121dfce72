package schedule

import (
	"github.com/sa99080/pharmacy-hub/internal/middleware"
	"github.com/sa99080/pharmacy-hub/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer middleware.Enforcer,
) {
	schedules := r.Group("/schedules")
	schedules.Use(middleware.AuthMiddleware())
	schedules.Use(middleware.RequireCapability(enforcer, rbac.ResourceSchedule, rbac.ActionRead))
	{
		schedules.GET("", handler.GetForDate)
		schedules.GET("/range", handler.GetForRange)
		schedules.GET("/used-dates", handler.GetUsedDates)
	}
}
