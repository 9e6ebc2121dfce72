package employee

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
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("/options", handler.GetOptions)
		employees.GET("", middleware.RequireCapability(enforcer, rbac.ResourceEmployee, rbac.ActionRead), handler.GetRoster)
		employees.GET("/:id", middleware.RequireCapability(enforcer, rbac.ResourceEmployee, rbac.ActionRead), handler.GetById)
		employees.POST("", middleware.RequireCapability(enforcer, rbac.ResourceEmployee, rbac.ActionWrite), handler.Create)
		employees.PUT("/:id", middleware.RequireCapability(enforcer, rbac.ResourceEmployee, rbac.ActionWrite), handler.Update)
		employees.DELETE("/:id", middleware.RequireCapability(enforcer, rbac.ResourceEmployee, rbac.ActionWrite), handler.Delete)
	}
}
