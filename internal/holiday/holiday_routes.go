package holiday

import (
	"github.com/sa99080/pharmacy-hub/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware())
	{
		holidays.GET("", handler.GetYear)
		holidays.GET("/check", handler.Check)
	}
}
