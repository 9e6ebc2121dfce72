package app

import (
	"database/sql"

	"github.com/sa99080/pharmacy-hub/internal/auth"
	"github.com/sa99080/pharmacy-hub/internal/employee"
	"github.com/sa99080/pharmacy-hub/internal/holiday"
	"github.com/sa99080/pharmacy-hub/internal/leave"
	"github.com/sa99080/pharmacy-hub/internal/messaging/kafka"
	"github.com/sa99080/pharmacy-hub/internal/middleware"
	"github.com/sa99080/pharmacy-hub/internal/rbac"
	"github.com/sa99080/pharmacy-hub/internal/schedule"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	scheduleRepo := schedule.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}

	// --- Services ---
	balanceService := leave.NewBalanceService(leaveRepo)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, outboxRepo)
	employeeService := employee.NewService(db, employeeRepo, balanceService, rdb)
	authService := auth.NewService(authRepo, employeeRepo)
	scheduleService := schedule.NewService(scheduleRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService, balanceService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	holidayHandler := holiday.NewHandler()

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, enforcer)
		leave.RegisterRoutes(api, leaveHandler, enforcer, rdb)
		schedule.RegisterRoutes(api, scheduleHandler, enforcer)
		holiday.RegisterRoutes(api, holidayHandler)
	}

	return nil
}
