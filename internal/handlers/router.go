package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/services"
	"github.com/tutorlab/tutoring-service/internal/storage"
	"github.com/tutorlab/tutoring-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	userHandler     *UserHandler
	scheduleHandler *ScheduleHandler
	homeworkHandler *MaterialHandler[models.Homework]
	noteHandler     *MaterialHandler[models.Note]
	fileHandler     *FileHandler
	authMiddleware  *AuthMiddleware

	serviceManager services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, store storage.DocumentStore, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		scheduleHandler: NewScheduleHandler(serviceManager.Schedule(), logger),
		homeworkHandler: NewMaterialHandler(serviceManager.Homework(), store, logger),
		noteHandler:     NewMaterialHandler(serviceManager.Note(), store, logger),
		fileHandler:     NewFileHandler(store, logger),
		authMiddleware:  NewAuthMiddleware(serviceManager.Auth()),
		serviceManager:  serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	router.POST("/auth/token", hm.authHandler.Login)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.RequireAuth())
	{
		v1.POST("/auth/changepassword", hm.authHandler.ChangePassword)

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.Me)
			users.PUT("/me", hm.userHandler.UpdateMe)

			users.POST("", hm.authMiddleware.RequireSuper(), hm.userHandler.CreateUser)
			users.GET("", hm.authMiddleware.RequireSuper(), hm.userHandler.ListUsers)
			users.GET("/export", hm.authMiddleware.RequireSuper(), hm.userHandler.ExportUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.authMiddleware.RequireSuper(), hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.authMiddleware.RequireSuper(), hm.userHandler.DeleteUser)
		}

		schedules := v1.Group("/schedules")
		{
			schedules.POST("", hm.authMiddleware.RequireSuper(), hm.scheduleHandler.CreateSchedule)
			schedules.GET("", hm.scheduleHandler.ListSchedules)
			schedules.PUT("/:id", hm.authMiddleware.RequireSuper(), hm.scheduleHandler.UpdateSchedule)
			schedules.DELETE("/:id", hm.authMiddleware.RequireSuper(), hm.scheduleHandler.DeleteSchedule)
		}

		setupMaterialRoutes(v1.Group("/homework"), hm.homeworkHandler, hm.authMiddleware)
		setupMaterialRoutes(v1.Group("/notes"), hm.noteHandler, hm.authMiddleware)

		v1.GET("/files/:name", hm.fileHandler.Download)
	}
}

func setupMaterialRoutes[T any](group *gin.RouterGroup, handler *MaterialHandler[T], auth *AuthMiddleware) {
	group.POST("", auth.RequireSuper(), handler.Create)
	group.GET("", handler.List)
	group.GET("/search", handler.Search)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", auth.RequireSuper(), handler.Update)
	group.DELETE("/:id", auth.RequireSuper(), handler.Delete)
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "tutoring-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
