package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ludvigisaksen/PA-AI/internal/http/handler"
)

// SetupStateRoutes mounts the task/project CRUD surface.
func SetupStateRoutes(router *gin.Engine, stateHandler *handler.StateHandler) {
	setupCommon(router)

	state := router.Group("/state")
	{
		state.GET("/tasks", stateHandler.ListTasks)
		state.POST("/tasks", stateHandler.UpsertTasks)
		state.GET("/projects", stateHandler.ListProjects)
		state.POST("/projects", stateHandler.UpsertProjects)
	}
}

// SetupOpsRoutes mounts the bridge's operational endpoints.
func SetupOpsRoutes(router *gin.Engine, opsHandler *handler.OpsHandler) {
	setupCommon(router)

	router.GET("/cron/daily-briefing", opsHandler.DailyBriefing)
}

func setupCommon(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(handler.NotFound)
	router.NoMethod(handler.NotFound)

	router.GET("/", handler.Health)
	router.GET("/health", handler.Health)
}
