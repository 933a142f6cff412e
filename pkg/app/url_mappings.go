package app

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfagundes/taskfan/internal/controllers"
)

func SetupMappings(app *Application) {
	api := app.Engine.Group("/api")
	{
		api.POST("/tasks", controllers.NewCreateTaskController(app.Tasks).Handle)
		api.POST("/workers/register", controllers.NewRegisterWorkerController(app.Registry).Handle)
		api.GET("/workers", controllers.NewListWorkersController(app.Registry).Handle)
	}

	app.Engine.GET("/health", controllers.NewHealthController("").Handle)
	app.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if dir := app.Config.StaticDir; dir != "" {
		app.Engine.StaticFile("/", filepath.Join(dir, "index.html"))
	}
}
