package router

import (
	"github.com/gin-gonic/gin"

	"repowatch.app/watcher/internal/http/handler"
	"repowatch.app/watcher/internal/metrics"
	"repowatch.app/watcher/internal/service"
)

func SetupRoutes(router *gin.Engine, watches service.WatchService, m *metrics.Metrics) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	watchHandler := handler.NewWatchHandler(watches)
	router.GET("/", handler.Home)
	router.POST("/subscribe", watchHandler.Subscribe)
	router.GET("/inspect", watchHandler.Inspect)
	router.DELETE("/clear", watchHandler.Clear)
}
