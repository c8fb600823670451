package api

import (
	"net/http"

	_ "firewatch-worker-go/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) setupSwagger() {
	s.router.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"title":       "Firewatch Worker API",
			"version":     s.cfg.Version,
			"description": "Camera worker API for fire detection, employee presence tracking, and safety alerting",
			"swagger_ui":  "/docs/index.html",
			"endpoints": gin.H{
				"health":   "/health",
				"cameras":  "/cameras",
				"presence": "/presence",
				"alerts":   "/alerts",
				"system":   "/system",
				"worker":   "/worker",
			},
			"worker_id": s.cfg.WorkerID,
			"port":      s.cfg.Port,
		})
	})

	s.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
}
