package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"firewatch-worker-go/internal/api/handlers"
	"firewatch-worker-go/internal/api/middleware"
	"firewatch-worker-go/internal/config"
	"firewatch-worker-go/internal/services"
)

type Server struct {
	cfg    *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler   *handlers.HealthHandler
	cameraHandler   *handlers.CameraHandler
	presenceHandler *handlers.PresenceHandler
	alertsHandler   *handlers.AlertsHandler
	systemHandler   *handlers.SystemHandler
	workerHandler   *handlers.WorkerHandler
}

func NewServer(cfg *config.Config, container *services.ServiceContainer) (*Server, error) {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:             cfg,
		router:          gin.New(),
		healthHandler:   handlers.NewHealthHandler(container),
		cameraHandler:   handlers.NewCameraHandler(cfg, container.CameraManager),
		presenceHandler: handlers.NewPresenceHandler(container.Presence),
		alertsHandler:   handlers.NewAlertsHandler(cfg, container.Alerting, container.CameraManager),
		systemHandler:   handlers.NewSystemHandler(container),
		workerHandler:   handlers.NewWorkerHandler(cfg),
	}

	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())

	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s, nil
}

func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
