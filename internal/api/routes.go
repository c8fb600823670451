package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.WorkerInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	cameras := s.router.Group("/cameras")
	{
		cameras.GET("", s.cameraHandler.ListCameras)
		cameras.POST("", s.cameraHandler.StartCamera)
		cameras.GET("/:camera_id", s.cameraHandler.GetCamera)
		cameras.POST("/:camera_id/stop", s.cameraHandler.StopCamera)
		cameras.POST("/:camera_id/restart", s.cameraHandler.RestartCamera)
		cameras.GET("/:camera_id/frame", s.cameraHandler.GetLatestFrame)
	}

	presence := s.router.Group("/presence")
	{
		presence.GET("", s.presenceHandler.GetBuildingOccupancy)
		presence.GET("/floors/:floor_id", s.presenceHandler.GetFloorOccupancy)
	}

	alerts := s.router.Group("/alerts")
	{
		alerts.GET("/cooldowns", s.alertsHandler.GetCooldowns)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
		system.GET("/debug", s.systemHandler.GetDebugInfo)
	}

	worker := s.router.Group("/worker")
	{
		worker.GET("/info", s.workerHandler.GetInfo)
		worker.POST("/shutdown", s.workerHandler.Shutdown)
	}
}
