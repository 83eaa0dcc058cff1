package server

import (
	"github.com/cnmzsjbz199328/LazyDog/internal/server/middleware"
	v1 "github.com/cnmzsjbz199328/LazyDog/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler(s.version)
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/api/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))

	if s.config.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)
		api.Use(limiter.Middleware())
	}

	{
		mindMapHandler := v1.NewMindMapHandler(s.service)
		api.POST("/mindmap", mindMapHandler.Generate)
		api.GET("/mindmap", mindMapHandler.Get)
		api.GET("/mindmap/flowchart", mindMapHandler.Flowchart)
		api.POST("/mindmap/expand", mindMapHandler.Expand)

		historyHandler := v1.NewHistoryHandler(s.service)
		api.GET("/history", historyHandler.List)
		api.POST("/history", historyHandler.Save)
		api.DELETE("/history", historyHandler.Clear)
		api.POST("/history/clean", historyHandler.Clean)

		backgroundHandler := v1.NewBackgroundHandler(s.service)
		api.GET("/background", backgroundHandler.Get)
		api.POST("/background", backgroundHandler.Set)
		api.DELETE("/background", backgroundHandler.Clear)

		providerHandler := v1.NewProviderHandler(s.service)
		api.GET("/providers", providerHandler.List)
		api.GET("/settings/api-type", providerHandler.GetAPIType)
		api.PUT("/settings/api-type", providerHandler.SetAPIType)
	}
}
