package server

import (
	"github.com/nulzo/prompt-gateway/internal/server/middleware"
	v1 "github.com/nulzo/prompt-gateway/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)

	limiter := middleware.NewRateLimiter(s.config.RateLimit.RequestsPerSecond, s.config.RateLimit.Burst, s.logger)

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	api.Use(limiter.Middleware())
	{
		generateHandler := v1.NewGenerateHandler(s.gateway, s.validator)
		api.POST("/generate", generateHandler.Generate)

		providerHandler := v1.NewProviderHandler(s.gateway)
		api.GET("/providers", providerHandler.ListProviders)
	}
}
