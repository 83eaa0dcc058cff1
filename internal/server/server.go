package server

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/cnmzsjbz199328/LazyDog/internal/config"
	"github.com/cnmzsjbz199328/LazyDog/internal/notes"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/middleware"
	"github.com/cnmzsjbz199328/LazyDog/internal/server/validator"
)

type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  *zap.Logger
	service *notes.Service
	version string
}

func New(cfg *config.Config, logger *zap.Logger, service *notes.Service, version string) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator.InitValidator()

	engine := gin.New()

	engine.Use(ginzap.RecoveryWithZap(logger, true))
	engine.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	engine.Use(otelgin.Middleware("lazydog"))
	engine.Use(middleware.RequestID())

	s := &Server{
		router:  engine,
		config:  cfg,
		logger:  logger,
		service: service,
		version: version,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
