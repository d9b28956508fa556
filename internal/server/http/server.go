// Package httpserver exposes the gated prediction API over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akarpov87/predictgate/internal/config"
	"github.com/akarpov87/predictgate/internal/errs"
	"github.com/akarpov87/predictgate/internal/limiter"
	"github.com/akarpov87/predictgate/internal/service"
)

// Pinger reports storage connectivity (implemented by *postgres.DB).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires services into HTTP handlers. Admission control lives in
// the prediction service, so the handlers stay a thin mapping layer.
type Server struct {
	router    *gin.Engine
	auth      service.AuthService
	predict   service.PredictService
	db        Pinger
	keyGate   limiter.Gate // POST /auth/keys, by client IP
	tokenGate limiter.Gate // POST /auth/token, by client IP
	log       *zap.Logger
}

// New constructs the HTTP server with all middleware and routes registered.
// keyGate and tokenGate throttle the two unauthenticated endpoints.
func New(cfg *config.Config, auth service.AuthService, predict service.PredictService, db Pinger, keyGate, tokenGate limiter.Gate, log *zap.Logger) *Server {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		router:    gin.New(),
		auth:      auth,
		predict:   predict,
		db:        db,
		keyGate:   keyGate,
		tokenGate: tokenGate,
		log:       log,
	}

	s.router.Use(Logging(log))
	s.router.Use(Recover(log))

	corsConfig := cors.DefaultConfig()
	if origins := cfg.CORSOrigins(); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	s.router.Use(cors.New(corsConfig))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.health)
	s.router.GET("/health/detailed", s.healthDetailed)

	auth := s.router.Group("/auth")
	{
		auth.POST("/keys", RateLimitByIP(s.keyGate), s.createKey)
		auth.POST("/token", RateLimitByIP(s.tokenGate), s.getToken)

		protected := auth.Group("", RequireSession(s.auth, s.log))
		protected.GET("/keys", s.listKeys)
		protected.DELETE("/keys/:id", s.revokeKey)
	}

	predict := s.router.Group("/predict", RequireSession(s.auth, s.log))
	{
		predict.POST("", s.predictOne)
		predict.POST("/batch", s.predictBatch)
	}

	logs := s.router.Group("/logs", RequireSession(s.auth, s.log))
	{
		logs.GET("", s.listLogs)
		logs.GET("/stats", s.stats)
		logs.GET("/:id", s.getLog)
	}
}

// Router returns the underlying gin engine (used by main and tests).
func (s *Server) Router() *gin.Engine { return s.router }

// respondError maps service errors onto transport status codes. Credential
// and token failures share one external message so callers cannot probe
// which secrets exist; the distinct kind goes to the internal log only.
func (s *Server) respondError(c *gin.Context, err error) {
	cid := CorrelationID(c)
	switch {
	case errors.Is(err, errs.ErrInvalidCredential),
		errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrExpiredToken):
		s.log.Warn("auth failure", zap.String("correlation_id", cid), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: cid})
	case errors.Is(err, errs.ErrRateLimited):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limited", CorrelationID: cid})
	case errors.Is(err, errs.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "not found", CorrelationID: cid})
	case errors.Is(err, errs.ErrAuditWrite), errors.Is(err, errs.ErrStorage):
		s.log.Error("storage failure", zap.String("correlation_id", cid), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal server error", CorrelationID: cid})
	default:
		s.log.Warn("bad request", zap.String("correlation_id", cid), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error(), CorrelationID: cid})
	}
}
