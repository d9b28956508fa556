package httpserver

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/akarpov87/predictgate/internal/limiter"
	"github.com/akarpov87/predictgate/internal/service"
)

const (
	ctxKeySubject       = "predictgate.subject"
	ctxKeyCorrelationID = "predictgate.correlation_id"

	headerCorrelationID = "X-Correlation-ID"
)

// Logging assigns a correlation ID to each request and logs method, path,
// status, and duration. Payloads are never logged.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := ""
		if id, err := uuid.NewV4(); err == nil {
			cid = id.String()[:8]
		}
		c.Set(ctxKeyCorrelationID, cid)
		c.Header(headerCorrelationID, cid)

		start := time.Now()
		c.Next()

		log.Info("http",
			zap.String("correlation_id", cid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}

// Recover turns panics into 500 responses with a logged stack.
func Recover(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errorResponse{Error: "internal server error", CorrelationID: CorrelationID(c)})
			}
		}()
		c.Next()
	}
}

// RateLimitByIP throttles unauthenticated endpoints by client address,
// slowing down key brute-force and key minting. Authenticated traffic is
// admitted inside the predict service, keyed by subject.
func RateLimitByIP(gate limiter.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := gate.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(retry/time.Second)+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				errorResponse{Error: "rate limited", CorrelationID: CorrelationID(c)})
			return
		}
		c.Next()
	}
}

// RequireSession authenticates the Bearer session token and stores the
// subject in the request context. Invalid and expired tokens produce the
// same external message; the distinction is logged internally.
func RequireSession(auth service.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if header == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
			return
		}
		subject, err := auth.Verify(token)
		if err != nil {
			log.Warn("session rejected",
				zap.String("correlation_id", CorrelationID(c)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
			return
		}
		c.Set(ctxKeySubject, subject)
		c.Next()
	}
}

// Subject fetches the authenticated credential ID from the request context.
func Subject(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxKeySubject)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CorrelationID fetches the request correlation ID, if assigned.
func CorrelationID(c *gin.Context) string {
	return c.GetString(ctxKeyCorrelationID)
}
