package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// createKey issues a new API key. The plaintext appears in this response
// and nowhere else; it is deliberately kept out of all log statements.
func (s *Server) createKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", CorrelationID: CorrelationID(c)})
		return
	}

	issued, err := s.auth.IssueKey(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("api key issued",
		zap.String("correlation_id", CorrelationID(c)),
		zap.String("key_id", issued.Credential.ID.String()),
		zap.String("name", issued.Credential.Name),
	)
	c.JSON(http.StatusCreated, createKeyResponse{
		ID:        issued.Credential.ID.String(),
		Name:      issued.Credential.Name,
		Key:       issued.Plaintext,
		CreatedAt: issued.Credential.CreatedAt,
	})
}

// getToken exchanges an API key for a session token.
func (s *Server) getToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", CorrelationID: CorrelationID(c)})
		return
	}

	sess, err := s.auth.Exchange(c.Request.Context(), req.APIKey)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: sess.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(sess.ExpiresAt).Seconds()),
		ExpiresAt:   sess.ExpiresAt,
	})
}

// listKeys returns credential metadata for operators; key material never
// leaves the service layer.
func (s *Server) listKeys(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	creds, err := s.auth.ListKeys(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]keyInfo, 0, len(creds))
	for _, cred := range creds {
		out = append(out, toKeyInfo(cred))
	}
	c.JSON(http.StatusOK, out)
}

// revokeKey soft-revokes a credential.
func (s *Server) revokeKey(c *gin.Context) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid key id", CorrelationID: CorrelationID(c)})
		return
	}
	if err := s.auth.Revoke(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("api key revoked",
		zap.String("correlation_id", CorrelationID(c)),
		zap.String("key_id", id.String()),
	)
	c.JSON(http.StatusOK, gin.H{"message": "key revoked"})
}
