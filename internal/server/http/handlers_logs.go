package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
)

// listLogs pages through the caller's audit records, newest first.
func (s *Server) listLogs(c *gin.Context) {
	subject, ok := Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	page, err := s.predict.ListLogs(c.Request.Context(), subject, c.Query("page_token"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := logListResponse{
		Logs:          make([]logResponse, 0, len(page.Records)),
		NextPageToken: page.NextToken,
	}
	for _, rec := range page.Records {
		out.Logs = append(out.Logs, toLogResponse(rec))
	}
	c.JSON(http.StatusOK, out)
}

// stats summarizes the audit trail.
func (s *Server) stats(c *gin.Context) {
	subject, ok := Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
		return
	}
	st, err := s.predict.Stats(c.Request.Context(), subject)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		TotalPredictions:  st.TotalRecords,
		CallerPredictions: st.CallerRecords,
	})
}

// getLog returns one audit record owned by the caller.
func (s *Server) getLog(c *gin.Context) {
	subject, ok := Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid log id", CorrelationID: CorrelationID(c)})
		return
	}
	rec, err := s.predict.GetLog(c.Request.Context(), subject, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLogResponse(*rec))
}
