package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akarpov87/predictgate/internal/predictor"
)

// predictOne runs a single prediction: gate admission and the mandatory
// audit write happen inside the service.
func (s *Server) predictOne(c *gin.Context) {
	subject, ok := Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
		return
	}

	var features predictor.Features
	if err := c.ShouldBindJSON(&features); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", CorrelationID: CorrelationID(c)})
		return
	}
	if err := features.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), CorrelationID: CorrelationID(c)})
		return
	}

	rec, err := s.predict.Predict(c.Request.Context(), subject, features)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info("prediction served",
		zap.String("correlation_id", CorrelationID(c)),
		zap.String("log_id", rec.ID.String()),
		zap.Int64("dur_ms", rec.ResponseTimeMS),
	)
	c.JSON(http.StatusOK, predictionResponse{
		PredictedPrice: rec.PredictedPrice,
		Currency:       "USD",
		LogID:          rec.ID.String(),
	})
}

// predictBatch prices several properties in one admitted call.
func (s *Server) predictBatch(c *gin.Context) {
	subject, ok := Subject(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", CorrelationID: CorrelationID(c)})
		return
	}

	var req batchPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", CorrelationID: CorrelationID(c)})
		return
	}
	for _, f := range req.Houses {
		if err := f.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), CorrelationID: CorrelationID(c)})
			return
		}
	}

	recs, err := s.predict.PredictBatch(c.Request.Context(), subject, req.Houses)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := batchPredictionResponse{
		Predictions: make([]predictionResponse, 0, len(recs)),
		Count:       len(recs),
	}
	for _, rec := range recs {
		out.Predictions = append(out.Predictions, predictionResponse{
			PredictedPrice: rec.PredictedPrice,
			Currency:       "USD",
			LogID:          rec.ID.String(),
		})
	}
	if len(recs) > 0 && recs[0].BatchID != nil {
		out.BatchID = recs[0].BatchID.String()
	}
	s.log.Info("batch prediction served",
		zap.String("correlation_id", CorrelationID(c)),
		zap.Int("count", out.Count),
		zap.String("batch_id", out.BatchID),
	)
	c.JSON(http.StatusOK, out)
}
