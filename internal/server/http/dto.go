package httpserver

import (
	"encoding/json"
	"time"

	"github.com/akarpov87/predictgate/internal/model"
	"github.com/akarpov87/predictgate/internal/predictor"
)

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type createKeyRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// createKeyResponse is the only payload that ever carries the plaintext key.
type createKeyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

type keyInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	KeyPrefix   string    `json:"key_prefix"`
	Revoked     bool      `json:"revoked"`
	CreatedAt   time.Time `json:"created_at"`
}

func toKeyInfo(c model.Credential) keyInfo {
	return keyInfo{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		KeyPrefix:   c.KeyPrefix,
		Revoked:     c.Revoked,
		CreatedAt:   c.CreatedAt,
	}
}

type tokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type batchPredictRequest struct {
	Houses []predictor.Features `json:"houses" binding:"required,min=1"`
}

type predictionResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency"`
	LogID          string  `json:"log_id"`
}

type batchPredictionResponse struct {
	Predictions []predictionResponse `json:"predictions"`
	Count       int                  `json:"count"`
	BatchID     string               `json:"batch_id"`
}

type logResponse struct {
	ID             string          `json:"id"`
	CredentialID   string          `json:"credential_id"`
	Features       json.RawMessage `json:"features"`
	PredictedPrice float64         `json:"predicted_price"`
	ResponseTimeMS int64           `json:"response_time_ms"`
	RequestType    string          `json:"request_type"`
	BatchID        string          `json:"batch_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toLogResponse(rec model.AuditRecord) logResponse {
	out := logResponse{
		ID:             rec.ID.String(),
		CredentialID:   rec.CredentialID.String(),
		Features:       json.RawMessage(rec.Features),
		PredictedPrice: rec.PredictedPrice,
		ResponseTimeMS: rec.ResponseTimeMS,
		RequestType:    rec.RequestType,
		CreatedAt:      rec.CreatedAt,
	}
	if rec.BatchID != nil {
		out.BatchID = rec.BatchID.String()
	}
	return out
}

type logListResponse struct {
	Logs          []logResponse `json:"logs"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type statsResponse struct {
	TotalPredictions  int64 `json:"total_predictions"`
	CallerPredictions int64 `json:"caller_predictions"`
}
