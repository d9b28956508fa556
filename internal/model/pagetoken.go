package model

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
)

// AuditPosition is a stable position in the newest-first audit listing:
// the (created_at, id) pair of the last record already returned. Encoding
// a position rather than an offset keeps pages stable while new records
// are appended.
type AuditPosition struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// IsZero reports whether the position marks the start of the listing.
func (p AuditPosition) IsZero() bool {
	return p.CreatedAt.IsZero() && p.ID == uuid.Nil
}

type pageTokenJSON struct {
	CreatedAtNanos int64     `json:"t"`
	ID             uuid.UUID `json:"id"`
}

// Token encodes the position as an opaque URL-safe page token.
func (p AuditPosition) Token() string {
	if p.IsZero() {
		return ""
	}
	b, _ := json.Marshal(pageTokenJSON{CreatedAtNanos: p.CreatedAt.UnixNano(), ID: p.ID})
	return base64.RawURLEncoding.EncodeToString(b)
}

// ParsePageToken decodes a page token produced by Token. An empty token
// yields the zero position.
func ParsePageToken(tok string) (AuditPosition, error) {
	if tok == "" {
		return AuditPosition{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return AuditPosition{}, err
	}
	var j pageTokenJSON
	if err := json.Unmarshal(raw, &j); err != nil {
		return AuditPosition{}, err
	}
	return AuditPosition{CreatedAt: time.Unix(0, j.CreatedAtNanos).UTC(), ID: j.ID}, nil
}
