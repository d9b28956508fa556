package model

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestAuditPosition_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	pos := AuditPosition{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793, time.UTC),
		ID:        uuid.Must(uuid.NewV4()),
	}
	tok := pos.Token()
	require.NotEmpty(t, tok)

	got, err := ParsePageToken(tok)
	require.NoError(t, err)
	require.True(t, got.CreatedAt.Equal(pos.CreatedAt))
	require.Equal(t, pos.ID, got.ID)
}

func TestParsePageToken_Empty(t *testing.T) {
	t.Parallel()

	pos, err := ParsePageToken("")
	require.NoError(t, err)
	require.True(t, pos.IsZero())
	require.Empty(t, pos.Token())
}

func TestParsePageToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := ParsePageToken("not a token %%%")
	require.Error(t, err)

	_, err = ParsePageToken("bm90LWpzb24") // valid base64, not JSON
	require.Error(t, err)
}
