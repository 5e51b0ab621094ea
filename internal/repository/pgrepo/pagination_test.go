package pgrepo

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/groph-market/internal/domain"
)

func TestPageCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	id := uuid.NewString()

	token := encodePageCursor(createdAt, id)

	cursor, err := decodePageCursor(token)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, createdAt.Equal(cursor.CreatedAt))
	assert.Equal(t, id, cursor.ID)
}

func TestDecodePageCursorEmptyToken(t *testing.T) {
	cursor, err := decodePageCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodePageCursorInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		token string
	}{
		{
			name:  "не base64",
			token: "%%%not-base64%%%",
		},
		{
			name:  "нет разделителя",
			token: base64.StdEncoding.EncodeToString([]byte("2025-03-14T09:26:53Z")),
		},
		{
			name:  "пустой id",
			token: base64.StdEncoding.EncodeToString([]byte("2025-03-14T09:26:53Z|")),
		},
		{
			name:  "id не uuid",
			token: base64.StdEncoding.EncodeToString([]byte("2025-03-14T09:26:53Z|42")),
		},
		{
			name:  "битая метка времени",
			token: base64.StdEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString())),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cursor, err := decodePageCursor(tc.token)
			require.ErrorIs(t, err, domain.ErrInvalidNextToken)
			assert.Nil(t, cursor)
		})
	}
}
