package pgrepo

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fsdevblog/groph-market/internal/domain"
)

// pageCursor позиция keyset-пагинации: записи сортируются по (created_at DESC, id DESC),
// курсор указывает на последний уже отданный элемент.
type pageCursor struct {
	CreatedAt time.Time
	ID        string
}

// encodePageCursor кодирует курсор в непрозрачный base64 токен для клиента.
func encodePageCursor(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// decodePageCursor разбирает токен. Битый или чужой токен - это ошибка клиента
// domain.ErrInvalidNextToken, а не "начать сначала".
func decodePageCursor(token string) (*pageCursor, error) {
	if token == "" {
		return nil, nil //nolint:nilnil
	}
	raw, decodeErr := base64.StdEncoding.DecodeString(token)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode next token: %w", domain.ErrInvalidNextToken)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("malformed next token: %w", domain.ErrInvalidNextToken)
	}
	if _, uuidErr := uuid.Parse(parts[1]); uuidErr != nil {
		return nil, fmt.Errorf("next token id: %w", domain.ErrInvalidNextToken)
	}
	createdAt, parseErr := time.Parse(time.RFC3339Nano, parts[0])
	if parseErr != nil {
		return nil, fmt.Errorf("next token timestamp: %w", domain.ErrInvalidNextToken)
	}
	return &pageCursor{CreatedAt: createdAt, ID: parts[1]}, nil
}
