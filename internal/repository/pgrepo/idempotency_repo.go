package pgrepo

import (
	"context"
	"time"
)

// IdempotencyRepository хранит записи "ключ уже занят" с истечением по TTL.
// Существование живой записи означает "уже обработано"; отдельной операции
// освобождения нет, просроченные записи перезахватываются на месте.
type IdempotencyRepository struct {
	db DBTX
}

func NewIdempotencyRepository(db DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Claim пытается занять ключ одной атомарной командой: вставка либо перезахват
// просроченной записи. Возвращает true только если ключ занят этим вызовом.
// Гонки check-then-insert исключены: решение принимает сама БД.
// Любая ошибка стора - жесткий отказ, а не "не занято".
func (i *IdempotencyRepository) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	tag, err := i.db.Exec(ctx, `
		INSERT INTO idempotency_records (key, expires_at)
		VALUES ($1, now() + $2)
		ON CONFLICT (key) DO UPDATE SET expires_at = EXCLUDED.expires_at, response = NULL
		WHERE idempotency_records.expires_at < now()`,
		key, ttl,
	)
	if err != nil {
		return false, convertErr(err, "claiming idempotency key `%s`", key)
	}
	return tag.RowsAffected() == 1, nil
}

// PutResponse сохраняет сериализованный ответ под ключом (дедупликация на уровне запроса,
// например повторный POST /payments с тем же idempotencyKey).
func (i *IdempotencyRepository) PutResponse(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	_, err := i.db.Exec(ctx, `
		INSERT INTO idempotency_records (key, response, expires_at)
		VALUES ($1, $2, now() + $3)
		ON CONFLICT (key) DO UPDATE SET response = EXCLUDED.response, expires_at = EXCLUDED.expires_at`,
		key, string(response), ttl,
	)
	if err != nil {
		return convertErr(err, "putting idempotency response for key `%s`", key)
	}
	return nil
}

// GetResponse возвращает сохраненный ответ или domain.ErrRecordNotFound,
// если ключа нет, он просрочен или ответа под ним не записано.
func (i *IdempotencyRepository) GetResponse(ctx context.Context, key string) ([]byte, error) {
	row := i.db.QueryRow(ctx, `
		SELECT response FROM idempotency_records
		WHERE key = $1 AND response IS NOT NULL AND expires_at >= now()`,
		key,
	)
	var response string
	if err := row.Scan(&response); err != nil {
		return nil, convertErr(err, "getting idempotency response for key `%s`", key)
	}
	return []byte(response), nil
}
