package pgrepo

import (
	"context"
	"encoding/json"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/jackc/pgx/v5"
)

const cartColumns = `id, created_at, updated_at, items`

type CartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *CartRepository {
	return &CartRepository{db: db}
}

func (c *CartRepository) Create(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	items, marshalErr := json.Marshal(cart.Items)
	if marshalErr != nil {
		return nil, convertErr(marshalErr, "marshaling cart items")
	}
	row := c.db.QueryRow(ctx, `
		INSERT INTO carts (id, items)
		VALUES ($1, $2)
		RETURNING `+cartColumns,
		cart.ID, items,
	)
	created, err := scanCart(row)
	if err != nil {
		return nil, convertErr(err, "creating cart")
	}
	return created, nil
}

func (c *CartRepository) FindByID(ctx context.Context, id string) (*domain.Cart, error) {
	row := c.db.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	cart, err := scanCart(row)
	if err != nil {
		return nil, convertErr(err, "finding cart by id `%s`", id)
	}
	return cart, nil
}

func (c *CartRepository) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Cart, string, error) {
	cursor, cursorErr := decodePageCursor(nextToken)
	if cursorErr != nil {
		return nil, "", cursorErr
	}

	var rows pgx.Rows
	var err error
	if cursor == nil {
		rows, err = c.db.Query(ctx, `
			SELECT `+cartColumns+` FROM carts
			ORDER BY created_at DESC, id DESC
			LIMIT $1`, limit+1)
	} else {
		rows, err = c.db.Query(ctx, `
			SELECT `+cartColumns+` FROM carts
			WHERE (created_at, id) < ($1, $2::uuid)
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, "", convertErr(err, "listing carts")
	}
	defer rows.Close()

	var carts []domain.Cart
	for rows.Next() {
		cart, scanErr := scanCart(rows)
		if scanErr != nil {
			return nil, "", convertErr(scanErr, "scanning cart row")
		}
		carts = append(carts, *cart)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, "", convertErr(rowsErr, "listing carts")
	}

	var next string
	if uint(len(carts)) > limit {
		carts = carts[:limit]
		last := carts[len(carts)-1]
		next = encodePageCursor(last.CreatedAt, last.ID)
	}
	return carts, next, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var items []byte
	err := row.Scan(
		&cart.ID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
		&items,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if unmarshalErr := json.Unmarshal(items, &cart.Items); unmarshalErr != nil {
		return nil, unmarshalErr //nolint:wrapcheck
	}
	return &cart, nil
}
