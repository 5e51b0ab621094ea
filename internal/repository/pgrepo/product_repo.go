package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, created_at, name, description, price_usdc`

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (p *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price_usdc)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns,
		product.ID, product.Name, product.Description, product.PriceUSDC,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "creating product `%s`", product.Name)
	}
	return created, nil
}

func (p *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by id `%s`", id)
	}
	return product, nil
}

func (p *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return 0, convertErr(err, "counting products")
	}
	return count, nil
}

func (p *ProductRepository) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Product, string, error) {
	cursor, cursorErr := decodePageCursor(nextToken)
	if cursorErr != nil {
		return nil, "", cursorErr
	}

	var rows pgx.Rows
	var err error
	if cursor == nil {
		rows, err = p.db.Query(ctx, `
			SELECT `+productColumns+` FROM products
			ORDER BY created_at DESC, id DESC
			LIMIT $1`, limit+1)
	} else {
		rows, err = p.db.Query(ctx, `
			SELECT `+productColumns+` FROM products
			WHERE (created_at, id) < ($1, $2::uuid)
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, "", convertErr(err, "listing products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, "", convertErr(scanErr, "scanning product row")
		}
		products = append(products, *product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, "", convertErr(rowsErr, "listing products")
	}

	var next string
	if uint(len(products)) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		next = encodePageCursor(last.CreatedAt, last.ID)
	}
	return products, next, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.CreatedAt,
		&product.Name,
		&product.Description,
		&product.PriceUSDC,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &product, nil
}
