package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, created_at, updated_at, cart_id, payment_id, status, total_usdc,
	paid_at, mural_transaction_id, payout_request_id, withdrawal_id`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (o *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		INSERT INTO orders (id, cart_id, payment_id, status, total_usdc)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		order.ID, order.CartID, order.PaymentID, order.Status, order.TotalUSDC,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for cart `%s`", order.CartID)
	}
	return created, nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id `%s`", id)
	}
	return order, nil
}

// UpdateStatus атомарно выставляет статус, updated_at и переданные extra-поля одной командой.
// Легальность перехода здесь не проверяется - за порядок вызовов отвечает вызывающая сторона
// (вебхук-диспетчер и оркестратор выплат).
func (o *OrderRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.OrderStatusType,
	extra repoargs.OrderStatusExtra,
) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders SET
			status = $2,
			updated_at = now(),
			paid_at = COALESCE($3, paid_at),
			mural_transaction_id = COALESCE($4, mural_transaction_id),
			payout_request_id = COALESCE($5, payout_request_id),
			withdrawal_id = COALESCE($6::uuid, withdrawal_id)
		WHERE id = $1
		RETURNING `+orderColumns,
		id, status, extra.PaidAt, extra.MuralTransactionID, extra.PayoutRequestID, extra.WithdrawalID,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating order `%s` status to `%s`", id, status)
	}
	return order, nil
}

// List возвращает страницу заказов (created_at DESC) и токен следующей страницы.
func (o *OrderRepository) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Order, string, error) {
	cursor, cursorErr := decodePageCursor(nextToken)
	if cursorErr != nil {
		return nil, "", cursorErr
	}

	var rows pgx.Rows
	var err error
	// limit+1 чтобы понять, есть ли следующая страница.
	if cursor == nil {
		rows, err = o.db.Query(ctx, `
			SELECT `+orderColumns+` FROM orders
			ORDER BY created_at DESC, id DESC
			LIMIT $1`, limit+1)
	} else {
		rows, err = o.db.Query(ctx, `
			SELECT `+orderColumns+` FROM orders
			WHERE (created_at, id) < ($1, $2::uuid)
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, "", convertErr(err, "listing orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, "", convertErr(scanErr, "scanning order row")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, "", convertErr(rowsErr, "listing orders")
	}

	var next string
	if uint(len(orders)) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		next = encodePageCursor(last.CreatedAt, last.ID)
	}
	return orders, next, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CartID,
		&order.PaymentID,
		&order.Status,
		&order.TotalUSDC,
		&order.PaidAt,
		&order.MuralTransactionID,
		&order.PayoutRequestID,
		&order.WithdrawalID,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &order, nil
}
