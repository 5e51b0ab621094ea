package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, created_at, updated_at, order_id, expected_amount_usdc,
	destination_address, blockchain, memo, status, idempotency_key, mural_transaction_id, transaction_hash`

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (p *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, expected_amount_usdc, destination_address, blockchain, memo, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+paymentColumns,
		payment.ID, payment.OrderID, payment.ExpectedAmountUSDC, payment.DestinationAddress,
		payment.Blockchain, payment.Memo, payment.Status, payment.IdempotencyKey,
	)
	created, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "creating payment for order `%s`", payment.OrderID)
	}
	return created, nil
}

func (p *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by id `%s`", id)
	}
	return payment, nil
}

func (p *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 LIMIT 1`, orderID)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding payment by order id `%s`", orderID)
	}
	return payment, nil
}

// FindPendingByAmount ищет pending платеж с точным совпадением ожидаемой суммы.
// Вебхук провайдера не несет id платежа, только актив и сумму кредита на общий
// депозитный счет, поэтому сопоставление возможно только по сумме.
func (p *PaymentRepository) FindPendingByAmount(
	ctx context.Context,
	amount decimal.Decimal,
) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = 'pending' AND expected_amount_usdc = $1
		ORDER BY created_at
		LIMIT 1`, amount)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "finding pending payment by amount `%s`", amount.String())
	}
	return payment, nil
}

// MarkReceived переводит платеж pending -> received и записывает внешний id транзакции.
func (p *PaymentRepository) MarkReceived(
	ctx context.Context,
	id string,
	muralTransactionID string,
) (*domain.Payment, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE payments SET status = 'received', mural_transaction_id = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns,
		id, muralTransactionID,
	)
	payment, err := scanPayment(row)
	if err != nil {
		return nil, convertErr(err, "marking payment `%s` received", id)
	}
	return payment, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	err := row.Scan(
		&payment.ID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
		&payment.OrderID,
		&payment.ExpectedAmountUSDC,
		&payment.DestinationAddress,
		&payment.Blockchain,
		&payment.Memo,
		&payment.Status,
		&payment.IdempotencyKey,
		&payment.MuralTransactionID,
		&payment.TransactionHash,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &payment, nil
}
