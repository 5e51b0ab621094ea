package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, created_at, updated_at, order_id, payment_id, payout_request_id,
	status, amount_usdc, amount_cop, failure_reason, idempotency_key`

type WithdrawalRepository struct {
	db DBTX
}

func NewWithdrawalRepository(db DBTX) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (w *WithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `
		INSERT INTO withdrawals (id, order_id, payment_id, status, amount_usdc, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+withdrawalColumns,
		withdrawal.ID, withdrawal.OrderID, withdrawal.PaymentID,
		withdrawal.Status, withdrawal.AmountUSDC, withdrawal.IdempotencyKey,
	)
	created, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "creating withdrawal for order `%s`", withdrawal.OrderID)
	}
	return created, nil
}

func (w *WithdrawalRepository) FindByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "finding withdrawal by id `%s`", id)
	}
	return withdrawal, nil
}

// GetByOrderID возвращает все выводы по заказу. Инвариант "не больше одного вывода на заказ"
// опирается на проверку этого списка перед созданием нового вывода.
func (w *WithdrawalRepository) GetByOrderID(ctx context.Context, orderID string) ([]domain.Withdrawal, error) {
	rows, err := w.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, convertErr(err, "getting withdrawals by order id `%s`", orderID)
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		withdrawal, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning withdrawal row")
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting withdrawals by order id `%s`", orderID)
	}
	return withdrawals, nil
}

func (w *WithdrawalRepository) FindByPayoutRequestID(
	ctx context.Context,
	payoutRequestID string,
) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals WHERE payout_request_id = $1 LIMIT 1`, payoutRequestID)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "finding withdrawal by payout request id `%s`", payoutRequestID)
	}
	return withdrawal, nil
}

func (w *WithdrawalRepository) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.WithdrawalStatusType,
	extra repoargs.WithdrawalStatusExtra,
) (*domain.Withdrawal, error) {
	row := w.db.QueryRow(ctx, `
		UPDATE withdrawals SET
			status = $2,
			updated_at = now(),
			payout_request_id = COALESCE($3, payout_request_id),
			amount_cop = COALESCE($4, amount_cop),
			failure_reason = COALESCE($5, failure_reason)
		WHERE id = $1
		RETURNING `+withdrawalColumns,
		id, status, extra.PayoutRequestID, extra.AmountCOP, extra.FailureReason,
	)
	withdrawal, err := scanWithdrawal(row)
	if err != nil {
		return nil, convertErr(err, "updating withdrawal `%s` status to `%s`", id, status)
	}
	return withdrawal, nil
}

// List возвращает страницу выводов (created_at DESC) и токен следующей страницы.
func (w *WithdrawalRepository) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Withdrawal, string, error) {
	cursor, cursorErr := decodePageCursor(nextToken)
	if cursorErr != nil {
		return nil, "", cursorErr
	}

	var rows pgx.Rows
	var err error
	if cursor == nil {
		rows, err = w.db.Query(ctx, `
			SELECT `+withdrawalColumns+` FROM withdrawals
			ORDER BY created_at DESC, id DESC
			LIMIT $1`, limit+1)
	} else {
		rows, err = w.db.Query(ctx, `
			SELECT `+withdrawalColumns+` FROM withdrawals
			WHERE (created_at, id) < ($1, $2::uuid)
			ORDER BY created_at DESC, id DESC
			LIMIT $3`, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, "", convertErr(err, "listing withdrawals")
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		withdrawal, scanErr := scanWithdrawal(rows)
		if scanErr != nil {
			return nil, "", convertErr(scanErr, "scanning withdrawal row")
		}
		withdrawals = append(withdrawals, *withdrawal)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, "", convertErr(rowsErr, "listing withdrawals")
	}

	var next string
	if uint(len(withdrawals)) > limit {
		withdrawals = withdrawals[:limit]
		last := withdrawals[len(withdrawals)-1]
		next = encodePageCursor(last.CreatedAt, last.ID)
	}
	return withdrawals, next, nil
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var withdrawal domain.Withdrawal
	err := row.Scan(
		&withdrawal.ID,
		&withdrawal.CreatedAt,
		&withdrawal.UpdatedAt,
		&withdrawal.OrderID,
		&withdrawal.PaymentID,
		&withdrawal.PayoutRequestID,
		&withdrawal.Status,
		&withdrawal.AmountUSDC,
		&withdrawal.AmountCOP,
		&withdrawal.FailureReason,
		&withdrawal.IdempotencyKey,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &withdrawal, nil
}
