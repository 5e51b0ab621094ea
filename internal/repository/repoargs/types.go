package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusExtra вспомогательные поля, атомарно обновляемые вместе со статусом заказа.
// nil-поля не трогаются.
type OrderStatusExtra struct {
	PaidAt             *time.Time
	MuralTransactionID *string
	PayoutRequestID    *string
	WithdrawalID       *string
}

// WithdrawalStatusExtra вспомогательные поля, атомарно обновляемые вместе со статусом вывода.
type WithdrawalStatusExtra struct {
	PayoutRequestID *string
	AmountCOP       *decimal.Decimal
	FailureReason   *string
}
