package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type Product struct {
	ID          string
	CreatedAt   time.Time
	Name        string
	Description string
	PriceUSDC   decimal.Decimal
}

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []CartItem
}

type Order struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	CartID    string
	PaymentID string
	Status    OrderStatusType
	TotalUSDC decimal.Decimal
	// Поля ниже заполняются по мере прохождения заказа по жизненному циклу.
	PaidAt             *time.Time
	MuralTransactionID *string
	PayoutRequestID    *string
	WithdrawalID       *string
}

type Payment struct {
	ID                 string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	OrderID            string
	ExpectedAmountUSDC decimal.Decimal
	DestinationAddress string
	Blockchain         string
	Memo               string
	Status             PaymentStatusType
	IdempotencyKey     string
	MuralTransactionID *string
	// TransactionHash хэш транзакции, если USDC отправлял сам бэкенд. Сейчас не заполняется.
	TransactionHash *string
}

type Withdrawal struct {
	ID              string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	OrderID         string
	PaymentID       string
	PayoutRequestID *string
	Status          WithdrawalStatusType
	AmountUSDC      decimal.Decimal
	AmountCOP       *decimal.Decimal
	FailureReason   *string
	IdempotencyKey  string
}
