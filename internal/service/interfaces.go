package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/transport/mural"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Product, string, error)
}

type CartRepository interface {
	Create(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	FindByID(ctx context.Context, id string) (*domain.Cart, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Cart, string, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(
		ctx context.Context,
		id string,
		status domain.OrderStatusType,
		extra repoargs.OrderStatusExtra,
	) (*domain.Order, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Order, string, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)
	FindPendingByAmount(ctx context.Context, amount decimal.Decimal) (*domain.Payment, error)
	MarkReceived(ctx context.Context, id string, muralTransactionID string) (*domain.Payment, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) (*domain.Withdrawal, error)
	FindByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	GetByOrderID(ctx context.Context, orderID string) ([]domain.Withdrawal, error)
	FindByPayoutRequestID(ctx context.Context, payoutRequestID string) (*domain.Withdrawal, error)
	UpdateStatus(
		ctx context.Context,
		id string,
		status domain.WithdrawalStatusType,
		extra repoargs.WithdrawalStatusExtra,
	) (*domain.Withdrawal, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Withdrawal, string, error)
}

type IdempotencyRepository interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	PutResponse(ctx context.Context, key string, response []byte, ttl time.Duration) error
	GetResponse(ctx context.Context, key string) ([]byte, error)
}

// PaymentMatcher часть платежного сервиса, нужная вебхук-диспетчеру.
type PaymentMatcher interface {
	FindPendingByAmount(ctx context.Context, amount decimal.Decimal) (*domain.Payment, error)
	MarkReceived(ctx context.Context, paymentID string, muralTransactionID string) (*domain.Payment, error)
}

// OrderStatusUpdater продвижение статуса заказа.
type OrderStatusUpdater interface {
	UpdateStatus(
		ctx context.Context,
		orderID string,
		status domain.OrderStatusType,
		extra repoargs.OrderStatusExtra,
	) (*domain.Order, error)
}

// WithdrawalOrchestrator часть сервиса выводов, нужная вебхук-диспетчеру.
type WithdrawalOrchestrator interface {
	CreateAndExecute(
		ctx context.Context,
		orderID string,
		paymentID string,
		amountUSDC decimal.Decimal,
		idempotencyKey string,
	) (*domain.Withdrawal, error)
	FindByPayoutRequestID(ctx context.Context, payoutRequestID string) (*domain.Withdrawal, error)
	UpdateStatus(
		ctx context.Context,
		id string,
		status domain.WithdrawalStatusType,
		extra repoargs.WithdrawalStatusExtra,
	) (*domain.Withdrawal, error)
}

// MuralAPI интерфейс клиента платежного провайдера.
type MuralAPI interface {
	AccountID() string
	GetAccount(ctx context.Context, accountID string) (*mural.Account, error)
	CreatePayoutRequest(ctx context.Context, args mural.CreatePayoutRequestArgs) (*mural.PayoutRequest, error)
	ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*mural.PayoutRequest, error)
	GetPayoutRequest(ctx context.Context, payoutRequestID string) (*mural.PayoutRequest, error)
}
