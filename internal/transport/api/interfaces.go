package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

// ProductServicer интерфейс исключительно для моков.
type ProductServicer interface {
	EnsureDefaults(ctx context.Context) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Product, string, error)
}

type CartServicer interface {
	Create(ctx context.Context, items []domain.CartItem) (*domain.Cart, error)
	Get(ctx context.Context, id string) (*domain.Cart, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Cart, string, error)
}

type OrderServicer interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Order, string, error)
}

type PaymentServicer interface {
	Create(
		ctx context.Context,
		orderID string,
		expectedAmountUSDC decimal.Decimal,
		idempotencyKey string,
	) (*domain.Payment, error)
}

type WithdrawalServicer interface {
	Get(ctx context.Context, id string) (*domain.Withdrawal, error)
	GetByOrderID(ctx context.Context, orderID string) ([]domain.Withdrawal, error)
	List(ctx context.Context, limit uint, nextToken string) ([]domain.Withdrawal, string, error)
}

type WebhookServicer interface {
	Process(ctx context.Context, event service.WebhookEvent) (service.WebhookOutcome, error)
}
