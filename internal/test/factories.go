// Package test содержит фабрики случайных доменных сущностей для тестов.
package test

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func RandomProduct() domain.Product {
	return domain.Product{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Name:        gofakeit.ProductName(),
		Description: gofakeit.Sentence(6),
		PriceUSDC:   decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
	}
}

func RandomCart(items ...domain.CartItem) domain.Cart {
	if len(items) == 0 {
		items = []domain.CartItem{{ProductID: uuid.NewString(), Quantity: 1}}
	}
	now := time.Now().UTC()
	return domain.Cart{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Items:     items,
	}
}

func RandomOrder(status domain.OrderStatusType) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		CartID:    uuid.NewString(),
		PaymentID: uuid.NewString(),
		Status:    status,
		TotalUSDC: decimal.NewFromFloat(gofakeit.Price(1, 1000)).Round(2),
	}
}

func RandomPayment(status domain.PaymentStatusType) domain.Payment {
	now := time.Now().UTC()
	return domain.Payment{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		UpdatedAt:          now,
		OrderID:            uuid.NewString(),
		ExpectedAmountUSDC: decimal.NewFromFloat(gofakeit.Price(1, 1000)).Round(2),
		DestinationAddress: gofakeit.HexUint(160),
		Blockchain:         "POLYGON",
		Memo:               uuid.NewString(),
		Status:             status,
		IdempotencyKey:     uuid.NewString(),
	}
}

func RandomWithdrawal(status domain.WithdrawalStatusType) domain.Withdrawal {
	now := time.Now().UTC()
	return domain.Withdrawal{
		ID:             uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
		OrderID:        uuid.NewString(),
		PaymentID:      uuid.NewString(),
		Status:         status,
		AmountUSDC:     decimal.NewFromFloat(gofakeit.Price(1, 1000)).Round(2),
		IdempotencyKey: uuid.NewString(),
	}
}

func StrPtr(s string) *string {
	return &s
}
