package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
)

type OrderService struct {
	orderRepo OrderRepository
}

func NewOrderService(orderRepo OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (o *OrderService) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created, err := o.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	return created, nil
}

func (o *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := o.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return order, nil
}

// UpdateStatus продвигает статус заказа одной атомарной записью вместе с переданными
// вспомогательными полями. Сам по себе метод - "глупое хранилище": корректность перехода
// обеспечивается порядком вызовов в вебхук-диспетчере и оркестраторе выплат.
func (o *OrderService) UpdateStatus(
	ctx context.Context,
	orderID string,
	status domain.OrderStatusType,
	extra repoargs.OrderStatusExtra,
) (*domain.Order, error) {
	order, err := o.orderRepo.UpdateStatus(ctx, orderID, status, extra)
	if err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	return order, nil
}

func (o *OrderService) List(ctx context.Context, limit uint, nextToken string) ([]domain.Order, string, error) {
	return o.orderRepo.List(ctx, limit, nextToken) //nolint:wrapcheck
}
