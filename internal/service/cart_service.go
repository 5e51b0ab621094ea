package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/google/uuid"
)

type CartService struct {
	cartRepo CartRepository
}

func NewCartService(cartRepo CartRepository) *CartService {
	return &CartService{cartRepo: cartRepo}
}

func (c *CartService) Create(ctx context.Context, items []domain.CartItem) (*domain.Cart, error) {
	cart, err := c.cartRepo.Create(ctx, &domain.Cart{
		ID:    uuid.NewString(),
		Items: items,
	})
	if err != nil {
		return nil, fmt.Errorf("creating cart: %w", err)
	}
	return cart, nil
}

func (c *CartService) Get(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := c.cartRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return cart, nil
}

func (c *CartService) List(ctx context.Context, limit uint, nextToken string) ([]domain.Cart, string, error) {
	return c.cartRepo.List(ctx, limit, nextToken) //nolint:wrapcheck
}
