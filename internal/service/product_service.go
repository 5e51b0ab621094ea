package service

import (
	"fmt"

	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// demoProducts сидируются один раз на пустом каталоге, чтобы витрина не была пустой.
var demoProducts = []domain.Product{
	{Name: "Product A", Description: "Sample product A", PriceUSDC: decimal.NewFromInt(10)},
	{Name: "Product B", Description: "Sample product B", PriceUSDC: decimal.NewFromFloat(25.5)},
	{Name: "Product C", Description: "Sample product C", PriceUSDC: decimal.NewFromInt(50)},
}

// EnsureDefaults создает демо-товары если каталог пуст.
func (p *ProductService) EnsureDefaults(ctx context.Context) error {
	count, countErr := p.productRepo.Count(ctx)
	if countErr != nil {
		return fmt.Errorf("ensure default products: %w", countErr)
	}
	if count > 0 {
		return nil
	}
	for _, product := range demoProducts {
		product.ID = uuid.NewString()
		if _, createErr := p.productRepo.Create(ctx, &product); createErr != nil {
			return fmt.Errorf("ensure default products: %w", createErr)
		}
	}
	return nil
}

func (p *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := p.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return product, nil
}

func (p *ProductService) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Product, string, error) {
	return p.productRepo.List(ctx, limit, nextToken) //nolint:wrapcheck
}
