package service

import (
	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/sirupsen/logrus"
)

type AppServices struct {
	ProductService    *ProductService
	CartService       *CartService
	OrderService      *OrderService
	PaymentService    *PaymentService
	WithdrawalService *WithdrawalService
	WebhookService    *WebhookService
}

// FactoryArgs зависимости сервисного слоя. Репозитории передаются интерфейсами,
// чтобы в тестах их можно было подменить моками.
type FactoryArgs struct {
	ProductRepo     ProductRepository
	CartRepo        CartRepository
	OrderRepo       OrderRepository
	PaymentRepo     PaymentRepository
	WithdrawalRepo  WithdrawalRepository
	IdempotencyRepo IdempotencyRepository
	MuralAPI        MuralAPI
	MerchantBank    config.MerchantBank
	Logger          *logrus.Logger
}

func Factory(args FactoryArgs) *AppServices {
	productService := NewProductService(args.ProductRepo)
	cartService := NewCartService(args.CartRepo)
	orderService := NewOrderService(args.OrderRepo)
	paymentService := NewPaymentService(args.PaymentRepo, args.IdempotencyRepo, args.MuralAPI)
	withdrawalService := NewWithdrawalService(args.WithdrawalRepo, args.MuralAPI, args.MerchantBank, args.Logger)
	webhookService := NewWebhookService(args.IdempotencyRepo, paymentService, orderService, withdrawalService, args.Logger)

	return &AppServices{
		ProductService:    productService,
		CartService:       cartService,
		OrderService:      orderService,
		PaymentService:    paymentService,
		WithdrawalService: withdrawalService,
		WebhookService:    webhookService,
	}
}
