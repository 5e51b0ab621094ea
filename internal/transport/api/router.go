package api

import (
	"time"

	"github.com/fsdevblog/groph-market/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
	// MuralServiceTimeout ручки, за которыми стоят вызовы платежного провайдера.
	MuralServiceTimeout = 30 * time.Second
)

const (
	ProductsRoute            = "/products"
	CartsRoute               = "/carts"
	PaymentsRoute            = "/payments"
	MerchantOrdersRoute      = "/merchant/orders"
	MerchantWithdrawalsRoute = "/merchant/withdrawals"
	WithdrawalsRoute         = "/withdrawals"
	WebhooksMuralRoute       = "/webhooks/mural"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	ProductService    ProductServicer
	CartService       CartServicer
	OrderService      OrderServicer
	PaymentService    PaymentServicer
	WithdrawalService WithdrawalServicer
	WebhookService    WebhookServicer
}

func New(args RouterArgs) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	productsHandler := NewProductsHandler(args.ProductService)
	cartsHandler := NewCartsHandler(args.CartService)
	paymentsHandler := NewPaymentsHandler(
		args.CartService,
		args.ProductService,
		args.OrderService,
		args.PaymentService,
	)
	merchantOrdersHandler := NewMerchantOrdersHandler(args.OrderService)
	merchantWithdrawalsHandler := NewMerchantWithdrawalsHandler(args.WithdrawalService)
	withdrawalsHandler := NewWithdrawalsHandler(args.WithdrawalService)
	webhooksHandler := NewWebhooksHandler(args.WebhookService)

	r.GET(ProductsRoute, productsHandler.Index)
	r.GET(ProductsRoute+"/:id", productsHandler.Show)

	r.POST(CartsRoute, cartsHandler.Create)
	r.GET(CartsRoute, cartsHandler.Index)
	r.GET(CartsRoute+"/:id", cartsHandler.Show)

	r.POST(PaymentsRoute, paymentsHandler.Create)

	r.GET(MerchantOrdersRoute, merchantOrdersHandler.Index)
	r.GET(MerchantOrdersRoute+"/:id", merchantOrdersHandler.Show)

	r.GET(MerchantWithdrawalsRoute, merchantWithdrawalsHandler.Index)
	r.GET(MerchantWithdrawalsRoute+"/:id", merchantWithdrawalsHandler.Show)

	r.GET(WithdrawalsRoute, withdrawalsHandler.Index)

	r.POST(WebhooksMuralRoute, webhooksHandler.Mural)

	return r
}
