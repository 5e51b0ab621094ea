package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/fsdevblog/groph-market/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api"
	"github.com/fsdevblog/groph-market/internal/transport/mural"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	muralClient := mural.New(a.Config.Mural)

	services := service.Factory(service.FactoryArgs{
		ProductRepo:     pgrepo.NewProductRepository(conn),
		CartRepo:        pgrepo.NewCartRepository(conn),
		OrderRepo:       pgrepo.NewOrderRepository(conn),
		PaymentRepo:     pgrepo.NewPaymentRepository(conn),
		WithdrawalRepo:  pgrepo.NewWithdrawalRepository(conn),
		IdempotencyRepo: pgrepo.NewIdempotencyRepository(conn),
		MuralAPI:        muralClient,
		MerchantBank:    a.Config.MerchantBank,
		Logger:          a.Logger,
	})

	if seedErr := services.ProductService.EnsureDefaults(notifyCtx); seedErr != nil {
		return fmt.Errorf("app run: %s", seedErr.Error())
	}

	router := api.New(api.RouterArgs{
		Logger:            a.Logger,
		ProductService:    services.ProductService,
		CartService:       services.CartService,
		OrderService:      services.OrderService,
		PaymentService:    services.PaymentService,
		WithdrawalService: services.WithdrawalService,
		WebhookService:    services.WebhookService,
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}
