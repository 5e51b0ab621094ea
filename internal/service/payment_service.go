package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// paymentIdempotencyTTL срок хранения сериализованного ответа на создание платежа.
	paymentIdempotencyTTL = 7 * 24 * time.Hour

	defaultBlockchain = "POLYGON"
)

type PaymentService struct {
	paymentRepo     PaymentRepository
	idempotencyRepo IdempotencyRepository
	muralAPI        MuralAPI
}

func NewPaymentService(
	paymentRepo PaymentRepository,
	idempotencyRepo IdempotencyRepository,
	muralAPI MuralAPI,
) *PaymentService {
	return &PaymentService{
		paymentRepo:     paymentRepo,
		idempotencyRepo: idempotencyRepo,
		muralAPI:        muralAPI,
	}
}

// Create создает платеж для заказа. Повторный вызов с тем же idempotencyKey возвращает
// ранее созданный платеж из записи идемпотентности, не создавая нового.
//
// Алгоритм работы:
//  1. Ищет сохраненный ответ по ключу идемпотентности, при попадании возвращает его.
//  2. Запрашивает у провайдера депозитный счет (адрес кошелька + блокчейн).
//  3. Создает pending платеж и кладет его сериализованную копию под ключ идемпотентности.
func (p *PaymentService) Create(
	ctx context.Context,
	orderID string,
	expectedAmountUSDC decimal.Decimal,
	idempotencyKey string,
) (*domain.Payment, error) {
	responseKey := paymentIdempotencyKey(idempotencyKey)

	if cached, cacheErr := p.idempotencyRepo.GetResponse(ctx, responseKey); cacheErr == nil {
		var existing domain.Payment
		if unmarshalErr := json.Unmarshal(cached, &existing); unmarshalErr != nil {
			return nil, fmt.Errorf("creating payment: stale idempotency record: %w", unmarshalErr)
		}
		return &existing, nil
	} else if !errors.Is(cacheErr, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("creating payment: %w", cacheErr)
	}

	account, accountErr := p.muralAPI.GetAccount(ctx, p.muralAPI.AccountID())
	if accountErr != nil {
		return nil, fmt.Errorf("creating payment: %w", accountErr)
	}
	if account.AccountDetails == nil || account.AccountDetails.WalletDetails == nil ||
		account.AccountDetails.WalletDetails.WalletAddress == "" {
		return nil, errors.New("creating payment: mural account has no wallet address")
	}
	walletDetails := account.AccountDetails.WalletDetails

	blockchain := walletDetails.Blockchain
	if blockchain == "" {
		blockchain = defaultBlockchain
	}

	payment, createErr := p.paymentRepo.Create(ctx, &domain.Payment{
		ID:                 uuid.NewString(),
		OrderID:            orderID,
		ExpectedAmountUSDC: expectedAmountUSDC,
		DestinationAddress: walletDetails.WalletAddress,
		Blockchain:         blockchain,
		Memo:               orderID,
		Status:             domain.PaymentStatusPending,
		IdempotencyKey:     idempotencyKey,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating payment: %w", createErr)
	}

	serialized, marshalErr := json.Marshal(payment)
	if marshalErr != nil {
		return nil, fmt.Errorf("creating payment: %w", marshalErr)
	}
	if putErr := p.idempotencyRepo.PutResponse(ctx, responseKey, serialized, paymentIdempotencyTTL); putErr != nil {
		return nil, fmt.Errorf("creating payment: %w", putErr)
	}
	return payment, nil
}

func (p *PaymentService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := p.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payment, nil
}

func (p *PaymentService) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	payment, err := p.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payment, nil
}

// FindPendingByAmount возвращает pending платеж с точно совпадающей ожидаемой суммой
// или domain.ErrRecordNotFound. Совпадение строгое, без допусков: 10.00 не матчит 10.01.
func (p *PaymentService) FindPendingByAmount(
	ctx context.Context,
	amount decimal.Decimal,
) (*domain.Payment, error) {
	payment, err := p.paymentRepo.FindPendingByAmount(ctx, amount)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return payment, nil
}

// MarkReceived отмечает платеж полученным и сохраняет внешний id транзакции провайдера.
func (p *PaymentService) MarkReceived(
	ctx context.Context,
	paymentID string,
	muralTransactionID string,
) (*domain.Payment, error) {
	payment, err := p.paymentRepo.MarkReceived(ctx, paymentID, muralTransactionID)
	if err != nil {
		return nil, fmt.Errorf("marking payment received: %w", err)
	}
	return payment, nil
}

func paymentIdempotencyKey(idempotencyKey string) string {
	return "payment:" + idempotencyKey
}
