package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/transport/mural"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type WithdrawalService struct {
	withdrawalRepo WithdrawalRepository
	muralAPI       MuralAPI
	merchantBank   config.MerchantBank
	l              *logrus.Entry
}

func NewWithdrawalService(
	withdrawalRepo WithdrawalRepository,
	muralAPI MuralAPI,
	merchantBank config.MerchantBank,
	l *logrus.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		muralAPI:       muralAPI,
		merchantBank:   merchantBank,
		l:              logger.WithComponent(l, "withdrawal"),
	}
}

// CreateAndExecute создает и исполняет выплату мерчанту за заказ.
//
// Алгоритм работы:
//  1. Если по заказу уже есть вывод - возвращает существующий как есть. Это и есть
//     защита от двойной выплаты: не больше одного вывода на заказ.
//  2. Создает запись вывода в статусе pending. Проверку из шага 1 страхует уникальный
//     индекс по order_id: проигравший гонку insert тоже возвращает существующий вывод.
//  3. Создает payout request у провайдера, фиксирует payout_created + его id.
//  4. Исполняет payout request, фиксирует статус (executed либо pending) и фиатную сумму.
//  5. Перечитывает и возвращает итоговую запись.
//
// Любая ошибка на шагах 3-4 помечает вывод failed с причиной и возвращается вызывающему;
// частичный прогресс (payout_created) к этому моменту уже зафиксирован в сторе.
func (w *WithdrawalService) CreateAndExecute(
	ctx context.Context,
	orderID string,
	paymentID string,
	amountUSDC decimal.Decimal,
	idempotencyKey string,
) (*domain.Withdrawal, error) {
	existing, existingErr := w.withdrawalRepo.GetByOrderID(ctx, orderID)
	if existingErr != nil {
		return nil, fmt.Errorf("creating withdrawal: %w", existingErr)
	}
	if len(existing) > 0 {
		w.l.WithFields(logrus.Fields{
			"orderID":      orderID,
			"withdrawalID": existing[0].ID,
		}).Info("Withdrawal already exists for order")
		return &existing[0], nil
	}

	withdrawal, createErr := w.withdrawalRepo.Create(ctx, &domain.Withdrawal{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		PaymentID:      paymentID,
		Status:         domain.WithdrawalStatusPending,
		AmountUSDC:     amountUSDC,
		IdempotencyKey: idempotencyKey,
	})
	if createErr != nil {
		// Уникальный индекс по order_id: гонку выиграл параллельный вывод, возвращаем его.
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			winner, winnerErr := w.withdrawalRepo.GetByOrderID(ctx, orderID)
			if winnerErr == nil && len(winner) > 0 {
				w.l.WithFields(logrus.Fields{
					"orderID":      orderID,
					"withdrawalID": winner[0].ID,
				}).Info("Lost withdrawal create race, returning existing")
				return &winner[0], nil
			}
		}
		return nil, fmt.Errorf("creating withdrawal: %w", createErr)
	}

	if payoutErr := w.createAndExecutePayout(ctx, withdrawal, orderID, amountUSDC); payoutErr != nil {
		reason := payoutErr.Error()
		if _, failErr := w.withdrawalRepo.UpdateStatus(
			ctx,
			withdrawal.ID,
			domain.WithdrawalStatusFailed,
			repoargs.WithdrawalStatusExtra{FailureReason: &reason},
		); failErr != nil {
			w.l.WithError(failErr).WithField("withdrawalID", withdrawal.ID).
				Error("mark withdrawal failed")
		}
		return nil, fmt.Errorf("withdrawal %s: %w", withdrawal.ID, payoutErr)
	}

	final, findErr := w.withdrawalRepo.FindByID(ctx, withdrawal.ID)
	if findErr != nil {
		return nil, fmt.Errorf("re-reading withdrawal: %w", findErr)
	}
	return final, nil
}

func (w *WithdrawalService) createAndExecutePayout(
	ctx context.Context,
	withdrawal *domain.Withdrawal,
	orderID string,
	amountUSDC decimal.Decimal,
) error {
	payout, createErr := w.muralAPI.CreatePayoutRequest(ctx, w.buildPayoutArgs(orderID, amountUSDC))
	if createErr != nil {
		return createErr
	}

	if _, updErr := w.withdrawalRepo.UpdateStatus(
		ctx,
		withdrawal.ID,
		domain.WithdrawalStatusPayoutCreated,
		repoargs.WithdrawalStatusExtra{PayoutRequestID: &payout.ID},
	); updErr != nil {
		return updErr
	}

	executed, execErr := w.muralAPI.ExecutePayoutRequest(ctx, payout.ID)
	if execErr != nil {
		return execErr
	}

	status := domain.WithdrawalStatusPending
	if executed.Status == mural.PayoutStatusExecuted {
		status = domain.WithdrawalStatusExecuted
	}

	var amountCOP *decimal.Decimal
	if len(executed.Payouts) > 0 && executed.Payouts[0].Details != nil &&
		executed.Payouts[0].Details.FiatAmount != nil {
		amountCOP = &executed.Payouts[0].Details.FiatAmount.FiatAmount
	}

	if _, updErr := w.withdrawalRepo.UpdateStatus(
		ctx,
		withdrawal.ID,
		status,
		repoargs.WithdrawalStatusExtra{AmountCOP: amountCOP},
	); updErr != nil {
		return updErr
	}
	return nil
}

// buildPayoutArgs собирает запрос на фиатную (COP) выплату из инжектированных реквизитов мерчанта.
func (w *WithdrawalService) buildPayoutArgs(orderID string, amountUSDC decimal.Decimal) mural.CreatePayoutRequestArgs {
	firstName, lastName := splitOwnerName(w.merchantBank.BankAccountOwner)

	return mural.CreatePayoutRequestArgs{
		SourceAccountID: w.muralAPI.AccountID(),
		Memo:            "Order " + orderID,
		Payouts: []mural.PayoutItem{
			{
				Amount: mural.TokenAmount{TokenAmount: amountUSDC, TokenSymbol: usdcSymbol},
				PayoutDetails: mural.PayoutBankDetails{
					Type:             "fiat",
					BankName:         w.merchantBank.BankName,
					BankAccountOwner: w.merchantBank.BankAccountOwner,
					FiatAndRailDetails: mural.FiatAndRailDetails{
						Type:              "cop",
						Symbol:            "COP",
						PhoneNumber:       w.merchantBank.PhoneNumber,
						AccountType:       w.merchantBank.AccountType,
						BankAccountNumber: w.merchantBank.BankAccountNumber,
						DocumentNumber:    w.merchantBank.DocumentNumber,
						DocumentType:      w.merchantBank.DocumentType,
					},
				},
				RecipientInfo: mural.RecipientInfo{
					Type:      "individual",
					FirstName: firstName,
					LastName:  lastName,
					Email:     "merchant@example.com",
					PhysicalAddress: mural.PhysicalAddress{
						Address1: "123 Main St",
						Country:  "CO",
						State:    "CO",
						City:     "Bogota",
						Zip:      "110111",
					},
				},
			},
		},
	}
}

func splitOwnerName(owner string) (string, string) {
	parts := strings.Fields(owner)
	switch {
	case len(parts) == 0:
		return "Merchant", "Account"
	case len(parts) == 1:
		return parts[0], "Account"
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func (w *WithdrawalService) Get(ctx context.Context, id string) (*domain.Withdrawal, error) {
	withdrawal, err := w.withdrawalRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return withdrawal, nil
}

func (w *WithdrawalService) GetByOrderID(ctx context.Context, orderID string) ([]domain.Withdrawal, error) {
	return w.withdrawalRepo.GetByOrderID(ctx, orderID) //nolint:wrapcheck
}

func (w *WithdrawalService) FindByPayoutRequestID(
	ctx context.Context,
	payoutRequestID string,
) (*domain.Withdrawal, error) {
	return w.withdrawalRepo.FindByPayoutRequestID(ctx, payoutRequestID) //nolint:wrapcheck
}

// UpdateStatus выставляет статус вывода с дополнительными полями.
func (w *WithdrawalService) UpdateStatus(
	ctx context.Context,
	id string,
	status domain.WithdrawalStatusType,
	extra repoargs.WithdrawalStatusExtra,
) (*domain.Withdrawal, error) {
	withdrawal, err := w.withdrawalRepo.UpdateStatus(ctx, id, status, extra)
	if err != nil {
		return nil, fmt.Errorf("updating withdrawal status: %w", err)
	}
	return withdrawal, nil
}

func (w *WithdrawalService) List(
	ctx context.Context,
	limit uint,
	nextToken string,
) ([]domain.Withdrawal, string, error) {
	return w.withdrawalRepo.List(ctx, limit, nextToken) //nolint:wrapcheck
}
