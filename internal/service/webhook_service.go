package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// webhookIdempotencyTTL срок жизни клейма события. Провайдер ретраит доставку
	// в пределах дней, клейм живет с запасом.
	webhookIdempotencyTTL = 7 * 24 * time.Hour

	usdcSymbol = "USDC"

	EventCategoryBalanceActivity = "MURAL_ACCOUNT_BALANCE_ACTIVITY"
	EventCategoryPayoutRequest   = "PAYOUT_REQUEST"
)

// WebhookEvent одно входящее событие провайдера. Обязательность полей проверяет транспорт.
type WebhookEvent struct {
	EventID       string
	DeliveryID    string
	AttemptNumber int
	EventCategory string
	OccurredAt    string
	Payload       json.RawMessage
}

// WebhookOutcome итог обработки события для транспортного слоя.
type WebhookOutcome int

const (
	WebhookOutcomeProcessed WebhookOutcome = iota
	WebhookOutcomeAlreadyProcessed
)

// WebhookService диспетчер вебхуков Mural: клеймит идемпотентность, классифицирует событие
// и переводит его в переходы статусов заказа/платежа/вывода.
type WebhookService struct {
	idempotencyRepo IdempotencyRepository
	payments        PaymentMatcher
	orders          OrderStatusUpdater
	withdrawals     WithdrawalOrchestrator
	l               *logrus.Entry
}

func NewWebhookService(
	idempotencyRepo IdempotencyRepository,
	payments PaymentMatcher,
	orders OrderStatusUpdater,
	withdrawals WithdrawalOrchestrator,
	l *logrus.Logger,
) *WebhookService {
	return &WebhookService{
		idempotencyRepo: idempotencyRepo,
		payments:        payments,
		orders:          orders,
		withdrawals:     withdrawals,
		l:               logger.WithComponent(l, "webhook"),
	}
}

// Process обрабатывает одно событие.
//
// Алгоритм работы:
//  1. Клеймит ключ (deliveryId, eventId) в леджере идемпотентности. Повторная доставка
//     уже обработанного события - безопасный no-op (WebhookOutcomeAlreadyProcessed).
//  2. Диспетчеризует по категории события. Неизвестная категория игнорируется.
//
// Клейм берется до обработки: упавшее после клейма событие при ретрае провайдера
// будет проглочено как "уже обработано". Осознанный компромисс.
func (w *WebhookService) Process(ctx context.Context, event WebhookEvent) (WebhookOutcome, error) {
	l := w.l.WithFields(logrus.Fields{
		"eventCategory": event.EventCategory,
		"eventID":       event.EventID,
		"deliveryID":    event.DeliveryID,
		"attemptNumber": event.AttemptNumber,
	})
	l.Info("Webhook received")

	claimed, claimErr := w.idempotencyRepo.Claim(ctx, webhookIdempotencyKey(event.DeliveryID, event.EventID), webhookIdempotencyTTL)
	if claimErr != nil {
		return 0, fmt.Errorf("webhook claim: %w", claimErr)
	}
	if !claimed {
		l.Info("Webhook already processed (idempotent)")
		return WebhookOutcomeAlreadyProcessed, nil
	}

	switch event.EventCategory {
	case EventCategoryBalanceActivity:
		if err := w.handleBalanceActivity(ctx, event, l); err != nil {
			return 0, err
		}
	case EventCategoryPayoutRequest:
		if err := w.handlePayoutEvent(ctx, event, l); err != nil {
			return 0, err
		}
	default:
		l.Info("Webhook ignored: unsupported category")
	}

	l.Info("Webhook processed")
	return WebhookOutcomeProcessed, nil
}

// balanceActivityPayload форма payload'а для событий движения по счету.
// Сумма может приходить как в tokenAmount, так и в amount.
type balanceActivityPayload struct {
	Type          string              `json:"type"`
	TransactionID string              `json:"transactionId"`
	TokenAmount   *tokenAmountPayload `json:"tokenAmount"`
	Amount        *tokenAmountPayload `json:"amount"`
}

type tokenAmountPayload struct {
	TokenAmount decimal.Decimal `json:"tokenAmount"`
	TokenSymbol string          `json:"tokenSymbol"`
}

// handleBalanceActivity обрабатывает кредит USDC на общий депозитный счет: матчит pending
// платеж по точной сумме, помечает его полученным, двигает заказ в paid и запускает
// цепочку конвертации и вывода.
func (w *WebhookService) handleBalanceActivity(ctx context.Context, event WebhookEvent, l *logrus.Entry) error {
	var payload balanceActivityPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.WithError(err).Warn("Balance activity ignored: unparseable payload")
		return nil
	}
	if payload.Type != "account_credited" {
		l.WithField("type", payload.Type).Info("Balance activity ignored: not account_credited")
		return nil
	}

	amount := payload.TokenAmount
	if amount == nil {
		amount = payload.Amount
	}
	if amount == nil || amount.TokenSymbol != usdcSymbol {
		l.Info("Balance activity ignored: not USDC or missing amount")
		return nil
	}

	payment, matchErr := w.payments.FindPendingByAmount(ctx, amount.TokenAmount)
	if matchErr != nil {
		if errors.Is(matchErr, domain.ErrRecordNotFound) {
			// Кредит может принадлежать другому потоку или прийти раньше записи платежа.
			l.WithField("tokenAmountUSDC", amount.TokenAmount.String()).
				Warn("No pending payment found for amount")
			return nil
		}
		return fmt.Errorf("matching payment: %w", matchErr)
	}

	l = l.WithFields(logrus.Fields{
		"paymentID": payment.ID,
		"orderID":   payment.OrderID,
	})
	l.Info("Payment matched, marking received and updating order")

	if _, err := w.payments.MarkReceived(ctx, payment.ID, payload.TransactionID); err != nil {
		return err //nolint:wrapcheck
	}

	now := time.Now().UTC()
	if _, err := w.orders.UpdateStatus(ctx, payment.OrderID, domain.OrderStatusPaid, repoargs.OrderStatusExtra{
		PaidAt:             &now,
		MuralTransactionID: &payload.TransactionID,
	}); err != nil {
		return err //nolint:wrapcheck
	}

	return w.triggerConversionAndWithdrawal(ctx, payment, l)
}

// triggerConversionAndWithdrawal двигает заказ в converting и запускает оркестратор выплат.
// Ошибка оркестратора (и записи withdrawal_pending) проглатывается: заказ уходит в
// withdrawal_failed, а вебхук отвечает провайдеру успехом - ретрай доставки выплату
// не починит. Ошибки самого стора, наоборот, возвращаются наверх и дают 5xx.
func (w *WebhookService) triggerConversionAndWithdrawal(ctx context.Context, payment *domain.Payment, l *logrus.Entry) error {
	if _, err := w.orders.UpdateStatus(
		ctx, payment.OrderID, domain.OrderStatusConverting, repoargs.OrderStatusExtra{},
	); err != nil {
		return err //nolint:wrapcheck
	}

	withdrawalErr := w.runWithdrawal(ctx, payment, l)
	if withdrawalErr == nil {
		return nil
	}

	l.WithError(withdrawalErr).Error("Withdrawal failed")
	if _, err := w.orders.UpdateStatus(
		ctx, payment.OrderID, domain.OrderStatusWithdrawalFailed, repoargs.OrderStatusExtra{},
	); err != nil {
		return err //nolint:wrapcheck
	}
	return nil
}

func (w *WebhookService) runWithdrawal(ctx context.Context, payment *domain.Payment, l *logrus.Entry) error {
	withdrawal, withdrawalErr := w.withdrawals.CreateAndExecute(
		ctx,
		payment.OrderID,
		payment.ID,
		payment.ExpectedAmountUSDC,
		"withdrawal:"+payment.IdempotencyKey,
	)
	if withdrawalErr != nil {
		return withdrawalErr //nolint:wrapcheck
	}

	if _, err := w.orders.UpdateStatus(
		ctx, payment.OrderID, domain.OrderStatusWithdrawalPending, repoargs.OrderStatusExtra{
			PayoutRequestID: withdrawal.PayoutRequestID,
			WithdrawalID:    &withdrawal.ID,
		},
	); err != nil {
		return err //nolint:wrapcheck
	}
	l.WithField("withdrawalID", withdrawal.ID).Info("Withdrawal created and executed")
	return nil
}

// payoutEventPayload форма payload'а событий payout request'а. Статус провайдер шлет
// в одном из трех мест, normalizedStatus сводит их к одному значению.
type payoutEventPayload struct {
	PayoutRequestID     string `json:"payoutRequestId"`
	StatusChangeDetails *struct {
		CurrentStatus *struct {
			Type string `json:"type"`
		} `json:"currentStatus"`
	} `json:"statusChangeDetails"`
	RecipientsPayoutDetails []struct {
		FiatPayoutStatus *struct {
			Type string `json:"type"`
		} `json:"fiatPayoutStatus"`
	} `json:"recipientsPayoutDetails"`
	Status string `json:"status"`
}

// normalizedStatus порядок источников: структурный statusChangeDetails, затем статус
// первого получателя, затем плоское поле status.
func (p *payoutEventPayload) normalizedStatus() string {
	if p.StatusChangeDetails != nil && p.StatusChangeDetails.CurrentStatus != nil {
		return p.StatusChangeDetails.CurrentStatus.Type
	}
	if len(p.RecipientsPayoutDetails) > 0 && p.RecipientsPayoutDetails[0].FiatPayoutStatus != nil {
		return p.RecipientsPayoutDetails[0].FiatPayoutStatus.Type
	}
	return p.Status
}

// handlePayoutEvent обрабатывает смену статуса payout request'а: терминальные статусы
// завершают вывод и заказ, промежуточные не меняют ничего.
func (w *WebhookService) handlePayoutEvent(ctx context.Context, event WebhookEvent, l *logrus.Entry) error {
	var payload payoutEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.WithError(err).Warn("Payout event ignored: unparseable payload")
		return nil
	}
	if payload.PayoutRequestID == "" {
		l.Info("Payout event ignored: no payoutRequestId")
		return nil
	}

	statusType := payload.normalizedStatus()
	l = l.WithFields(logrus.Fields{
		"payoutRequestID":   payload.PayoutRequestID,
		"currentStatusType": statusType,
	})
	l.Info("Payout event received")

	withdrawal, findErr := w.withdrawals.FindByPayoutRequestID(ctx, payload.PayoutRequestID)
	if findErr != nil {
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			l.Warn("No withdrawal found for payout request")
			return nil
		}
		return fmt.Errorf("finding withdrawal: %w", findErr)
	}

	switch statusType {
	case "completed", "executed":
		l.Info("Payout completed, updating withdrawal and order")
		if _, err := w.withdrawals.UpdateStatus(
			ctx, withdrawal.ID, domain.WithdrawalStatusCompleted, repoargs.WithdrawalStatusExtra{},
		); err != nil {
			return err //nolint:wrapcheck
		}
		if _, err := w.orders.UpdateStatus(
			ctx, withdrawal.OrderID, domain.OrderStatusWithdrawalCompleted, repoargs.OrderStatusExtra{},
		); err != nil {
			return err //nolint:wrapcheck
		}
	case "refunded", "refundInProgress", "failed":
		l.Warn("Payout failed or refunded")
		reason := string(event.Payload)
		if _, err := w.withdrawals.UpdateStatus(
			ctx, withdrawal.ID, domain.WithdrawalStatusFailed, repoargs.WithdrawalStatusExtra{
				FailureReason: &reason,
			},
		); err != nil {
			return err //nolint:wrapcheck
		}
		if _, err := w.orders.UpdateStatus(
			ctx, withdrawal.OrderID, domain.OrderStatusWithdrawalFailed, repoargs.OrderStatusExtra{},
		); err != nil {
			return err //nolint:wrapcheck
		}
	default:
		l.Info("Payout event: status not yet final")
	}
	return nil
}

func webhookIdempotencyKey(deliveryID, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", deliveryID, eventID)
}
