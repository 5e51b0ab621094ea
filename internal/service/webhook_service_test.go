package service

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/internal/test"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WebhookServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockIdempotency *mocks.MockIdempotencyRepository
	mockPayments    *mocks.MockPaymentMatcher
	mockOrders      *mocks.MockOrderStatusUpdater
	mockWithdrawals *mocks.MockWithdrawalOrchestrator
	webhookService  *WebhookService
}

func TestWebhookServiceSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}

func (s *WebhookServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockIdempotency = mocks.NewMockIdempotencyRepository(s.mockCtrl)
	s.mockPayments = mocks.NewMockPaymentMatcher(s.mockCtrl)
	s.mockOrders = mocks.NewMockOrderStatusUpdater(s.mockCtrl)
	s.mockWithdrawals = mocks.NewMockWithdrawalOrchestrator(s.mockCtrl)

	s.webhookService = NewWebhookService(
		s.mockIdempotency,
		s.mockPayments,
		s.mockOrders,
		s.mockWithdrawals,
		logger.New(os.Stdout),
	)
}

func (s *WebhookServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WebhookServiceTestSuite) balanceEvent(payload any) WebhookEvent {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	return WebhookEvent{
		EventID:       uuid.NewString(),
		DeliveryID:    uuid.NewString(),
		AttemptNumber: 1,
		EventCategory: EventCategoryBalanceActivity,
		Payload:       raw,
	}
}

func (s *WebhookServiceTestSuite) payoutEvent(payload any) WebhookEvent {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	return WebhookEvent{
		EventID:       uuid.NewString(),
		DeliveryID:    uuid.NewString(),
		AttemptNumber: 1,
		EventCategory: EventCategoryPayoutRequest,
		Payload:       raw,
	}
}

func (s *WebhookServiceTestSuite) TestDuplicateDeliveryIsNoOp() {
	event := s.balanceEvent(map[string]any{"type": "account_credited"})

	s.mockIdempotency.EXPECT().
		Claim(gomock.Any(), webhookIdempotencyKey(event.DeliveryID, event.EventID), webhookIdempotencyTTL).
		Return(false, nil).Times(1)
	// При повторной доставке обработка не запускается вовсе.
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), gomock.Any()).Times(0)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeAlreadyProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestBalanceActivityHappyPath() {
	amount := decimal.RequireFromString("35.50")
	payment := test.RandomPayment(domain.PaymentStatusPending)
	payment.ExpectedAmountUSDC = amount
	muralTxID := uuid.NewString()

	event := s.balanceEvent(map[string]any{
		"type":          "account_credited",
		"transactionId": muralTxID,
		"tokenAmount":   map[string]any{"tokenAmount": json.Number("35.50"), "tokenSymbol": "USDC"},
	})

	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	withdrawal.OrderID = payment.OrderID
	withdrawal.PaymentID = payment.ID
	withdrawal.PayoutRequestID = test.StrPtr(uuid.NewString())

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), webhookIdempotencyTTL).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), amount).Return(&payment, nil)
	s.mockPayments.EXPECT().MarkReceived(gomock.Any(), payment.ID, muralTxID).Return(&payment, nil)

	gomock.InOrder(
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusPaid, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusConverting, repoargs.OrderStatusExtra{}).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusWithdrawalPending, repoargs.OrderStatusExtra{
				PayoutRequestID: withdrawal.PayoutRequestID,
				WithdrawalID:    &withdrawal.ID,
			}).
			Return(&domain.Order{}, nil),
	)

	s.mockWithdrawals.EXPECT().
		CreateAndExecute(gomock.Any(), payment.OrderID, payment.ID, amount, "withdrawal:"+payment.IdempotencyKey).
		Return(&withdrawal, nil)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestBalanceActivityNoMatchingPayment() {
	event := s.balanceEvent(map[string]any{
		"type":        "account_credited",
		"tokenAmount": map[string]any{"tokenAmount": json.Number("10.01"), "tokenSymbol": "USDC"},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().
		FindPendingByAmount(gomock.Any(), decimal.RequireFromString("10.01")).
		Return(nil, domain.ErrRecordNotFound)
	s.mockOrders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestBalanceActivityIgnoresNonUSDC() {
	event := s.balanceEvent(map[string]any{
		"type":        "account_credited",
		"tokenAmount": map[string]any{"tokenAmount": json.Number("35.50"), "tokenSymbol": "EURC"},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), gomock.Any()).Times(0)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestBalanceActivityIgnoresOtherTypes() {
	event := s.balanceEvent(map[string]any{"type": "account_debited"})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), gomock.Any()).Times(0)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestBalanceActivityAmountFallbackField() {
	amount := decimal.RequireFromString("42")
	payment := test.RandomPayment(domain.PaymentStatusPending)
	payment.ExpectedAmountUSDC = amount

	// Сумма в поле amount вместо tokenAmount.
	event := s.balanceEvent(map[string]any{
		"type":   "account_credited",
		"amount": map[string]any{"tokenAmount": json.Number("42"), "tokenSymbol": "USDC"},
	})

	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	withdrawal.PayoutRequestID = test.StrPtr(uuid.NewString())

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), amount).Return(&payment, nil)
	s.mockPayments.EXPECT().MarkReceived(gomock.Any(), payment.ID, "").Return(&payment, nil)
	s.mockOrders.EXPECT().
		UpdateStatus(gomock.Any(), payment.OrderID, gomock.Any(), gomock.Any()).
		Return(&domain.Order{}, nil).
		Times(3)
	s.mockWithdrawals.EXPECT().
		CreateAndExecute(gomock.Any(), payment.OrderID, payment.ID, amount, gomock.Any()).
		Return(&withdrawal, nil)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestWithdrawalFailureMarksOrderFailed() {
	amount := decimal.RequireFromString("99.99")
	payment := test.RandomPayment(domain.PaymentStatusPending)
	payment.ExpectedAmountUSDC = amount

	event := s.balanceEvent(map[string]any{
		"type":        "account_credited",
		"tokenAmount": map[string]any{"tokenAmount": json.Number("99.99"), "tokenSymbol": "USDC"},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), amount).Return(&payment, nil)
	s.mockPayments.EXPECT().MarkReceived(gomock.Any(), payment.ID, gomock.Any()).Return(&payment, nil)

	gomock.InOrder(
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusPaid, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusConverting, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusWithdrawalFailed, gomock.Any()).
			Return(&domain.Order{}, nil),
	)

	s.mockWithdrawals.EXPECT().
		CreateAndExecute(gomock.Any(), payment.OrderID, payment.ID, amount, gomock.Any()).
		Return(nil, domain.ErrUnknown)

	// Провал выплаты не валит вебхук: провайдеру отвечаем успехом.
	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestConvertingStoreFailureReturnsError() {
	amount := decimal.RequireFromString("12.34")
	payment := test.RandomPayment(domain.PaymentStatusPending)
	payment.ExpectedAmountUSDC = amount

	event := s.balanceEvent(map[string]any{
		"type":        "account_credited",
		"tokenAmount": map[string]any{"tokenAmount": json.Number("12.34"), "tokenSymbol": "USDC"},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), amount).Return(&payment, nil)
	s.mockPayments.EXPECT().MarkReceived(gomock.Any(), payment.ID, gomock.Any()).Return(&payment, nil)

	gomock.InOrder(
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusPaid, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusConverting, gomock.Any()).
			Return(nil, domain.ErrUnknown),
	)
	// Ошибка стора на converting идет наверх: провайдер получит 5xx и ретрайнет.
	s.mockWithdrawals.EXPECT().
		CreateAndExecute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Times(0)

	_, err := s.webhookService.Process(context.Background(), event)
	s.Require().ErrorIs(err, domain.ErrUnknown)
}

func (s *WebhookServiceTestSuite) TestWithdrawalPendingStoreFailureMarksOrderFailed() {
	amount := decimal.RequireFromString("77.70")
	payment := test.RandomPayment(domain.PaymentStatusPending)
	payment.ExpectedAmountUSDC = amount

	event := s.balanceEvent(map[string]any{
		"type":        "account_credited",
		"tokenAmount": map[string]any{"tokenAmount": json.Number("77.70"), "tokenSymbol": "USDC"},
	})

	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	withdrawal.OrderID = payment.OrderID
	withdrawal.PayoutRequestID = test.StrPtr(uuid.NewString())

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockPayments.EXPECT().FindPendingByAmount(gomock.Any(), amount).Return(&payment, nil)
	s.mockPayments.EXPECT().MarkReceived(gomock.Any(), payment.ID, gomock.Any()).Return(&payment, nil)
	s.mockWithdrawals.EXPECT().
		CreateAndExecute(gomock.Any(), payment.OrderID, payment.ID, amount, gomock.Any()).
		Return(&withdrawal, nil)

	// Несостоявшаяся запись withdrawal_pending хоронит заказ в withdrawal_failed,
	// вебхук при этом отвечает успехом.
	gomock.InOrder(
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusPaid, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusConverting, gomock.Any()).
			Return(&domain.Order{}, nil),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusWithdrawalPending, gomock.Any()).
			Return(nil, domain.ErrUnknown),
		s.mockOrders.EXPECT().
			UpdateStatus(gomock.Any(), payment.OrderID, domain.OrderStatusWithdrawalFailed, gomock.Any()).
			Return(&domain.Order{}, nil),
	)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestPayoutCompleted() {
	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	payoutRequestID := uuid.NewString()
	withdrawal.PayoutRequestID = &payoutRequestID

	event := s.payoutEvent(map[string]any{
		"payoutRequestId": payoutRequestID,
		"statusChangeDetails": map[string]any{
			"currentStatus": map[string]any{"type": "completed"},
		},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockWithdrawals.EXPECT().FindByPayoutRequestID(gomock.Any(), payoutRequestID).Return(&withdrawal, nil)
	s.mockWithdrawals.EXPECT().
		UpdateStatus(gomock.Any(), withdrawal.ID, domain.WithdrawalStatusCompleted, repoargs.WithdrawalStatusExtra{}).
		Return(&withdrawal, nil)
	s.mockOrders.EXPECT().
		UpdateStatus(gomock.Any(), withdrawal.OrderID, domain.OrderStatusWithdrawalCompleted, repoargs.OrderStatusExtra{}).
		Return(&domain.Order{}, nil)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestPayoutFailedViaRecipientDetails() {
	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	payoutRequestID := uuid.NewString()
	withdrawal.PayoutRequestID = &payoutRequestID

	// Статус лежит только в recipientsPayoutDetails, statusChangeDetails отсутствует.
	event := s.payoutEvent(map[string]any{
		"payoutRequestId": payoutRequestID,
		"recipientsPayoutDetails": []map[string]any{
			{"fiatPayoutStatus": map[string]any{"type": "failed"}},
		},
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockWithdrawals.EXPECT().FindByPayoutRequestID(gomock.Any(), payoutRequestID).Return(&withdrawal, nil)
	s.mockWithdrawals.EXPECT().
		UpdateStatus(
			gomock.Any(), withdrawal.ID, domain.WithdrawalStatusFailed,
			failureReasonMatcher{},
		).
		Return(&withdrawal, nil)
	s.mockOrders.EXPECT().
		UpdateStatus(gomock.Any(), withdrawal.OrderID, domain.OrderStatusWithdrawalFailed, repoargs.OrderStatusExtra{}).
		Return(&domain.Order{}, nil)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestPayoutIntermediateStatusIsNoOp() {
	withdrawal := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	payoutRequestID := uuid.NewString()
	withdrawal.PayoutRequestID = &payoutRequestID

	event := s.payoutEvent(map[string]any{
		"payoutRequestId": payoutRequestID,
		"status":          "processing",
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockWithdrawals.EXPECT().FindByPayoutRequestID(gomock.Any(), payoutRequestID).Return(&withdrawal, nil)
	s.mockWithdrawals.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockOrders.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestPayoutUnknownRequestIsNoOp() {
	event := s.payoutEvent(map[string]any{
		"payoutRequestId": uuid.NewString(),
		"status":          "completed",
	})

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	s.mockWithdrawals.EXPECT().
		FindByPayoutRequestID(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

func (s *WebhookServiceTestSuite) TestUnknownCategoryIgnored() {
	event := WebhookEvent{
		EventID:       uuid.NewString(),
		DeliveryID:    uuid.NewString(),
		EventCategory: "SOMETHING_ELSE",
		Payload:       json.RawMessage(`{}`),
	}

	s.mockIdempotency.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	outcome, err := s.webhookService.Process(context.Background(), event)
	s.Require().NoError(err)
	s.Equal(WebhookOutcomeProcessed, outcome)
}

// failureReasonMatcher проверяет, что в extra передана непустая причина провала.
type failureReasonMatcher struct{}

func (m failureReasonMatcher) Matches(x interface{}) bool {
	extra, ok := x.(repoargs.WithdrawalStatusExtra)
	return ok && extra.FailureReason != nil && *extra.FailureReason != ""
}

func (m failureReasonMatcher) String() string {
	return "withdrawal status extra with non-empty failure reason"
}
