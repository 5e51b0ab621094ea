package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/internal/test"
	"github.com/fsdevblog/groph-market/internal/transport/mural"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockPayments    *mocks.MockPaymentRepository
	mockIdempotency *mocks.MockIdempotencyRepository
	mockMural       *mocks.MockMuralAPI
	paymentService  *PaymentService
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockPayments = mocks.NewMockPaymentRepository(s.mockCtrl)
	s.mockIdempotency = mocks.NewMockIdempotencyRepository(s.mockCtrl)
	s.mockMural = mocks.NewMockMuralAPI(s.mockCtrl)

	s.paymentService = NewPaymentService(s.mockPayments, s.mockIdempotency, s.mockMural)
}

func (s *PaymentServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *PaymentServiceTestSuite) muralAccount(walletAddress, blockchain string) *mural.Account {
	return &mural.Account{
		ID: uuid.NewString(),
		AccountDetails: &mural.AccountDetails{
			WalletDetails: &mural.WalletDetails{
				WalletAddress: walletAddress,
				Blockchain:    blockchain,
			},
		},
	}
}

func (s *PaymentServiceTestSuite) TestCreateHappyPath() {
	orderID := uuid.NewString()
	idempotencyKey := uuid.NewString()
	amount := decimal.RequireFromString("35.50")
	walletAddress := "0x6e0d2cb98f5c9b6a9f3d1a7e4b2c8d0f1a3b5c7d"
	accountID := uuid.NewString()

	s.mockIdempotency.EXPECT().
		GetResponse(gomock.Any(), paymentIdempotencyKey(idempotencyKey)).
		Return(nil, domain.ErrRecordNotFound).Times(1)
	s.mockMural.EXPECT().AccountID().Return(accountID).Times(1)
	s.mockMural.EXPECT().
		GetAccount(gomock.Any(), accountID).
		Return(s.muralAccount(walletAddress, "POLYGON"), nil).Times(1)
	s.mockPayments.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
			s.NotEmpty(payment.ID)
			s.Equal(orderID, payment.OrderID)
			s.True(amount.Equal(payment.ExpectedAmountUSDC))
			s.Equal(walletAddress, payment.DestinationAddress)
			s.Equal("POLYGON", payment.Blockchain)
			s.Equal(orderID, payment.Memo)
			s.Equal(domain.PaymentStatusPending, payment.Status)
			s.Equal(idempotencyKey, payment.IdempotencyKey)
			return payment, nil
		}).Times(1)
	s.mockIdempotency.EXPECT().
		PutResponse(gomock.Any(), paymentIdempotencyKey(idempotencyKey), gomock.Any(), paymentIdempotencyTTL).
		Return(nil).Times(1)

	payment, err := s.paymentService.Create(context.Background(), orderID, amount, idempotencyKey)
	s.Require().NoError(err)
	s.Equal(orderID, payment.OrderID)
	s.Equal(walletAddress, payment.DestinationAddress)
}

func (s *PaymentServiceTestSuite) TestCreateReturnsCachedPayment() {
	idempotencyKey := uuid.NewString()
	cached := test.RandomPayment(domain.PaymentStatusPending)

	serialized, marshalErr := json.Marshal(cached)
	s.Require().NoError(marshalErr)

	s.mockIdempotency.EXPECT().
		GetResponse(gomock.Any(), paymentIdempotencyKey(idempotencyKey)).
		Return(serialized, nil).Times(1)
	// Повторный запрос не ходит ни к провайдеру, ни в хранилище.
	s.mockMural.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
	s.mockPayments.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	payment, err := s.paymentService.Create(
		context.Background(),
		uuid.NewString(),
		decimal.RequireFromString("10.00"),
		idempotencyKey,
	)
	s.Require().NoError(err)
	s.Equal(cached.ID, payment.ID)
	s.Equal(cached.OrderID, payment.OrderID)
	s.True(cached.ExpectedAmountUSDC.Equal(payment.ExpectedAmountUSDC))
}

func (s *PaymentServiceTestSuite) TestCreateDefaultsBlockchain() {
	idempotencyKey := uuid.NewString()
	accountID := uuid.NewString()

	s.mockIdempotency.EXPECT().
		GetResponse(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound).Times(1)
	s.mockMural.EXPECT().AccountID().Return(accountID).Times(1)
	s.mockMural.EXPECT().
		GetAccount(gomock.Any(), accountID).
		Return(s.muralAccount("0xabc123", ""), nil).Times(1)
	s.mockPayments.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, payment *domain.Payment) (*domain.Payment, error) {
			s.Equal(defaultBlockchain, payment.Blockchain)
			return payment, nil
		}).Times(1)
	s.mockIdempotency.EXPECT().
		PutResponse(gomock.Any(), gomock.Any(), gomock.Any(), paymentIdempotencyTTL).
		Return(nil).Times(1)

	_, err := s.paymentService.Create(
		context.Background(),
		uuid.NewString(),
		decimal.RequireFromString("1.00"),
		idempotencyKey,
	)
	s.Require().NoError(err)
}

func (s *PaymentServiceTestSuite) TestCreateFailsWithoutWalletAddress() {
	accountID := uuid.NewString()

	s.mockIdempotency.EXPECT().
		GetResponse(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound).Times(1)
	s.mockMural.EXPECT().AccountID().Return(accountID).Times(1)
	s.mockMural.EXPECT().
		GetAccount(gomock.Any(), accountID).
		Return(&mural.Account{ID: accountID}, nil).Times(1)
	s.mockPayments.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.paymentService.Create(
		context.Background(),
		uuid.NewString(),
		decimal.RequireFromString("5.00"),
		uuid.NewString(),
	)
	s.Require().Error(err)
	s.Contains(err.Error(), "no wallet address")
}

func (s *PaymentServiceTestSuite) TestFindPendingByAmountPassesThrough() {
	amount := decimal.RequireFromString("99.99")

	s.mockPayments.EXPECT().
		FindPendingByAmount(gomock.Any(), amount).
		Return(nil, domain.ErrRecordNotFound).Times(1)

	_, err := s.paymentService.FindPendingByAmount(context.Background(), amount)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
