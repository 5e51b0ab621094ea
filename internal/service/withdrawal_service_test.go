package service

import (
	"context"
	"os"
	"testing"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/internal/test"
	"github.com/fsdevblog/groph-market/internal/transport/mural"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WithdrawalServiceTestSuite struct {
	suite.Suite
	mockCtrl          *gomock.Controller
	mockRepo          *mocks.MockWithdrawalRepository
	mockMural         *mocks.MockMuralAPI
	withdrawalService *WithdrawalService
}

func TestWithdrawalServiceSuite(t *testing.T) {
	suite.Run(t, new(WithdrawalServiceTestSuite))
}

func (s *WithdrawalServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = mocks.NewMockWithdrawalRepository(s.mockCtrl)
	s.mockMural = mocks.NewMockMuralAPI(s.mockCtrl)

	s.withdrawalService = NewWithdrawalService(
		s.mockRepo,
		s.mockMural,
		config.MerchantBank{
			PhoneNumber:       "+57 601 555 0100",
			AccountType:       "CHECKING",
			BankAccountNumber: "123456789",
			DocumentNumber:    "900123456",
			DocumentType:      "NATIONAL_ID",
			BankName:          "Bancolombia",
			BankAccountOwner:  "Maria Gonzalez",
		},
		logger.New(os.Stdout),
	)
}

func (s *WithdrawalServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WithdrawalServiceTestSuite) TestCreateAndExecuteHappyPath() {
	orderID := uuid.NewString()
	paymentID := uuid.NewString()
	amount := decimal.RequireFromString("35.50")
	payoutRequestID := uuid.NewString()
	amountCOP := decimal.RequireFromString("142000")

	s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return(nil, nil)

	var createdID string
	s.mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w *domain.Withdrawal) (*domain.Withdrawal, error) {
			s.Equal(orderID, w.OrderID)
			s.Equal(paymentID, w.PaymentID)
			s.Equal(domain.WithdrawalStatusPending, w.Status)
			s.True(amount.Equal(w.AmountUSDC))
			createdID = w.ID
			return w, nil
		})

	s.mockMural.EXPECT().AccountID().Return("acc-1")
	s.mockMural.EXPECT().
		CreatePayoutRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args mural.CreatePayoutRequestArgs) (*mural.PayoutRequest, error) {
			s.Equal("acc-1", args.SourceAccountID)
			s.Require().Len(args.Payouts, 1)
			payout := args.Payouts[0]
			s.True(amount.Equal(payout.Amount.TokenAmount))
			s.Equal("USDC", payout.Amount.TokenSymbol)
			s.Equal("cop", payout.PayoutDetails.FiatAndRailDetails.Type)
			s.Equal("Bancolombia", payout.PayoutDetails.BankName)
			s.Equal("Maria", payout.RecipientInfo.FirstName)
			s.Equal("Gonzalez", payout.RecipientInfo.LastName)
			return &mural.PayoutRequest{ID: payoutRequestID, Status: "AWAITING_EXECUTION"}, nil
		})

	s.mockRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), domain.WithdrawalStatusPayoutCreated,
			repoargs.WithdrawalStatusExtra{PayoutRequestID: &payoutRequestID}).
		DoAndReturn(func(_ context.Context, id string, _ domain.WithdrawalStatusType, _ repoargs.WithdrawalStatusExtra) (*domain.Withdrawal, error) {
			s.Equal(createdID, id)
			return &domain.Withdrawal{ID: id}, nil
		})

	s.mockMural.EXPECT().
		ExecutePayoutRequest(gomock.Any(), payoutRequestID).
		Return(&mural.PayoutRequest{
			ID:     payoutRequestID,
			Status: mural.PayoutStatusExecuted,
			Payouts: []mural.Payout{
				{Details: &mural.PayoutDetails{FiatAmount: &mural.FiatAmount{FiatAmount: amountCOP, FiatCurrencyCode: "COP"}}},
			},
		}, nil)

	s.mockRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), domain.WithdrawalStatusExecuted, gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, _ domain.WithdrawalStatusType, extra repoargs.WithdrawalStatusExtra) (*domain.Withdrawal, error) {
			s.Require().NotNil(extra.AmountCOP)
			s.True(amountCOP.Equal(*extra.AmountCOP))
			return &domain.Withdrawal{ID: id}, nil
		})

	final := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	s.mockRepo.EXPECT().
		FindByID(gomock.Any(), gomock.Any()).
		Return(&final, nil)

	got, err := s.withdrawalService.CreateAndExecute(
		context.Background(), orderID, paymentID, amount, "withdrawal:key-1",
	)
	s.Require().NoError(err)
	s.Equal(final.ID, got.ID)
}

func (s *WithdrawalServiceTestSuite) TestCreateAndExecuteReturnsExistingWithdrawal() {
	orderID := uuid.NewString()
	existing := test.RandomWithdrawal(domain.WithdrawalStatusExecuted)
	existing.OrderID = orderID

	s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return([]domain.Withdrawal{existing}, nil)
	// Не больше одного вывода на заказ: ни записи, ни вызовов провайдера.
	s.mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockMural.EXPECT().CreatePayoutRequest(gomock.Any(), gomock.Any()).Times(0)

	got, err := s.withdrawalService.CreateAndExecute(
		context.Background(), orderID, uuid.NewString(), decimal.NewFromInt(10), "withdrawal:key-2",
	)
	s.Require().NoError(err)
	s.Equal(existing.ID, got.ID)
}

func (s *WithdrawalServiceTestSuite) TestCreateAndExecuteLosesCreateRace() {
	orderID := uuid.NewString()
	winner := test.RandomWithdrawal(domain.WithdrawalStatusPayoutCreated)
	winner.OrderID = orderID

	// Проверка прошла до того, как параллельный вывод успел записаться.
	gomock.InOrder(
		s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return(nil, nil),
		s.mockRepo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, domain.ErrDuplicateKey),
		s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return([]domain.Withdrawal{winner}, nil),
	)
	s.mockMural.EXPECT().CreatePayoutRequest(gomock.Any(), gomock.Any()).Times(0)

	got, err := s.withdrawalService.CreateAndExecute(
		context.Background(), orderID, uuid.NewString(), decimal.NewFromInt(30), "withdrawal:key-5",
	)
	s.Require().NoError(err)
	s.Equal(winner.ID, got.ID)
}

func (s *WithdrawalServiceTestSuite) TestCreateAndExecuteProviderFailureMarksFailed() {
	orderID := uuid.NewString()

	s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return(nil, nil)
	s.mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w *domain.Withdrawal) (*domain.Withdrawal, error) {
			return w, nil
		})

	s.mockMural.EXPECT().AccountID().Return("acc-1")
	s.mockMural.EXPECT().
		CreatePayoutRequest(gomock.Any(), gomock.Any()).
		Return(nil, mural.NewStatusCodeError(502, "bad gateway"))

	s.mockRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), domain.WithdrawalStatusFailed, gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, _ domain.WithdrawalStatusType, extra repoargs.WithdrawalStatusExtra) (*domain.Withdrawal, error) {
			s.Require().NotNil(extra.FailureReason)
			s.NotEmpty(*extra.FailureReason)
			return &domain.Withdrawal{ID: id}, nil
		})

	_, err := s.withdrawalService.CreateAndExecute(
		context.Background(), orderID, uuid.NewString(), decimal.NewFromInt(20), "withdrawal:key-3",
	)
	s.Require().Error(err)
}

func (s *WithdrawalServiceTestSuite) TestCreateAndExecuteNonExecutedStaysPending() {
	orderID := uuid.NewString()
	payoutRequestID := uuid.NewString()

	s.mockRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).Return(nil, nil)
	s.mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w *domain.Withdrawal) (*domain.Withdrawal, error) {
			return w, nil
		})

	s.mockMural.EXPECT().AccountID().Return("acc-1")
	s.mockMural.EXPECT().
		CreatePayoutRequest(gomock.Any(), gomock.Any()).
		Return(&mural.PayoutRequest{ID: payoutRequestID, Status: "AWAITING_EXECUTION"}, nil)
	s.mockRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), domain.WithdrawalStatusPayoutCreated, gomock.Any()).
		Return(&domain.Withdrawal{}, nil)
	s.mockMural.EXPECT().
		ExecutePayoutRequest(gomock.Any(), payoutRequestID).
		Return(&mural.PayoutRequest{ID: payoutRequestID, Status: "PENDING"}, nil)

	// Провайдер еще не исполнил выплату: вывод остается pending до вебхука.
	s.mockRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), domain.WithdrawalStatusPending, gomock.Any()).
		Return(&domain.Withdrawal{}, nil)

	final := test.RandomWithdrawal(domain.WithdrawalStatusPending)
	s.mockRepo.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(&final, nil)

	got, err := s.withdrawalService.CreateAndExecute(
		context.Background(), orderID, uuid.NewString(), decimal.NewFromInt(15), "withdrawal:key-4",
	)
	s.Require().NoError(err)
	s.Equal(domain.WithdrawalStatusPending, got.Status)
}

func (s *WithdrawalServiceTestSuite) TestSplitOwnerName() {
	cases := []struct {
		owner     string
		wantFirst string
		wantLast  string
	}{
		{"Maria Gonzalez", "Maria", "Gonzalez"},
		{"Maria Fernanda Gonzalez Lopez", "Maria", "Fernanda Gonzalez Lopez"},
		{"Acme", "Acme", "Account"},
		{"", "Merchant", "Account"},
	}
	for _, tc := range cases {
		first, last := splitOwnerName(tc.owner)
		s.Equal(tc.wantFirst, first, tc.owner)
		s.Equal(tc.wantLast, last, tc.owner)
	}
}
