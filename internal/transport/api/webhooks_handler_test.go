package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-market/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type WebhooksHandlerTestSuite struct {
	suite.Suite
	mockCtrl       *gomock.Controller
	mockWebhookSvs *mocks.MockWebhookServicer
	router         *gin.Engine
}

func TestWebhooksHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhooksHandlerTestSuite))
}

func (s *WebhooksHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockCtrl = gomock.NewController(s.T())
	s.mockWebhookSvs = mocks.NewMockWebhookServicer(s.mockCtrl)

	s.router = New(RouterArgs{WebhookService: s.mockWebhookSvs})
}

func (s *WebhooksHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WebhooksHandlerTestSuite) webhookPayload() map[string]any {
	return map[string]any{
		"eventId":       uuid.NewString(),
		"deliveryId":    uuid.NewString(),
		"attemptNumber": 1,
		"eventCategory": "balance_activity",
		"payload":       map[string]any{"type": "account_credited"},
	}
}

func (s *WebhooksHandlerTestSuite) TestMuralOK() {
	payload := s.webhookPayload()

	s.mockWebhookSvs.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event service.WebhookEvent) (service.WebhookOutcome, error) {
			s.Equal(payload["eventId"], event.EventID)
			s.Equal(payload["deliveryId"], event.DeliveryID)
			s.Equal("balance_activity", event.EventCategory)
			return service.WebhookOutcomeProcessed, nil
		}).Times(1)

	resp, err := testutils.MakeJSONRequest(s.router, http.MethodPost, WebhooksMuralRoute, payload)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(testutils.DecodeJSONBody(resp, &body))
	s.Equal("OK", body["message"])
}

func (s *WebhooksHandlerTestSuite) TestMuralAlreadyProcessed() {
	s.mockWebhookSvs.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(service.WebhookOutcomeAlreadyProcessed, nil).Times(1)

	resp, err := testutils.MakeJSONRequest(s.router, http.MethodPost, WebhooksMuralRoute, s.webhookPayload())
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(testutils.DecodeJSONBody(resp, &body))
	s.Equal("Already processed", body["message"])
}

func (s *WebhooksHandlerTestSuite) TestMuralInvalidPayload() {
	// Без обязательных eventId/deliveryId запрос отклоняется до вызова сервиса.
	s.mockWebhookSvs.EXPECT().Process(gomock.Any(), gomock.Any()).Times(0)

	resp, err := testutils.MakeJSONRequest(s.router, http.MethodPost, WebhooksMuralRoute, map[string]any{
		"attemptNumber": 1,
	})
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(testutils.DecodeJSONBody(resp, &body))
	s.Equal("Invalid webhook payload", body["message"])
}

func (s *WebhooksHandlerTestSuite) TestMuralProcessErrorTriggersRetry() {
	s.mockWebhookSvs.EXPECT().
		Process(gomock.Any(), gomock.Any()).
		Return(service.WebhookOutcomeProcessed, errors.New("store unavailable")).Times(1)

	resp, err := testutils.MakeJSONRequest(s.router, http.MethodPost, WebhooksMuralRoute, s.webhookPayload())
	s.Require().NoError(err)
	s.Equal(http.StatusInternalServerError, resp.StatusCode)
}
