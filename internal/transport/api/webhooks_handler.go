package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/gin-gonic/gin"
)

type WebhooksHandler struct {
	webhookSvs WebhookServicer
}

func NewWebhooksHandler(webhookSvs WebhookServicer) *WebhooksHandler {
	return &WebhooksHandler{webhookSvs: webhookSvs}
}

type MuralWebhookRequest struct {
	EventID       string          `json:"eventId" binding:"required"`
	DeliveryID    string          `json:"deliveryId" binding:"required"`
	AttemptNumber int             `json:"attemptNumber"`
	EventCategory string          `json:"eventCategory" binding:"required"`
	OccurredAt    string          `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// Mural POST WebhooksMuralRoute. Отдает 500 на ошибке обработки, чтобы провайдер
// повторил доставку.
func (h *WebhooksHandler) Mural(c *gin.Context) {
	var req MuralWebhookRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid webhook payload"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, MuralServiceTimeout)
	defer cancel()

	outcome, err := h.webhookSvs.Process(reqCtx, service.WebhookEvent{
		EventID:       req.EventID,
		DeliveryID:    req.DeliveryID,
		AttemptNumber: req.AttemptNumber,
		EventCategory: req.EventCategory,
		OccurredAt:    req.OccurredAt,
		Payload:       req.Payload,
	})
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if outcome == service.WebhookOutcomeAlreadyProcessed {
		c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK"})
}
