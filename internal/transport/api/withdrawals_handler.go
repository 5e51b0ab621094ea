package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

// WithdrawalsHandler публичный (не merchant) список выводов.
type WithdrawalsHandler struct {
	withdrawalSvs WithdrawalServicer
}

func NewWithdrawalsHandler(withdrawalSvs WithdrawalServicer) *WithdrawalsHandler {
	return &WithdrawalsHandler{withdrawalSvs: withdrawalSvs}
}

// Index GET WithdrawalsRoute.
func (h *WithdrawalsHandler) Index(c *gin.Context) {
	limit, nextToken := pageParams(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, next, listErr := h.withdrawalSvs.List(reqCtx, limit, nextToken)
	if listErr != nil {
		if errors.Is(listErr, domain.ErrInvalidNextToken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid nextToken"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, listErr).SetType(gin.ErrorTypePrivate)
		return
	}

	b := baseURL(c)
	items := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		items[i] = newWithdrawalResponse(w, Links{
			"self":  {Href: b + "/withdrawals/" + w.ID, Rel: "self"},
			"order": {Href: b + "/merchant/orders/" + w.OrderID, Rel: "order"},
		})
	}

	c.JSON(http.StatusOK, CollectionResponse[WithdrawalResponse]{
		Links:     selfLink(b + "/withdrawals"),
		Embedded:  embeddedItems[WithdrawalResponse]{Items: items},
		Items:     items,
		NextToken: next,
	})
}
