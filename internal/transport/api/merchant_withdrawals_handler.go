package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

type MerchantWithdrawalsHandler struct {
	withdrawalSvs WithdrawalServicer
}

func NewMerchantWithdrawalsHandler(withdrawalSvs WithdrawalServicer) *MerchantWithdrawalsHandler {
	return &MerchantWithdrawalsHandler{withdrawalSvs: withdrawalSvs}
}

func merchantWithdrawalLinks(base string, w domain.Withdrawal) Links {
	return Links{
		"self":  {Href: base + "/merchant/withdrawals/" + w.ID, Rel: "self"},
		"order": {Href: base + "/merchant/orders/" + w.OrderID, Rel: "order"},
	}
}

// Show GET MerchantWithdrawalsRoute + /:id.
func (h *MerchantWithdrawalsHandler) Show(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.withdrawalSvs.Get(reqCtx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Withdrawal not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newWithdrawalResponse(*withdrawal, merchantWithdrawalLinks(baseURL(c), *withdrawal)))
}

// Index GET MerchantWithdrawalsRoute. С параметром orderId отдает выводы заказа
// без пагинации, их не больше одного.
func (h *MerchantWithdrawalsHandler) Index(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	b := baseURL(c)

	if orderID := c.Query("orderId"); orderID != "" {
		withdrawals, err := h.withdrawalSvs.GetByOrderID(reqCtx, orderID)
		if err != nil {
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
			return
		}
		items := make([]WithdrawalResponse, len(withdrawals))
		for i, w := range withdrawals {
			items[i] = newWithdrawalResponse(w, merchantWithdrawalLinks(b, w))
		}
		c.JSON(http.StatusOK, CollectionResponse[WithdrawalResponse]{
			Links:    selfLink(b + "/merchant/withdrawals?orderId=" + orderID),
			Embedded: embeddedItems[WithdrawalResponse]{Items: items},
		})
		return
	}

	limit, nextToken := pageParams(c)
	withdrawals, next, listErr := h.withdrawalSvs.List(reqCtx, limit, nextToken)
	if listErr != nil {
		if errors.Is(listErr, domain.ErrInvalidNextToken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid nextToken"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, listErr).SetType(gin.ErrorTypePrivate)
		return
	}

	items := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		items[i] = newWithdrawalResponse(w, merchantWithdrawalLinks(b, w))
	}

	c.JSON(http.StatusOK, CollectionResponse[WithdrawalResponse]{
		Links:     paginationLinks(b+"/merchant/withdrawals", limit, nextToken, next),
		Embedded:  embeddedItems[WithdrawalResponse]{Items: items},
		NextToken: next,
	})
}
