package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

type MerchantOrdersHandler struct {
	orderSvs OrderServicer
}

func NewMerchantOrdersHandler(orderSvs OrderServicer) *MerchantOrdersHandler {
	return &MerchantOrdersHandler{orderSvs: orderSvs}
}

func merchantOrderLinks(base string, orderID string) Links {
	return Links{
		"self":        {Href: base + "/merchant/orders/" + orderID, Rel: "self"},
		"withdrawals": {Href: base + "/merchant/withdrawals?orderId=" + orderID, Rel: "withdrawals"},
	}
}

// Show GET MerchantOrdersRoute + /:id.
func (h *MerchantOrdersHandler) Show(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.orderSvs.Get(reqCtx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order, merchantOrderLinks(baseURL(c), order.ID)))
}

// Index GET MerchantOrdersRoute.
func (h *MerchantOrdersHandler) Index(c *gin.Context) {
	limit, nextToken := pageParams(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, next, listErr := h.orderSvs.List(reqCtx, limit, nextToken)
	if listErr != nil {
		if errors.Is(listErr, domain.ErrInvalidNextToken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid nextToken"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, listErr).SetType(gin.ErrorTypePrivate)
		return
	}

	b := baseURL(c)
	items := make([]OrderResponse, len(orders))
	for i, order := range orders {
		items[i] = newOrderResponse(order, merchantOrderLinks(b, order.ID))
	}

	c.JSON(http.StatusOK, CollectionResponse[OrderResponse]{
		Links:     paginationLinks(b+"/merchant/orders", limit, nextToken, next),
		Embedded:  embeddedItems[OrderResponse]{Items: items},
		NextToken: next,
	})
}
