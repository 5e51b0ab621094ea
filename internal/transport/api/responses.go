package api

import (
	"strconv"
	"time"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageParams разбирает limit/nextToken запроса. Невалидный limit молча приводится
// к дефолту, диапазон [1, maxPageLimit].
func pageParams(c *gin.Context) (uint, string) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil {
		limit = defaultPageLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return uint(limit), c.Query("nextToken")
}

type embeddedItems[T any] struct {
	Items []T `json:"items"`
}

// CollectionResponse общий конверт списочных ручек: HAL `_links` + `_embedded`.
// Items дублирует _embedded.items там, где этого ждут клиенты витрины.
type CollectionResponse[T any] struct {
	Links     Links            `json:"_links"`
	Embedded  embeddedItems[T] `json:"_embedded"`
	Items     []T              `json:"items,omitempty"`
	NextToken string           `json:"nextToken,omitempty"`
}

type ProductResponse struct {
	Links       Links     `json:"_links,omitempty"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceUSDC   float64   `json:"priceUsdc"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newProductResponse(p domain.Product, links Links) ProductResponse {
	return ProductResponse{
		Links:       links,
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceUSDC:   p.PriceUSDC.InexactFloat64(),
		CreatedAt:   p.CreatedAt,
	}
}

type CartResponse struct {
	Links     Links             `json:"_links,omitempty"`
	ID        string            `json:"id"`
	Items     []domain.CartItem `json:"items"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func newCartResponse(cart domain.Cart, links Links) CartResponse {
	return CartResponse{
		Links:     links,
		ID:        cart.ID,
		Items:     cart.Items,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}

type OrderResponse struct {
	Links              Links                  `json:"_links,omitempty"`
	ID                 string                 `json:"id"`
	CartID             string                 `json:"cartId"`
	PaymentID          string                 `json:"paymentId"`
	Status             domain.OrderStatusType `json:"status"`
	TotalUSDC          float64                `json:"totalUsdc"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
	PaidAt             *time.Time             `json:"paidAt,omitempty"`
	MuralTransactionID *string                `json:"muralTransactionId,omitempty"`
	PayoutRequestID    *string                `json:"payoutRequestId,omitempty"`
	WithdrawalID       *string                `json:"withdrawalId,omitempty"`
}

func newOrderResponse(order domain.Order, links Links) OrderResponse {
	return OrderResponse{
		Links:              links,
		ID:                 order.ID,
		CartID:             order.CartID,
		PaymentID:          order.PaymentID,
		Status:             order.Status,
		TotalUSDC:          order.TotalUSDC.InexactFloat64(),
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		PaidAt:             order.PaidAt,
		MuralTransactionID: order.MuralTransactionID,
		PayoutRequestID:    order.PayoutRequestID,
		WithdrawalID:       order.WithdrawalID,
	}
}

type WithdrawalResponse struct {
	Links           Links                       `json:"_links,omitempty"`
	ID              string                      `json:"id"`
	OrderID         string                      `json:"orderId"`
	PaymentID       string                      `json:"paymentId"`
	PayoutRequestID *string                     `json:"payoutRequestId,omitempty"`
	Status          domain.WithdrawalStatusType `json:"status"`
	AmountUSDC      float64                     `json:"amountUsdc"`
	AmountCOP       *float64                    `json:"amountCop,omitempty"`
	FailureReason   *string                     `json:"failureReason,omitempty"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

func newWithdrawalResponse(w domain.Withdrawal, links Links) WithdrawalResponse {
	resp := WithdrawalResponse{
		Links:           links,
		ID:              w.ID,
		OrderID:         w.OrderID,
		PaymentID:       w.PaymentID,
		PayoutRequestID: w.PayoutRequestID,
		Status:          w.Status,
		AmountUSDC:      w.AmountUSDC.InexactFloat64(),
		FailureReason:   w.FailureReason,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if w.AmountCOP != nil {
		amountCOP := w.AmountCOP.InexactFloat64()
		resp.AmountCOP = &amountCOP
	}
	return resp
}
