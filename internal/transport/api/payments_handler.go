package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentsHandler struct {
	cartSvs    CartServicer
	productSvs ProductServicer
	orderSvs   OrderServicer
	paymentSvs PaymentServicer
}

func NewPaymentsHandler(
	cartSvs CartServicer,
	productSvs ProductServicer,
	orderSvs OrderServicer,
	paymentSvs PaymentServicer,
) *PaymentsHandler {
	return &PaymentsHandler{
		cartSvs:    cartSvs,
		productSvs: productSvs,
		orderSvs:   orderSvs,
		paymentSvs: paymentSvs,
	}
}

type CreatePaymentRequest struct {
	CartID         string `json:"cartId" binding:"required"`
	IdempotencyKey string `json:"idempotencyKey" binding:"required,max_bytes=255"`
}

type CreatePaymentResponse struct {
	Links              Links   `json:"_links"`
	Message            string  `json:"message"`
	OrderID            string  `json:"orderId"`
	PaymentID          string  `json:"paymentId"`
	ExpectedAmountUSDC float64 `json:"expectedAmountUsdc"`
	DestinationAddress string  `json:"destinationAddress"`
	Blockchain         string  `json:"blockchain"`
	Memo               string  `json:"memo"`
	TransactionHash    *string `json:"transactionHash,omitempty"`
}

// Create POST PaymentsRoute. Идемпотентный старт оплаты: считает сумму корзины,
// заводит платеж у провайдера и заказ в статусе pending_payment, отвечает 202
// с депозитным адресом.
func (h *PaymentsHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "cartId and idempotencyKey are required",
		})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, MuralServiceTimeout)
	defer cancel()

	cart, cartErr := h.cartSvs.Get(reqCtx, req.CartID)
	if cartErr != nil {
		if errors.Is(cartErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, cartErr).SetType(gin.ErrorTypePrivate)
		return
	}

	totalUSDC, publicMsg, totalErr := h.cartTotal(reqCtx, cart)
	if totalErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, totalErr).SetType(gin.ErrorTypePrivate)
		return
	}
	if publicMsg != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": publicMsg})
		return
	}

	payment, paymentErr := h.paymentSvs.Create(reqCtx, uuid.NewString(), totalUSDC, req.IdempotencyKey)
	if paymentErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, paymentErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	// Создание заказа на повторе с тем же idempotencyKey упирается в уже
	// существующую запись, это штатный случай.
	_, orderErr := h.orderSvs.Create(reqCtx, &domain.Order{
		ID:        payment.OrderID,
		CartID:    req.CartID,
		PaymentID: payment.ID,
		Status:    domain.OrderStatusPendingPayment,
		TotalUSDC: totalUSDC,
	})
	if orderErr != nil && !errors.Is(orderErr, domain.ErrDuplicateKey) {
		_ = c.AbortWithError(http.StatusInternalServerError, orderErr).SetType(gin.ErrorTypePrivate)
		return
	}

	message := "Payment processing started. Send USDC to the deposit address."
	if payment.TransactionHash != nil {
		message = "Payment sent. USDC transfer submitted by backend."
	}

	b := baseURL(c)
	c.JSON(http.StatusAccepted, CreatePaymentResponse{
		Links: Links{
			"self":  {Href: b + "/payments", Rel: "self"},
			"order": {Href: b + "/merchant/orders/" + payment.OrderID, Rel: "order"},
		},
		Message:            message,
		OrderID:            payment.OrderID,
		PaymentID:          payment.ID,
		ExpectedAmountUSDC: payment.ExpectedAmountUSDC.InexactFloat64(),
		DestinationAddress: payment.DestinationAddress,
		Blockchain:         payment.Blockchain,
		Memo:               payment.Memo,
		TransactionHash:    payment.TransactionHash,
	})
}

// cartTotal суммирует корзину по актуальным ценам каталога. Вторым значением
// возвращает текст клиентской ошибки (400), третьим - внутреннюю ошибку (500).
func (h *PaymentsHandler) cartTotal(
	ctx context.Context,
	cart *domain.Cart,
) (decimal.Decimal, string, error) {
	total := decimal.Zero
	for _, item := range cart.Items {
		product, err := h.productSvs.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return decimal.Zero, "Product " + item.ProductID + " not found", nil
			}
			return decimal.Zero, "", err
		}
		total = total.Add(product.PriceUSDC.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !total.IsPositive() {
		return decimal.Zero, "Cart total must be positive", nil
	}
	return total, "", nil
}
