package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

type CartsHandler struct {
	cartSvs CartServicer
}

func NewCartsHandler(cartSvs CartServicer) *CartsHandler {
	return &CartsHandler{cartSvs: cartSvs}
}

type CreateCartRequest struct {
	Items []CreateCartItem `json:"items" binding:"required,min=1,dive"`
}

type CreateCartItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func cartLinks(base string, id string) Links {
	return Links{
		"self":       {Href: base + "/carts/" + id, Rel: "self"},
		"collection": {Href: base + "/carts", Rel: "collection"},
	}
}

// Create POST CartsRoute.
func (h *CartsHandler) Create(c *gin.Context) {
	var req CreateCartRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "items array is required and must not be empty",
		})
		return
	}

	items := make([]domain.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, createErr := h.cartSvs.Create(reqCtx, items)
	if createErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, createErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(*cart, cartLinks(baseURL(c), cart.ID)))
}

// Index GET CartsRoute.
func (h *CartsHandler) Index(c *gin.Context) {
	limit, nextToken := pageParams(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	carts, next, listErr := h.cartSvs.List(reqCtx, limit, nextToken)
	if listErr != nil {
		if errors.Is(listErr, domain.ErrInvalidNextToken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid nextToken"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, listErr).SetType(gin.ErrorTypePrivate)
		return
	}

	b := baseURL(c)
	items := make([]CartResponse, len(carts))
	for i, cart := range carts {
		items[i] = newCartResponse(cart, selfLink(b+"/carts/"+cart.ID))
	}

	c.JSON(http.StatusOK, CollectionResponse[CartResponse]{
		Links:     selfLink(b + "/carts"),
		Embedded:  embeddedItems[CartResponse]{Items: items},
		Items:     items,
		NextToken: next,
	})
}

// Show GET CartsRoute + /:id.
func (h *CartsHandler) Show(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	cart, err := h.cartSvs.Get(reqCtx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cart not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newCartResponse(*cart, cartLinks(baseURL(c), cart.ID)))
}
