package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	productSvs ProductServicer
}

func NewProductsHandler(productSvs ProductServicer) *ProductsHandler {
	return &ProductsHandler{productSvs: productSvs}
}

func productLinks(base string, id string) Links {
	return Links{
		"self":       {Href: base + "/products/" + id, Rel: "self"},
		"collection": {Href: base + "/products", Rel: "collection"},
	}
}

// Index GET ProductsRoute. Пустой каталог досеивается демо-товарами перед выдачей.
func (h *ProductsHandler) Index(c *gin.Context) {
	limit, nextToken := pageParams(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.productSvs.EnsureDefaults(reqCtx); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	products, next, listErr := h.productSvs.List(reqCtx, limit, nextToken)
	if listErr != nil {
		if errors.Is(listErr, domain.ErrInvalidNextToken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid nextToken"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, listErr).SetType(gin.ErrorTypePrivate)
		return
	}

	b := baseURL(c)
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = newProductResponse(p, selfLink(b+"/products/"+p.ID))
	}

	c.JSON(http.StatusOK, CollectionResponse[ProductResponse]{
		Links:     selfLink(b + "/products"),
		Embedded:  embeddedItems[ProductResponse]{Items: items},
		Items:     items,
		NextToken: next,
	})
}

// Show GET ProductsRoute + /:id.
func (h *ProductsHandler) Show(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, err := h.productSvs.Get(reqCtx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, newProductResponse(*product, productLinks(baseURL(c), product.ID)))
}
