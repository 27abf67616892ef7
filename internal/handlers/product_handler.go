package handlers

import (
	"errors"
	"net/http"

	"shop-service/internal/dto"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products service.ProductService
	log      *zap.Logger
}

func NewProductHandler(products service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("product not found"))
			return
		}
		h.log.Error("get product failed", zap.Int64("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) List(c *gin.Context) {
	list, err := h.products.GetAll(c.Request.Context())
	if err != nil {
		h.log.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create product request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	p, err := h.products.Create(c.Request.Context(), service.ProductInput{
		Title:         req.Title,
		PriceCents:    req.PriceCents,
		QuantityTovar: req.QuantityTovar,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
			return
		}
		h.log.Error("create product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update stock request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	p, err := h.products.UpdateStock(c.Request.Context(), id, req.QuantityTovar)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("product not found"))
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		default:
			h.log.Error("update stock failed", zap.Int64("product_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("delete product failed", zap.Int64("product_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.Status(http.StatusNoContent)
}
