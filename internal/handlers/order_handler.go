package handlers

import (
	"errors"
	"net/http"

	"shop-service/internal/dto"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// Checkout — оформление заказа с контролем остатков.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid checkout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	res, err := h.orders.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID:            req.UserID,
		ShippingAddressID: req.ShippingAddressID,
		Items:             items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
		case errors.Is(err, service.ErrProductNotFound),
			errors.Is(err, service.ErrInsufficientStock),
			errors.Is(err, service.ErrEmptyItems),
			errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
		default:
			h.log.Error("checkout failed", zap.Int64("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{Order: *res.Order, TotalCents: res.TotalCents})
}

// Create — простое создание заказа без проверки остатков.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	ord, err := h.orders.CreateOrder(c.Request.Context(), req.UserID, req.ShippingAddressID, req.ProductIDs)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
			return
		}
		h.log.Error("create order failed", zap.Int64("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusCreated, ord)
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ord, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
			return
		}
		h.log.Error("get order failed", zap.Int64("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) List(c *gin.Context) {
	list, err := h.orders.GetAll(c.Request.Context())
	if err != nil {
		h.log.Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}

	list, err := h.orders.GetByUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list user orders failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) AddProduct(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	ord, err := h.orders.AddProduct(c.Request.Context(), orderID, productID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
			return
		}
		h.log.Error("add product to order failed", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) RemoveProduct(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	ord, err := h.orders.RemoveProduct(c.Request.Context(), orderID, productID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
			return
		}
		h.log.Error("remove product from order failed", zap.Int64("order_id", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("delete order failed", zap.Int64("order_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.Status(http.StatusNoContent)
}
