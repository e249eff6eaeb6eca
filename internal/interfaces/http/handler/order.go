package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/trade"
)

// OrderHandler handles order HTTP requests, including the order/product
// association endpoints.
type OrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *trade.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the /orders routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.List)
	orders.POST("", h.Create)
	orders.GET("/user/:userId", h.ListForUser)
	orders.GET("/:orderId", h.GetByID)
	orders.PUT("/:orderId", h.Update)
	orders.DELETE("/:orderId", h.Delete)
	orders.GET("/:orderId/products", h.ListProducts)
	orders.PUT("/:orderId/add_product/:productId", h.AddProduct)
	orders.DELETE("/:orderId/remove_product/:productId", h.RemoveProduct)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// ListForUser returns the orders owned by a user. An unknown user has no
// orders, so the result is an empty list rather than 404.
// GET /orders/user/:userId
func (h *OrderHandler) ListForUser(c *gin.Context) {
	userID, err := parseID(c, "userId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	orders, err := h.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID handles GET /orders/:orderId
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := parseID(c, "orderId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Create places an order for an existing user.
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req trade.CreateOrderRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.HandleError(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Update handles PUT /orders/:orderId
func (h *OrderHandler) Update(c *gin.Context) {
	id, err := parseID(c, "orderId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req trade.UpdateOrderRequest
	if err := h.bindJSON(c, &req); err != nil {
		h.HandleError(c, err)
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete removes an order together with its product associations.
// DELETE /orders/:orderId
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "orderId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListProducts returns the products of an order in the order they were added.
// GET /orders/:orderId/products
func (h *OrderHandler) ListProducts(c *gin.Context) {
	orderID, err := parseID(c, "orderId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	products, err := h.orderService.ListProducts(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// AddProduct adds a product to an order. Adding a product that is already
// in the order is a conflict.
// PUT /orders/:orderId/add_product/:productId
func (h *OrderHandler) AddProduct(c *gin.Context) {
	orderID, productID, ok := h.pairParams(c)
	if !ok {
		return
	}

	if err := h.orderService.AddProduct(c.Request.Context(), orderID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveProduct handles DELETE /orders/:orderId/remove_product/:productId
func (h *OrderHandler) RemoveProduct(c *gin.Context) {
	orderID, productID, ok := h.pairParams(c)
	if !ok {
		return
	}

	if err := h.orderService.RemoveProduct(c.Request.Context(), orderID, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// pairParams parses both ids of an association route, rendering the error
// itself when either is invalid.
func (h *OrderHandler) pairParams(c *gin.Context) (orderID, productID uint64, ok bool) {
	orderID, err := parseID(c, "orderId")
	if err != nil {
		h.HandleError(c, err)
		return 0, 0, false
	}
	productID, err = parseID(c, "productId")
	if err != nil {
		h.HandleError(c, err)
		return 0, 0, false
	}
	return orderID, productID, true
}
