package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	AddressID     *uint  `json:"address_id"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetOrders lists the current user's orders
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch orders", err)
		apperrors.InternalError(c, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrderByID
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrder(userID, orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// CreateOrder checks out the current user's cart
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "payment_method is required")
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, service.CheckoutInput{
		AddressID:     req.AddressID,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	log.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
	})
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListAllOrders is the back-office order list
// GET /api/v1/admin/orders?status=&from=&to=&limit=&offset=
func (ctrl *OrderController) ListAllOrders(c *gin.Context) {
	filter, ok := orderFilterFromQuery(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(filter)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list orders", err)
		apperrors.InternalError(c, "Failed to load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateOrderStatus
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "status is required")
		return
	}

	order, err := ctrl.orderService.UpdateStatus(orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrOrderAccessDenied):
		apperrors.Forbidden(c, "This order belongs to another account")
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.OrderEmptyCart, "Your cart is empty")
	case errors.Is(err, service.ErrAddressRequired):
		apperrors.BadRequest(c, apperrors.OrderAddressRequired, "Add a shipping address first")
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Address not found")
	case errors.Is(err, service.ErrInvalidPayment):
		apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "Payment method must be cod, bank_transfer or card")
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrProductUnavailable):
		apperrors.Conflict(c, apperrors.OrderInsufficientStock, "Some items are no longer available in the requested quantity")
	case errors.Is(err, service.ErrInvalidOrderStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
	case errors.Is(err, service.ErrOrderStatusFinal):
		apperrors.Conflict(c, apperrors.OrderInvalidStatus, "Delivered or cancelled orders cannot change status")
	case errors.Is(err, service.ErrCartUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.CartUnavailable, "Cart is temporarily unavailable")
	default:
		middleware.GetLoggerFromContext(c).Error("Order request failed", err)
		apperrors.InternalError(c, "")
	}
}

// orderFilterFromQuery reads status, from and to (YYYY-MM-DD, to is
// exclusive), limit and offset.
func orderFilterFromQuery(c *gin.Context) (repository.OrderFilter, bool) {
	var filter repository.OrderFilter

	if raw := c.Query("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.Valid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
			return filter, false
		}
		filter.Status = &status
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, name+" must be YYYY-MM-DD")
			return filter, false
		}
		*dst = &t
	}

	var paging struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&paging); err != nil || paging.Limit < 0 || paging.Offset < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit and offset must be non-negative integers")
		return filter, false
	}
	filter.Limit = paging.Limit
	filter.Offset = paging.Offset
	return filter, true
}
