package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// CartSessionHeader carries the guest cart id. The server issues one on the
// first write from a guest and echoes it on every cart response.
const CartSessionHeader = "X-Cart-Session"

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"lte=999"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"lte=999"`
}

type MergeCartRequest struct {
	Session string `json:"session"`
}

// CartOwner resolves the cart a request acts on: the signed-in user's, or the
// guest cart named by the session header or cart_session query parameter.
// With issue set, a guest without a session gets a new one.
func CartOwner(c *gin.Context, issue bool) (string, bool) {
	if userID, ok := middleware.GetUserID(c); ok {
		return service.UserCartOwner(userID), true
	}

	session := strings.TrimSpace(c.GetHeader(CartSessionHeader))
	if session == "" {
		session = strings.TrimSpace(c.Query("cart_session"))
	}
	if session == "" {
		if !issue {
			return "", false
		}
		session = uuid.NewString()
	}
	c.Header(CartSessionHeader, session)
	return service.GuestCartOwner(session), true
}

// GetCart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	owner, ok := CartOwner(c, false)
	if !ok {
		respondCart(c, http.StatusOK, cart.Snapshot{})
		return
	}

	snap, err := ctrl.cartService.Get(c.Request.Context(), owner)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// AddToCart
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required and quantity must not exceed 999")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	owner, _ := CartOwner(c, true)
	snap, err := ctrl.cartService.AddItem(c.Request.Context(), owner, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Color:     req.Color,
		Size:      req.Size,
	})
	if err != nil {
		respondCartError(c, err)
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"owner":      owner,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	respondCart(c, http.StatusOK, snap)
}

// UpdateCartItem sets a line's quantity; zero or less removes it
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id is required and quantity must not exceed 999")
		return
	}

	owner, ok := CartOwner(c, false)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Cart session is required")
		return
	}

	key := cart.Key{ProductID: req.ProductID, Color: req.Color, Size: req.Size}
	snap, err := ctrl.cartService.UpdateItem(c.Request.Context(), owner, key, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// RemoveFromCart
// DELETE /api/v1/cart/items?product_id=&color=&size=
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id is required")
		return
	}

	owner, ok := CartOwner(c, false)
	if !ok {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Cart session is required")
		return
	}

	key := cart.Key{ProductID: productID, Color: c.Query("color"), Size: c.Query("size")}
	snap, err := ctrl.cartService.RemoveItem(c.Request.Context(), owner, key)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// ClearCart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	owner, ok := CartOwner(c, false)
	if !ok {
		respondCart(c, http.StatusOK, cart.Snapshot{})
		return
	}

	snap, err := ctrl.cartService.Clear(c.Request.Context(), owner)
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

// MergeCart folds the guest cart into the signed-in user's cart
// POST /api/v1/cart/merge
func (ctrl *CartController) MergeCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req MergeCartRequest
	_ = c.ShouldBindJSON(&req)
	session := strings.TrimSpace(req.Session)
	if session == "" {
		session = strings.TrimSpace(c.GetHeader(CartSessionHeader))
	}
	if session == "" {
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Guest cart session is required")
		return
	}

	snap, err := ctrl.cartService.Merge(c.Request.Context(), service.GuestCartOwner(session), service.UserCartOwner(userID))
	if err != nil {
		respondCartError(c, err)
		return
	}
	respondCart(c, http.StatusOK, snap)
}

func respondCart(c *gin.Context, status int, snap cart.Snapshot) {
	lines := snap.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	body := gin.H{
		"items":      lines,
		"item_count": snap.ItemCount,
		"subtotal":   snap.Subtotal,
		"empty":      snap.IsEmpty(),
	}
	if snap.IsEmpty() {
		body["message"] = "Your cart is empty"
	}
	c.JSON(status, body)
}

func respondCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrInvalidVariant):
		apperrors.BadRequest(c, apperrors.CartInvalidVariant, "This color or size is not available")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "Quantity must be between 1 and 999")
	case errors.Is(err, service.ErrInsufficientStock):
		apperrors.Conflict(c, apperrors.OrderInsufficientStock, "Not enough stock")
	case errors.Is(err, service.ErrCartItemNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Item is not in the cart")
	case errors.Is(err, service.ErrInvalidCartOwner):
		apperrors.BadRequest(c, apperrors.CartSessionRequired, "Cart session is invalid")
	case errors.Is(err, service.ErrCartUnavailable):
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.CartUnavailable, "Cart is temporarily unavailable")
	default:
		middleware.GetLoggerFromContext(c).Error("Cart request failed", err)
		apperrors.InternalError(c, "")
	}
}
