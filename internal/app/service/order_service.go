package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAccessDenied  = errors.New("order belongs to another user")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressRequired    = errors.New("shipping address required")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrOrderStatusFinal   = errors.New("order status can no longer change")
	ErrProductUnavailable = errors.New("product in cart is no longer available")
)

type CheckoutInput struct {
	AddressID     *uint
	PaymentMethod model.PaymentMethod
}

// ShippingSnapshot is the address as it was when the order was placed.
type ShippingSnapshot struct {
	Label       string  `json:"label,omitempty"`
	Recipient   string  `json:"recipient"`
	Phone       string  `json:"phone"`
	FullAddress string  `json:"full_address"`
	Lat         float64 `json:"lat,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrder(userID, orderID uint) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, error)
	UpdateStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	carts       *cart.Registry
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	carts *cart.Registry,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		carts:       carts,
	}
}

// Checkout turns the user's cart into an order. Lines are repriced from the
// product table, stock is taken in the same transaction that writes the order,
// and the cart is cleared only after that transaction commits.
func (s *orderService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*model.Order, error) {
	log := logger.WithContext(map[string]interface{}{
		"user_id": userID,
	})

	if !input.PaymentMethod.Valid() {
		return nil, ErrInvalidPayment
	}

	var order *model.Order
	err := s.carts.Do(ctx, UserCartOwner(userID), func(store *cart.Store) error {
		lines := store.Lines()
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		address, err := s.resolveAddress(userID, input.AddressID)
		if err != nil {
			return err
		}

		order, err = s.buildOrder(userID, lines, address, input.PaymentMethod)
		if err != nil {
			return err
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, item := range order.OrderItems {
				if err := s.productRepo.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
					if errors.Is(err, repository.ErrInsufficientStock) {
						log.Warn("Checkout failed: insufficient stock", map[string]interface{}{
							"product_id": item.ProductID,
							"quantity":   item.Quantity,
						})
						return ErrInsufficientStock
					}
					return err
				}
			}
			return s.orderRepo.Create(tx, order)
		})
		if err != nil {
			return err
		}

		store.ClearCart(ctx)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.Total,
		"items":    len(order.OrderItems),
	})
	return order, nil
}

func (s *orderService) resolveAddress(userID uint, addressID *uint) (*model.Address, error) {
	var (
		address *model.Address
		err     error
	)
	if addressID != nil {
		address, err = s.addressRepo.FindByID(*addressID)
		if err == nil && address.UserID != userID {
			return nil, ErrAddressNotFound
		}
	} else {
		address, err = s.addressRepo.FindDefault(userID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if addressID != nil {
				return nil, ErrAddressNotFound
			}
			return nil, ErrAddressRequired
		}
		return nil, err
	}
	return address, nil
}

func (s *orderService) buildOrder(
	userID uint,
	lines []cart.Line,
	address *model.Address,
	payment model.PaymentMethod,
) (*model.Order, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		product, ok := byID[l.ProductID]
		if !ok {
			return nil, ErrProductUnavailable
		}
		price := decimal.NewFromFloat(product.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Price:     product.Price,
		})
	}

	shipping, err := json.Marshal(ShippingSnapshot{
		Label:       address.Label,
		Recipient:   address.Recipient,
		Phone:       address.Phone,
		FullAddress: address.FullAddress,
		Lat:         address.Lat,
		Lng:         address.Lng,
	})
	if err != nil {
		return nil, err
	}

	return &model.Order{
		UserID:          userID,
		Status:          model.OrderStatusPending,
		Total:           total.InexactFloat64(),
		ShippingAddress: string(shipping),
		PaymentMethod:   payment,
		OrderItems:      items,
	}, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUserID(userID)
}

func (s *orderService) GetOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order access denied", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, error) {
	return s.orderRepo.FindAll(filter)
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are
// final; cancelling puts the ordered quantities back in stock.
func (s *orderService) UpdateStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if order.Status == model.OrderStatusDelivered || order.Status == model.OrderStatusCancelled {
		return nil, ErrOrderStatusFinal
	}

	if status == model.OrderStatusCancelled {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			for _, item := range order.OrderItems {
				if err := s.productRepo.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			return tx.Model(&model.Order{}).Where("id = ?", order.ID).Update("status", status).Error
		})
	} else {
		err = s.orderRepo.UpdateStatus(order.ID, status)
	}
	if err != nil {
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})
	order.Status = status
	return order, nil
}

func (s *orderService) findOrder(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
