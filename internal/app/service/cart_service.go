package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

var (
	ErrInvalidVariant    = errors.New("product does not offer this color or size")
	ErrInvalidQuantity   = errors.New("quantity must be between 1 and 999")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartUnavailable   = errors.New("cart storage unavailable")
	ErrInvalidCartOwner  = errors.New("invalid cart owner")
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 999

// UserCartOwner and GuestCartOwner build the registry key of a cart.
func UserCartOwner(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func GuestCartOwner(session string) string {
	return "guest:" + strings.TrimSpace(session)
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Color     string
	Size      string
}

type CartService interface {
	Get(ctx context.Context, owner string) (cart.Snapshot, error)
	AddItem(ctx context.Context, owner string, input AddItemInput) (cart.Snapshot, error)
	UpdateItem(ctx context.Context, owner string, key cart.Key, quantity int) (cart.Snapshot, error)
	RemoveItem(ctx context.Context, owner string, key cart.Key) (cart.Snapshot, error)
	Clear(ctx context.Context, owner string) (cart.Snapshot, error)
	Merge(ctx context.Context, from, to string) (cart.Snapshot, error)
	Subscribe(owner string, fn cart.Listener) func()
}

type cartService struct {
	registry    *cart.Registry
	productRepo repository.ProductRepository
}

func NewCartService(registry *cart.Registry, productRepo repository.ProductRepository) CartService {
	return &cartService{registry: registry, productRepo: productRepo}
}

func (s *cartService) Get(ctx context.Context, owner string) (cart.Snapshot, error) {
	return s.do(ctx, owner, func(*cart.Store) error { return nil })
}

// AddItem prices the line from the current product record. Requests for a
// color or size the product does not offer are rejected.
func (s *cartService) AddItem(ctx context.Context, owner string, input AddItemInput) (cart.Snapshot, error) {
	if input.Quantity < 1 || input.Quantity > MaxLineQuantity {
		return cart.Snapshot{}, ErrInvalidQuantity
	}

	product, err := findProduct(s.productRepo, input.ProductID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if !product.OffersVariant(input.Color, input.Size) {
		logger.Warn("Rejected cart line with unknown variant", map[string]interface{}{
			"product_id": product.ID,
			"color":      input.Color,
			"size":       input.Size,
		})
		return cart.Snapshot{}, ErrInvalidVariant
	}

	line := cart.Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Image:     product.PrimaryImage(),
		Quantity:  input.Quantity,
		Color:     input.Color,
		Size:      input.Size,
	}

	return s.do(ctx, owner, func(store *cart.Store) error {
		inCart := 0
		if existing, ok := store.Find(line.ProductID, line.Color, line.Size); ok {
			inCart = existing.Quantity
		}
		if line.Quantity > product.Stock-inCart {
			return ErrInsufficientStock
		}
		store.AddToCart(ctx, line)
		return nil
	})
}

// UpdateItem sets the quantity of an existing line. A quantity below one
// removes the line.
func (s *cartService) UpdateItem(ctx context.Context, owner string, key cart.Key, quantity int) (cart.Snapshot, error) {
	if quantity > MaxLineQuantity {
		return cart.Snapshot{}, ErrInvalidQuantity
	}
	stock := -1
	if quantity >= 1 {
		product, err := findProduct(s.productRepo, key.ProductID)
		if err != nil {
			return cart.Snapshot{}, err
		}
		stock = product.Stock
	}

	return s.do(ctx, owner, func(store *cart.Store) error {
		if _, ok := store.Find(key.ProductID, key.Color, key.Size); !ok {
			return ErrCartItemNotFound
		}
		if quantity < 1 {
			store.RemoveFromCart(ctx, key.ProductID, key.Color, key.Size)
			return nil
		}
		if quantity > stock {
			return ErrInsufficientStock
		}
		store.UpdateQuantity(ctx, key.ProductID, key.Color, key.Size, quantity)
		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, owner string, key cart.Key) (cart.Snapshot, error) {
	return s.do(ctx, owner, func(store *cart.Store) error {
		store.RemoveFromCart(ctx, key.ProductID, key.Color, key.Size)
		return nil
	})
}

func (s *cartService) Clear(ctx context.Context, owner string) (cart.Snapshot, error) {
	return s.do(ctx, owner, func(store *cart.Store) error {
		store.ClearCart(ctx)
		return nil
	})
}

func (s *cartService) Merge(ctx context.Context, from, to string) (cart.Snapshot, error) {
	if !validOwner(from) || !validOwner(to) {
		return cart.Snapshot{}, ErrInvalidCartOwner
	}
	snap, err := s.registry.Merge(ctx, from, to)
	if err != nil {
		logger.Error("Failed to merge carts", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return cart.Snapshot{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}

	logger.Info("Carts merged", map[string]interface{}{
		"from":       from,
		"to":         to,
		"item_count": snap.ItemCount,
	})
	return snap, nil
}

func (s *cartService) Subscribe(owner string, fn cart.Listener) func() {
	return s.registry.Subscribe(owner, fn)
}

// do runs fn against owner's cart and returns the resulting snapshot. Storage
// failures while loading surface as ErrCartUnavailable; errors from fn pass
// through untouched.
func (s *cartService) do(ctx context.Context, owner string, fn func(*cart.Store) error) (cart.Snapshot, error) {
	if !validOwner(owner) {
		return cart.Snapshot{}, ErrInvalidCartOwner
	}

	var snap cart.Snapshot
	ran := false
	err := s.registry.Do(ctx, owner, func(store *cart.Store) error {
		ran = true
		if err := fn(store); err != nil {
			return err
		}
		snap = store.Snapshot()
		return nil
	})
	if err != nil {
		if !ran {
			logger.Error("Failed to load cart", err, map[string]interface{}{
				"owner": owner,
			})
			return cart.Snapshot{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
		}
		return cart.Snapshot{}, err
	}
	return snap, nil
}

func validOwner(owner string) bool {
	kind, id, ok := strings.Cut(owner, ":")
	return ok && id != "" && (kind == "user" || kind == "guest")
}
