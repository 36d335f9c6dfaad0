package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

// Listener receives the cart state after each mutation.
type Listener func(Snapshot)

// Store owns the line items of one cart and keeps item count and subtotal
// consistent with them. All methods are safe for concurrent use; each mutation
// is applied atomically.
type Store struct {
	mu        sync.Mutex
	name      string
	storage   Storage
	lines     []Line
	itemCount int
	subtotal  decimal.Decimal

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// NewStore returns an empty cart that persists itself to storage under name.
// A nil storage disables persistence.
func NewStore(name string, storage Storage) *Store {
	return &Store{
		name:      name,
		storage:   storage,
		subtotal:  decimal.Zero,
		listeners: make(map[int]Listener),
	}
}

// Load hydrates a store from the blob persisted under name. Aggregates are
// recomputed from the stored lines. An unreadable blob yields an empty cart.
func Load(ctx context.Context, name string, storage Storage) (*Store, error) {
	s := NewStore(name, storage)
	if storage == nil {
		return s, nil
	}

	raw, ok, err := storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return s, nil
	}

	var saved Snapshot
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		logger.Warn("Discarding unreadable persisted cart", map[string]interface{}{
			"cart":  name,
			"error": err.Error(),
		})
		return s, nil
	}

	for _, l := range saved.Lines {
		if l.Quantity < 1 {
			continue
		}
		s.lines = mergeLine(s.lines, l)
	}
	s.itemCount, s.subtotal = aggregate(s.lines)
	return s, nil
}

// Name is the storage key the cart persists under.
func (s *Store) Name() string {
	return s.name
}

// AddToCart merges line into the cart. A line with the same product, color and
// size has its quantity increased; otherwise line is appended.
func (s *Store) AddToCart(ctx context.Context, line Line) {
	s.mutate(ctx, func(lines []Line) []Line {
		return mergeLine(lines, line)
	})
}

// RemoveFromCart deletes the line matching the triple. Absent lines are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, productID, color, size string) {
	key := Key{ProductID: productID, Color: color, Size: size}
	s.mutate(ctx, func(lines []Line) []Line {
		out := make([]Line, 0, len(lines))
		for _, l := range lines {
			if l.Key() != key {
				out = append(out, l)
			}
		}
		return out
	})
}

// UpdateQuantity replaces the quantity of the matching line. Quantities below
// one leave the cart untouched; callers remove the line instead.
func (s *Store) UpdateQuantity(ctx context.Context, productID, color, size string, quantity int) {
	if quantity < 1 {
		return
	}
	key := Key{ProductID: productID, Color: color, Size: size}
	s.mutate(ctx, func(lines []Line) []Line {
		out := make([]Line, len(lines))
		copy(out, lines)
		for i := range out {
			if out[i].Key() == key {
				out[i].Quantity = quantity
			}
		}
		return out
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, func([]Line) []Line {
		return nil
	})
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemCount
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotal
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Find returns the line for the triple, if any.
func (s *Store) Find(productID, color, size string) (Line, bool) {
	key := Key{ProductID: productID, Color: color, Size: size}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.Key() == key {
			return l, true
		}
	}
	return Line{}, false
}

// Subscribe registers fn to be called after every mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

// mutate swaps in the lines produced by fn, recomputes aggregates, persists and
// notifies listeners.
func (s *Store) mutate(ctx context.Context, fn func([]Line) []Line) {
	s.mu.Lock()
	s.lines = fn(s.lines)
	s.itemCount, s.subtotal = aggregate(s.lines)
	snap := s.snapshotLocked()
	s.persistLocked(ctx, snap)
	s.mu.Unlock()

	s.notify(snap)
}

// Save writes the current cart to storage and reports the outcome. Mutations
// persist on their own; Save is for callers that must know the write landed.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, s.snapshotLocked())
}

// persistLocked writes the cart blob. Failures are logged and otherwise ignored:
// the in-memory cart stays authoritative for the current session.
func (s *Store) persistLocked(ctx context.Context, snap Snapshot) {
	if err := s.write(ctx, snap); err != nil {
		logger.Warn("Failed to persist cart", map[string]interface{}{
			"cart":  s.name,
			"error": err.Error(),
		})
	}
}

func (s *Store) write(ctx context.Context, snap Snapshot) error {
	if s.storage == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.storage.Set(ctx, s.name, string(data))
}

func (s *Store) notify(snap Snapshot) {
	s.listenerMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:     copyLines(s.lines),
		ItemCount: s.itemCount,
		Subtotal:  s.subtotal,
	}
}

func mergeLine(lines []Line, line Line) []Line {
	out := copyLines(lines)
	for i := range out {
		if out[i].Key() == line.Key() {
			out[i].Quantity += line.Quantity
			return out
		}
	}
	return append(out, line)
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
