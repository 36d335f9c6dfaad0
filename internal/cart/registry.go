package cart

import (
	"context"
	"fmt"
	"sync"
)

// DefaultNamespace prefixes every persisted cart blob.
const DefaultNamespace = "shopping-cart"

// Registry hands out the cart of each owner. Carts are loaded from storage on
// every access, so storage stays the single source of truth across processes;
// mutations for one owner are serialized.
type Registry struct {
	storage   Storage
	namespace string

	mu     sync.Mutex
	locks  map[string]*ownerLock
	subs   map[string]map[int]Listener
	nextID int
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func NewRegistry(storage Storage, namespace string) *Registry {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Registry{
		storage:   storage,
		namespace: namespace,
		locks:     make(map[string]*ownerLock),
		subs:      make(map[string]map[int]Listener),
	}
}

// BlobName returns the storage key for owner's cart.
func (r *Registry) BlobName(owner string) string {
	return fmt.Sprintf("%s:%s", r.namespace, owner)
}

// Do loads owner's cart and runs fn with exclusive access to it. Subscribers of
// owner observe every mutation fn makes.
func (r *Registry) Do(ctx context.Context, owner string, fn func(*Store) error) error {
	unlock := r.lock(owner)
	defer unlock()
	return r.doLocked(ctx, owner, fn)
}

// Snapshot returns owner's current cart.
func (r *Registry) Snapshot(ctx context.Context, owner string) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, owner, func(s *Store) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

// Merge folds every line of from into to with add-to-cart semantics and then
// clears from. from is only cleared once to has been saved, so a failed merge
// leaves the guest lines in place. Merging a cart into itself is a no-op.
func (r *Registry) Merge(ctx context.Context, from, to string) (Snapshot, error) {
	if from == to {
		return r.Snapshot(ctx, to)
	}

	// Lock in a fixed order so two opposite merges cannot deadlock.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	unlockFirst := r.lock(first)
	defer unlockFirst()
	unlockSecond := r.lock(second)
	defer unlockSecond()

	var snap Snapshot
	err := r.doLocked(ctx, to, func(dst *Store) error {
		return r.doLocked(ctx, from, func(src *Store) error {
			moved := src.Lines()
			if len(moved) > 0 {
				for _, l := range moved {
					dst.AddToCart(ctx, l)
				}
				if err := dst.Save(ctx); err != nil {
					return fmt.Errorf("save cart %s: %w", to, err)
				}
				src.ClearCart(ctx)
			}
			snap = dst.Snapshot()
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Subscribe registers fn for every post-mutation snapshot of owner's cart.
func (r *Registry) Subscribe(owner string, fn Listener) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	if r.subs[owner] == nil {
		r.subs[owner] = make(map[int]Listener)
	}
	r.subs[owner][id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[owner], id)
		if len(r.subs[owner]) == 0 {
			delete(r.subs, owner)
		}
	}
}

func (r *Registry) doLocked(ctx context.Context, owner string, fn func(*Store) error) error {
	store, err := Load(ctx, r.BlobName(owner), r.storage)
	if err != nil {
		return fmt.Errorf("load cart %s: %w", owner, err)
	}

	cancel := store.Subscribe(func(snap Snapshot) {
		r.publish(owner, snap)
	})
	defer cancel()

	return fn(store)
}

func (r *Registry) publish(owner string, snap Snapshot) {
	r.mu.Lock()
	fns := make([]Listener, 0, len(r.subs[owner]))
	for _, fn := range r.subs[owner] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (r *Registry) lock(owner string) func() {
	r.mu.Lock()
	l, ok := r.locks[owner]
	if !ok {
		l = &ownerLock{}
		r.locks[owner] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.locks, owner)
		}
		r.mu.Unlock()
	}
}
