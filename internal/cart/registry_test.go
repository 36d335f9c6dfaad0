package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyedFailStorage fails reads or writes of a single blob.
type keyedFailStorage struct {
	*MemoryStorage
	failGet string
	failSet string
}

func (k *keyedFailStorage) Get(ctx context.Context, name string) (string, bool, error) {
	if name == k.failGet {
		return "", false, errors.New("redis timeout")
	}
	return k.MemoryStorage.Get(ctx, name)
}

func (k *keyedFailStorage) Set(ctx context.Context, name, value string) error {
	if name == k.failSet {
		return errors.New("redis timeout")
	}
	return k.MemoryStorage.Set(ctx, name, value)
}

func TestRegistry_BlobName(t *testing.T) {
	assert.Equal(t, "shopping-cart:user:7", NewRegistry(nil, "").BlobName("user:7"))
	assert.Equal(t, "c:guest:x", NewRegistry(nil, "c").BlobName("guest:x"))
}

func TestRegistry_DoPersistsBetweenCalls(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage(), "")

	require.NoError(t, r.Do(ctx, "user:1", func(s *Store) error {
		s.AddToCart(ctx, redMedium(2))
		return nil
	}))

	snap, err := r.Snapshot(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ItemCount)

	other, err := r.Snapshot(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestRegistry_DoPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := NewRegistry(NewMemoryStorage(), "").Do(context.Background(), "user:1", func(*Store) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_ConcurrentAddsForSameOwner(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage(), "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Do(ctx, "guest:abc", func(s *Store) error {
				s.AddToCart(ctx, redMedium(1))
				return nil
			})
		}()
	}
	wg.Wait()

	snap, err := r.Snapshot(ctx, "guest:abc")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 50, snap.Lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(500).Equal(snap.Subtotal))
}

func TestRegistry_Subscribe(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage(), "")

	var mu sync.Mutex
	var counts []int
	cancel := r.Subscribe("user:1", func(snap Snapshot) {
		mu.Lock()
		counts = append(counts, snap.ItemCount)
		mu.Unlock()
	})

	_ = r.Do(ctx, "user:1", func(s *Store) error {
		s.AddToCart(ctx, redMedium(1))
		s.AddToCart(ctx, redMedium(2))
		return nil
	})
	_ = r.Do(ctx, "user:2", func(s *Store) error {
		s.AddToCart(ctx, redMedium(1))
		return nil
	})
	cancel()
	_ = r.Do(ctx, "user:1", func(s *Store) error {
		s.ClearCart(ctx)
		return nil
	})

	assert.Equal(t, []int{1, 3}, counts)
}

func TestRegistry_Merge(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage(), "")

	_ = r.Do(ctx, "guest:g", func(s *Store) error {
		s.AddToCart(ctx, redMedium(2))
		s.AddToCart(ctx, Line{ProductID: "p9", UnitPrice: 1, Quantity: 1, Color: "Green", Size: "S"})
		return nil
	})
	_ = r.Do(ctx, "user:1", func(s *Store) error {
		s.AddToCart(ctx, redMedium(1))
		return nil
	})

	snap, err := r.Merge(ctx, "guest:g", "user:1")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 4, snap.ItemCount)
	assert.True(t, decimal.NewFromInt(31).Equal(snap.Subtotal))

	guest, err := r.Snapshot(ctx, "guest:g")
	require.NoError(t, err)
	assert.True(t, guest.IsEmpty())
}

func TestRegistry_MergeIntoSelf(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(NewMemoryStorage(), "")
	_ = r.Do(ctx, "user:1", func(s *Store) error {
		s.AddToCart(ctx, redMedium(2))
		return nil
	})

	snap, err := r.Merge(ctx, "user:1", "user:1")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.ItemCount)
}

func TestRegistry_MergeKeepsGuestCartWhenTargetFails(t *testing.T) {
	tests := []struct {
		name    string
		failGet bool
		failSet bool
	}{
		{"target unreadable", true, false},
		{"target unwritable", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage := &keyedFailStorage{MemoryStorage: NewMemoryStorage()}
			r := NewRegistry(storage, "")

			require.NoError(t, r.Do(ctx, "guest:g", func(s *Store) error {
				s.AddToCart(ctx, redMedium(2))
				return nil
			}))

			if tt.failGet {
				storage.failGet = r.BlobName("user:1")
			}
			if tt.failSet {
				storage.failSet = r.BlobName("user:1")
			}

			_, err := r.Merge(ctx, "guest:g", "user:1")
			assert.Error(t, err)

			storage.failGet, storage.failSet = "", ""
			guest, err := r.Snapshot(ctx, "guest:g")
			require.NoError(t, err)
			assert.Equal(t, 2, guest.ItemCount)

			user, err := r.Snapshot(ctx, "user:1")
			require.NoError(t, err)
			assert.True(t, user.IsEmpty())
		})
	}
}
