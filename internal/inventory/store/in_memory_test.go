package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/inventory/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSnapshot is an in-memory Destination and Source.
type mockSnapshot struct {
	products []inventory.Product
	error    error
}

func (m *mockSnapshot) WriteSnapshot(_ context.Context, products []inventory.Product) error {
	if m.error != nil {
		return m.error
	}
	m.products = products
	return nil
}

func (m *mockSnapshot) ReadSnapshot(_ context.Context) ([]inventory.Product, error) {
	return m.products, m.error
}

// sampleProducts returns twenty heterogeneous electronics.
func sampleProducts() []inventory.Product {
	names := []string{
		"Smartphone", "Laptop", "Headphones", "Monitor", "Keyboard",
		"Mouse", "Smartwatch", "Tablet", "Webcam", "Printer",
		"Speakers", "Router", "Hard Drive", "SSD", "Flash Drive",
		"Microphone", "Drone", "Camera", "TV", "VR Headset",
	}
	categories := []string{
		"Mobile", "Computers", "Audio", "Display", "Accessories",
		"Accessories", "Wearable", "Mobile", "Accessories", "Office",
		"Audio", "Networking", "Storage", "Storage", "Storage",
		"Audio", "Gadgets", "Photography", "Home Entertainment", "Gadgets",
	}
	quantities := []int{10, 5, 15, 7, 20, 18, 8, 6, 14, 9, 10, 12, 16, 11, 25, 4, 3, 5, 6, 2}
	prices := []float64{
		29999, 54999, 1999, 10999, 1499,
		999, 12999, 18999, 2599, 8999,
		3499, 1799, 4299, 3599, 799,
		4999, 49999, 15999, 39999, 69999.99,
	}
	products := make([]inventory.Product, len(names))
	for i := range names {
		products[i] = inventory.NewElectronic(i+1, names[i], categories[i], quantities[i], prices[i])
	}
	return products
}

func seededStore(t *testing.T, products ...inventory.Product) InventoryStore {
	t.Helper()
	s := NewInMemoryStore()
	for _, p := range products {
		s.Add(p)
	}
	return s
}

func Test_InMemory_Add(t *testing.T) {
	// given
	products := sampleProducts()
	s := NewInMemoryStore()
	// when
	for _, p := range products {
		s.Add(p)
	}
	// then
	assert.Equal(t, len(products), s.Len())
	assert.Equal(t, products, s.List())
}

func Test_InMemory_Remove(t *testing.T) {
	a := inventory.NewElectronic(1, "Laptop", "Computers", 5, 54999)
	b := inventory.NewElectronic(2, "Mouse", "Accessories", 18, 999)
	dup := inventory.NewElectronic(1, "Laptop Pro", "Computers", 2, 99999)

	testCases := []struct {
		name        string
		seed        []inventory.Product
		id          int
		removed     int
		remaining   []inventory.Product
		expectError error
	}{
		{
			name:      "Success - single match",
			seed:      []inventory.Product{a, b},
			id:        1,
			removed:   1,
			remaining: []inventory.Product{b},
		},
		{
			name:      "Success - every duplicate id removed",
			seed:      []inventory.Product{a, b, dup},
			id:        1,
			removed:   2,
			remaining: []inventory.Product{b},
		},
		{
			name:        "Error - id not present",
			seed:        []inventory.Product{a, b},
			id:          42,
			remaining:   []inventory.Product{a, b},
			expectError: inverrors.ErrProductNotFound,
		},
		{
			name:        "Error - empty store",
			id:          1,
			remaining:   []inventory.Product{},
			expectError: inverrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := seededStore(t, tc.seed...)
			// when
			removed, err := s.Remove(tc.id)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.removed, removed)
			assert.Equal(t, tc.remaining, s.List())
		})
	}
}

func Test_InMemory_RemoveEndToEnd(t *testing.T) {
	s := seededStore(t, inventory.NewElectronic(1, "Smartphone", "Mobile", 10, 29999))

	removed, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.List())

	removed, err = s.Remove(1)
	assert.ErrorIs(t, err, inverrors.ErrProductNotFound)
	assert.Zero(t, removed)
}

func Test_InMemory_Search(t *testing.T) {
	s := seededStore(t, sampleProducts()...)
	laptop := sampleProducts()[1]

	testCases := []struct {
		name     string
		query    string
		found    bool
		expected []inventory.Product
	}{
		{name: "exact case", query: "Laptop", found: true, expected: []inventory.Product{laptop}},
		{name: "lower case", query: "laptop", found: true, expected: []inventory.Product{laptop}},
		{name: "upper case", query: "LAPTOP", found: true, expected: []inventory.Product{laptop}},
		{name: "no match", query: "Toaster", found: false, expected: []inventory.Product{}},
		{name: "prefix is not a match", query: "Lap", found: false, expected: []inventory.Product{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			result := s.Search(tc.query)
			// then
			assert.Equal(t, tc.query, result.Query)
			assert.Equal(t, tc.found, result.Found)
			assert.Equal(t, tc.expected, result.Products)
		})
	}
}

func Test_InMemory_SearchReturnsAllMatches(t *testing.T) {
	first := inventory.NewElectronic(1, "Camera", "Photography", 5, 15999)
	second := inventory.NewElectronic(7, "camera", "Security", 3, 4999)
	s := seededStore(t, first, inventory.NewElectronic(2, "TV", "Home", 1, 39999), second)

	result := s.Search("CAMERA")

	assert.True(t, result.Found)
	assert.Equal(t, []inventory.Product{first, second}, result.Products)
}

func Test_InMemory_SearchAsync(t *testing.T) {
	s := seededStore(t, sampleProducts()...)

	t.Run("yields one result and closes", func(t *testing.T) {
		ch := s.SearchAsync(context.Background(), "drone")

		result, ok := <-ch
		require.True(t, ok)
		assert.True(t, result.Found)
		assert.Equal(t, "Drone", result.Products[0].Name)

		_, ok = <-ch
		assert.False(t, ok, "channel should be closed after the result")
	})

	t.Run("cancelled context closes without a result", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, ok := <-s.SearchAsync(ctx, "drone")
		assert.False(t, ok)
	})
}

func Test_InMemory_AveragePrice(t *testing.T) {
	assert.Zero(t, NewInMemoryStore().AveragePrice())

	s := seededStore(t,
		inventory.NewElectronic(1, "A", "x", 1, 100),
		inventory.NewElectronic(2, "B", "x", 1, 200),
		inventory.NewElectronic(3, "C", "x", 1, 300),
	)
	assert.InDelta(t, 200.0, s.AveragePrice(), 1e-9)
}

func Test_InMemory_ListReturnsCopy(t *testing.T) {
	s := seededStore(t, inventory.NewElectronic(1, "TV", "Home", 1, 1))

	list := s.List()
	list[0].Name = "changed"

	assert.Equal(t, "TV", s.List()[0].Name)
}

func Test_InMemory_SaveLoad(t *testing.T) {
	t.Run("round trip through a snapshot", func(t *testing.T) {
		// given
		products := sampleProducts()
		s := seededStore(t, products...)
		snap := &mockSnapshot{}
		// when
		require.NoError(t, s.Save(context.Background(), snap))
		restored := NewInMemoryStore()
		require.NoError(t, restored.Load(context.Background(), snap))
		// then
		assert.Equal(t, products, restored.List())
	})

	t.Run("save failure is reported", func(t *testing.T) {
		s := seededStore(t, sampleProducts()...)
		err := s.Save(context.Background(), &mockSnapshot{error: inverrors.ErrStorage})
		assert.ErrorIs(t, err, inverrors.ErrStorage)
	})

	t.Run("load failure leaves store unchanged", func(t *testing.T) {
		for _, loadErr := range []error{inverrors.ErrStorage, inverrors.ErrSnapshotFormat} {
			products := sampleProducts()
			s := seededStore(t, products...)

			err := s.Load(context.Background(), &mockSnapshot{error: loadErr})

			assert.ErrorIs(t, err, loadErr)
			assert.Equal(t, products, s.List())
		}
	})

	t.Run("load replaces existing contents", func(t *testing.T) {
		s := seededStore(t, sampleProducts()...)
		replacement := []inventory.Product{inventory.NewElectronic(99, "Projector", "Display", 1, 5000)}

		require.NoError(t, s.Load(context.Background(), &mockSnapshot{products: replacement}))

		assert.Equal(t, replacement, s.List())
	})
}

func Test_InMemory_FileRoundTrip(t *testing.T) {
	// given
	products := sampleProducts()
	s := seededStore(t, products...)
	file := snapshot.NewFile(filepath.Join(t.TempDir(), "inventory.snap"))
	// when
	require.NoError(t, s.Save(context.Background(), file))
	restored := NewInMemoryStore()
	require.NoError(t, restored.Load(context.Background(), file))
	// then
	assert.Equal(t, products, restored.List())
}

func Test_InMemory_ConcurrentAccess(t *testing.T) {
	s := NewInMemoryStore()
	snap := &mockSnapshot{products: sampleProducts()}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(3)
		go func() {
			defer wg.Done()
			s.Add(inventory.NewElectronic(1000+i, "Cable", "Accessories", 1, 9))
		}()
		go func() {
			defer wg.Done()
			<-s.SearchAsync(context.Background(), "cable")
		}()
		go func() {
			defer wg.Done()
			if err := s.Load(context.Background(), snap); err != nil && !errors.Is(err, inverrors.ErrStorage) {
				t.Errorf("unexpected load error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, s.Len(), len(snap.products))
}
