package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

// inMemory implements InventoryStore using a slice.
type inMemory struct {
	mu       sync.RWMutex
	products []inventory.Product

	// persistMu serializes Save and Load.
	persistMu sync.Mutex
}

// NewInMemoryStore creates a new, empty InventoryStore.
func NewInMemoryStore() InventoryStore {
	return &inMemory{
		products: make([]inventory.Product, 0),
	}
}

// Add appends a product to the end of the sequence.
func (s *inMemory) Add(product inventory.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
}

// Remove deletes every product with the given id.
func (s *inMemory) Remove(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]inventory.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(s.products) - len(kept)
	if removed == 0 {
		return 0, inverrors.ErrProductNotFound
	}
	s.products = kept
	return removed, nil
}

// Search scans the whole sequence for names equal to name, ignoring case.
func (s *inMemory) Search(name string) SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := SearchResult{Query: name, Products: []inventory.Product{}}
	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			result.Products = append(result.Products, p)
			result.Found = true
		}
	}
	return result
}

// SearchAsync runs Search on its own goroutine.
func (s *inMemory) SearchAsync(ctx context.Context, name string) <-chan SearchResult {
	// buffered so the goroutine exits even if nobody receives
	out := make(chan SearchResult, 1)
	go func() {
		defer close(out)
		if ctx.Err() != nil {
			return
		}
		out <- s.Search(name)
	}()
	return out
}

// List returns a copy of the sequence in insertion order.
func (s *inMemory) List() []inventory.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]inventory.Product, len(s.products))
	copy(list, s.products)
	return list
}

// Len returns the number of products.
func (s *inMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.products)
}

// AveragePrice returns the mean price, or 0 for an empty store.
func (s *inMemory) AveragePrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.products) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.products {
		sum += p.Price
	}
	return sum / float64(len(s.products))
}

// Save writes a consistent copy of the sequence to dst.
func (s *inMemory) Save(ctx context.Context, dst Destination) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if err := dst.WriteSnapshot(ctx, s.List()); err != nil {
		return fmt.Errorf("failed to save inventory: %w", err)
	}
	return nil
}

// Load decodes the whole snapshot from src before swapping it in.
func (s *inMemory) Load(ctx context.Context, src Source) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	loaded, err := src.ReadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	products := make([]inventory.Product, len(loaded))
	copy(products, loaded)

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return nil
}
