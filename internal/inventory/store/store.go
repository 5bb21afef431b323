// Package store provides the ordered in-memory inventory and its operations.
package store

import (
	"context"

	"github.com/abgdnv/inventory/internal/inventory"
)

// InventoryStore is an ordered collection of products.
// Insertion order is preserved and duplicate ids are permitted.
type InventoryStore interface {
	// Add appends a product to the end of the sequence.
	Add(product inventory.Product)

	// Remove deletes every product with the given id and returns how many were removed.
	// Returns ErrProductNotFound if no product has that id; the sequence is then unchanged.
	Remove(id int) (int, error)

	// Search returns all products whose name equals name, ignoring case.
	Search(name string) SearchResult

	// SearchAsync runs Search on its own goroutine. The returned channel yields
	// exactly one result and is then closed.
	SearchAsync(ctx context.Context, name string) <-chan SearchResult

	// List returns a copy of the sequence in insertion order.
	List() []inventory.Product

	// Len returns the number of products in the sequence.
	Len() int

	// AveragePrice returns the mean price over all products, or 0 when empty.
	AveragePrice() float64

	// Save writes the whole sequence to dst.
	Save(ctx context.Context, dst Destination) error

	// Load replaces the sequence with the snapshot read from src.
	// On failure the current sequence is left unchanged.
	Load(ctx context.Context, src Source) error
}

// Destination receives a whole-collection snapshot.
type Destination interface {
	WriteSnapshot(ctx context.Context, products []inventory.Product) error
}

// Source produces a whole-collection snapshot.
type Source interface {
	ReadSnapshot(ctx context.Context) ([]inventory.Product, error)
}

// SearchResult is the outcome of a name search.
// Found is false when nothing matched.
type SearchResult struct {
	Query    string              `json:"query"`
	Found    bool                `json:"found"`
	Products []inventory.Product `json:"products"`
}
