// Package service provides the inventory operations offered to collaborators.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/inventory/store"
)

// InventoryService defines the operations a collaborator may call.
// It never exposes the underlying collection.
type InventoryService interface {
	// Add constructs a product from input and appends it to the inventory.
	// Returns ErrInvalidInput if the input does not describe a product.
	Add(ctx context.Context, input inventory.ProductInput) (*inventory.Product, error)

	// Remove deletes every product with the given id and returns how many were removed.
	// Returns ErrProductNotFound if none matched.
	Remove(ctx context.Context, id int) (int, error)

	// Search finds products by name, ignoring case.
	Search(ctx context.Context, name string) (*store.SearchResult, error)

	// List returns every product in insertion order.
	List(ctx context.Context) []inventory.Product

	// Stats returns the product count and average price.
	Stats(ctx context.Context) Stats

	// Save writes the inventory to the configured snapshot backend.
	// Returns ErrStorage if the backend cannot be written.
	Save(ctx context.Context) error

	// Load replaces the inventory with the configured snapshot.
	// Returns ErrStorage or ErrSnapshotFormat on failure, leaving the inventory unchanged.
	Load(ctx context.Context) error
}

// Snapshotter is a snapshot backend that can be both written and read.
type Snapshotter interface {
	store.Destination
	store.Source
}

// Stats summarizes the inventory.
type Stats struct {
	Count        int     `json:"count"`
	AveragePrice float64 `json:"average_price"`
}

type service struct {
	store    store.InventoryStore
	snapshot Snapshotter
	logger   *slog.Logger
}

// NewService creates a new InventoryService over the given store and snapshot backend.
func NewService(s store.InventoryStore, snapshot Snapshotter, logger *slog.Logger) InventoryService {
	return &service{
		store:    s,
		snapshot: snapshot,
		logger:   logger.With("component", "service"),
	}
}

func (s *service) Add(ctx context.Context, input inventory.ProductInput) (*inventory.Product, error) {
	product, err := input.ToProduct()
	if err != nil {
		return nil, err
	}
	s.store.Add(product)
	s.logger.InfoContext(ctx, "Product added", "ID", product.ID, "Name", product.Name)
	return &product, nil
}

func (s *service) Remove(ctx context.Context, id int) (int, error) {
	removed, err := s.store.Remove(id)
	if err != nil {
		return 0, fmt.Errorf("failed to remove product with ID %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Products removed", "ID", id, "count", removed)
	return removed, nil
}

// Search awaits the asynchronous scan, giving up when ctx is done.
func (s *service) Search(ctx context.Context, name string) (*store.SearchResult, error) {
	select {
	case result, ok := <-s.store.SearchAsync(ctx, name):
		if !ok {
			return nil, ctx.Err()
		}
		s.logger.DebugContext(ctx, "Search completed", "query", name, "matches", len(result.Products))
		return &result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *service) List(_ context.Context) []inventory.Product {
	return s.store.List()
}

func (s *service) Stats(_ context.Context) Stats {
	return Stats{
		Count:        s.store.Len(),
		AveragePrice: s.store.AveragePrice(),
	}
}

func (s *service) Save(ctx context.Context) error {
	if err := s.store.Save(ctx, s.snapshot); err != nil {
		s.logger.ErrorContext(ctx, "Error saving inventory", "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Inventory saved", "count", s.store.Len())
	return nil
}

func (s *service) Load(ctx context.Context) error {
	if err := s.store.Load(ctx, s.snapshot); err != nil {
		s.logger.ErrorContext(ctx, "Error loading inventory", "error", err)
		return err
	}
	s.logger.InfoContext(ctx, "Inventory loaded", "count", s.store.Len())
	return nil
}
