package app

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/abgdnv/inventory/internal/inventory/service"
)

// Persistence restores the inventory on startup and saves it on shutdown.
// A snapshot that exists but could not be loaded is never overwritten.
type Persistence struct {
	service        service.InventoryService
	logger         *slog.Logger
	loadOnStart    bool
	saveOnShutdown bool
	keepSnapshot   bool
}

func NewPersistence(deps *Dependencies, loadOnStart, saveOnShutdown bool) *Persistence {
	return &Persistence{
		service:        deps.InventoryService,
		logger:         deps.Logger.With("component", "persistence"),
		loadOnStart:    loadOnStart,
		saveOnShutdown: saveOnShutdown,
	}
}

// Restore loads the saved inventory when enabled. A failed load is logged and
// the service starts empty; a missing snapshot file only means a first start.
func (p *Persistence) Restore(ctx context.Context) {
	if !p.loadOnStart {
		return
	}
	err := p.service.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		p.logger.InfoContext(ctx, "No saved inventory, starting empty")
	default:
		p.keepSnapshot = true
		p.logger.WarnContext(ctx, "Starting with an empty inventory, saved inventory will not be overwritten", "error", err)
	}
}

// Shutdown saves the inventory when enabled and the startup load did not fail.
func (p *Persistence) Shutdown(ctx context.Context) error {
	if !p.saveOnShutdown {
		return nil
	}
	if p.keepSnapshot {
		p.logger.WarnContext(ctx, "Skipping save on shutdown, saved inventory failed to load at startup")
		return nil
	}
	return p.service.Save(ctx)
}
