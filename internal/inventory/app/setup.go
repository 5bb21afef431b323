// Package app contains the application setup for the inventory service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/handler"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/snapshot"
	"github.com/abgdnv/inventory/internal/inventory/store"
	"github.com/abgdnv/inventory/internal/platform/web"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	InventoryService service.InventoryService
	Logger           *slog.Logger
}

// NewSnapshotter selects the snapshot backend named in cfg.
// dbPool is only used by the postgres backend and may be nil otherwise.
func NewSnapshotter(cfg *config.Config, dbPool *pgxpool.Pool) (service.Snapshotter, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendFile:
		return snapshot.NewFile(cfg.Snapshot.Path), nil
	case config.BackendPostgres:
		if dbPool == nil {
			return nil, fmt.Errorf("postgres snapshot backend requires a database pool")
		}
		return snapshot.NewPgRepository(dbPool), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend: %q", cfg.Snapshot.Backend)
	}
}

func SetupDependencies(snapshotter service.Snapshotter, logger *slog.Logger) *Dependencies {
	iService := service.NewService(store.NewInMemoryStore(), snapshotter, logger)

	return &Dependencies{
		InventoryService: iService,
		Logger:           logger,
	}
}

// SetupHttpHandler initializes the routes and middleware for the inventory service.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))

	handler.NewHandler(deps.InventoryService, deps.Logger).RegisterRoutes(mux)

	return mux
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:           mux,
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.HTTPServer.MaxHeaderBytes,
	}
	return server
}
