package snapshot

import (
	"context"
	"embed"
	"fmt"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the schema used by PgRepository.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the SQL files.
const MigrationsDir = "migrations"

const tableName = "inventory_products"

var columns = []string{"position", "id", "name", "category", "quantity", "price", "kind"}

// PgRepository persists snapshots to PostgreSQL, one row per product.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a PgRepository using a PostgreSQL connection pool.
func NewPgRepository(dbp *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: dbp}
}

// WriteSnapshot replaces every stored row with products in a single transaction.
func (r *PgRepository) WriteSnapshot(ctx context.Context, products []inventory.Product) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", inverrors.ErrStorage, err)
	}
	// no-op after a successful commit
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+tableName); err != nil {
		return fmt.Errorf("%w: clear snapshot: %w", inverrors.ErrStorage, err)
	}
	rows := pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
		p := products[i]
		return []any{int32(i), int64(p.ID), p.Name, p.Category, int64(p.Quantity), p.Price, string(p.Kind)}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tableName}, columns, rows); err != nil {
		return fmt.Errorf("%w: copy products: %w", inverrors.ErrStorage, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit snapshot: %w", inverrors.ErrStorage, err)
	}
	return nil
}

// ReadSnapshot returns the stored products in their saved order.
func (r *PgRepository) ReadSnapshot(ctx context.Context) ([]inventory.Product, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, name, category, quantity, price, kind FROM "+tableName+" ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("%w: query snapshot: %w", inverrors.ErrStorage, err)
	}
	defer rows.Close()

	products := make([]inventory.Product, 0)
	for rows.Next() {
		var (
			id, quantity int64
			name         string
			category     string
			price        float64
			kind         string
		)
		if err := rows.Scan(&id, &name, &category, &quantity, &price, &kind); err != nil {
			return nil, fmt.Errorf("%w: scan product: %w", inverrors.ErrStorage, err)
		}
		k, err := inventory.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", inverrors.ErrSnapshotFormat, err)
		}
		products = append(products, inventory.Product{
			ID:       int(id),
			Name:     name,
			Category: category,
			Quantity: int(quantity),
			Price:    price,
			Kind:     k,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read snapshot rows: %w", inverrors.ErrStorage, err)
	}
	return products, nil
}
