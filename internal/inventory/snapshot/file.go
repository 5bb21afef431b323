package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

// File persists snapshots to a single file on disk.
type File struct {
	path string
}

// NewFile creates a File backend for the given path.
func NewFile(path string) *File {
	return &File{path: path}
}

// WriteSnapshot replaces the file with an encoding of products.
// The new content is written to a temporary file and renamed into place,
// so readers see either the previous snapshot or the new one.
func (f *File) WriteSnapshot(ctx context.Context, products []inventory.Product) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: write %s: %w", inverrors.ErrStorage, f.path, err)
	}
	data := Encode(products)

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", inverrors.ErrStorage, err)
	}
	tmpName := tmp.Name()
	// no-op once the rename has succeeded
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", inverrors.ErrStorage, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", inverrors.ErrStorage, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", inverrors.ErrStorage, tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", inverrors.ErrStorage, f.path, err)
	}
	return nil
}

// ReadSnapshot reads and decodes the whole file.
func (f *File) ReadSnapshot(ctx context.Context) ([]inventory.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", inverrors.ErrStorage, f.path, err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", inverrors.ErrStorage, f.path, err)
	}
	products, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return products, nil
}
