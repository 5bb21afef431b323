// Package inventory defines the product record held by the inventory store.
package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
)

// Kind tags the variant of a product.
type Kind string

const KindElectronic Kind = "Electronic"

// Valid reports whether k is a known product kind.
func (k Kind) Valid() bool {
	return k == KindElectronic
}

// ParseKind maps a stored or submitted kind tag to a Kind. An empty tag means Electronic.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindElectronic, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown product kind %q", s)
	}
	return k, nil
}

// Product is one inventory record. Values are never modified after construction.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Kind     Kind    `json:"kind"`
}

// NewElectronic constructs an Electronic product.
func NewElectronic(id int, name, category string, quantity int, price float64) Product {
	return Product{
		ID:       id,
		Name:     name,
		Category: category,
		Quantity: quantity,
		Price:    price,
		Kind:     KindElectronic,
	}
}

// ProductInput is the typed form a collaborator submits to create a product.
type ProductInput struct {
	ID       int     `json:"id"`
	Name     string  `json:"name" validate:"required,max=100"`
	Category string  `json:"category" validate:"max=100"`
	Quantity int     `json:"quantity" validate:"min=0"`
	Price    float64 `json:"price" validate:"min=0"`
	Kind     string  `json:"kind" validate:"omitempty,oneof=Electronic"`
}

// ToProduct converts the input into a Product.
// Returns ErrInvalidInput if the kind tag is unknown.
func (in ProductInput) ToProduct() (Product, error) {
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return Product{}, fmt.Errorf("%w: %v", inverrors.ErrInvalidInput, err)
	}
	return Product{
		ID:       in.ID,
		Name:     in.Name,
		Category: in.Category,
		Quantity: in.Quantity,
		Price:    in.Price,
		Kind:     kind,
	}, nil
}

// RawProduct holds product fields exactly as a user typed them.
type RawProduct struct {
	ID       string
	Name     string
	Category string
	Quantity string
	Price    string
}

// ParseProduct converts raw text fields into a ProductInput.
// Returns ErrInvalidInput when id, quantity or price are not numeric, or the price is not finite.
func ParseProduct(raw RawProduct) (ProductInput, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw.ID))
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: id %q is not an integer", inverrors.ErrInvalidInput, raw.ID)
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(raw.Quantity))
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: quantity %q is not an integer", inverrors.ErrInvalidInput, raw.Quantity)
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(raw.Price), 64)
	if err != nil {
		return ProductInput{}, fmt.Errorf("%w: price %q is not a number", inverrors.ErrInvalidInput, raw.Price)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return ProductInput{}, fmt.Errorf("%w: price %q is not a finite number", inverrors.ErrInvalidInput, raw.Price)
	}
	return ProductInput{
		ID:       id,
		Name:     raw.Name,
		Category: raw.Category,
		Quantity: quantity,
		Price:    price,
		Kind:     string(KindElectronic),
	}, nil
}
