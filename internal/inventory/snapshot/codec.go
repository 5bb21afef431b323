// Package snapshot encodes whole-inventory snapshots and persists them to files or PostgreSQL.
package snapshot

import (
	"bytes"
	"fmt"
	"math"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Version is the snapshot format version written by Encode.
const Version = 1

var magic = []byte("INVS")

// snapshot fields
const (
	fieldVersion protowire.Number = 1
	fieldProduct protowire.Number = 2
	// fieldCount trails the records so a truncated snapshot never decodes.
	fieldCount protowire.Number = 3
)

// product record fields
const (
	fieldID       protowire.Number = 1
	fieldName     protowire.Number = 2
	fieldCategory protowire.Number = 3
	fieldQuantity protowire.Number = 4
	fieldPrice    protowire.Number = 5
	fieldKind     protowire.Number = 6
)

// Encode serializes products into the versioned snapshot format.
func Encode(products []inventory.Product) []byte {
	b := make([]byte, 0, len(magic)+8+len(products)*48)
	b = append(b, magic...)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	for _, p := range products {
		b = protowire.AppendTag(b, fieldProduct, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeProduct(p))
	}
	b = protowire.AppendTag(b, fieldCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(len(products)))
	return b
}

func encodeProduct(p inventory.Product) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldID, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.ID)))
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = protowire.AppendTag(b, fieldCategory, protowire.BytesType)
	b = protowire.AppendString(b, p.Category)
	b = protowire.AppendTag(b, fieldQuantity, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(p.Quantity)))
	b = protowire.AppendTag(b, fieldPrice, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(p.Price))
	b = protowire.AppendTag(b, fieldKind, protowire.BytesType)
	b = protowire.AppendString(b, string(p.Kind))
	return b
}

// Decode parses a snapshot produced by Encode.
// Returns ErrSnapshotFormat if data is not a complete, supported snapshot.
func Decode(data []byte) ([]inventory.Product, error) {
	if !bytes.HasPrefix(data, magic) {
		return nil, fmt.Errorf("%w: missing snapshot header", inverrors.ErrSnapshotFormat)
	}
	b := data[len(magic):]

	products := make([]inventory.Product, 0)
	var version, count uint64
	hasCount := false
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, formatError(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, formatError(protowire.ParseError(n))
			}
			version = v
			b = b[n:]
		case num == fieldCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, formatError(protowire.ParseError(n))
			}
			count, hasCount = v, true
			b = b[n:]
		case num == fieldProduct && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, formatError(protowire.ParseError(n))
			}
			p, err := decodeProduct(raw)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, formatError(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if version == 0 {
		return nil, fmt.Errorf("%w: missing format version", inverrors.ErrSnapshotFormat)
	}
	if version > Version {
		return nil, fmt.Errorf("%w: unsupported format version %d", inverrors.ErrSnapshotFormat, version)
	}
	if !hasCount || count != uint64(len(products)) {
		return nil, fmt.Errorf("%w: snapshot is incomplete", inverrors.ErrSnapshotFormat)
	}
	return products, nil
}

func decodeProduct(b []byte) (inventory.Product, error) {
	var p inventory.Product
	var kind string
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, formatError(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case (num == fieldID || num == fieldQuantity) && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return p, formatError(protowire.ParseError(n))
			}
			if num == fieldID {
				p.ID = int(protowire.DecodeZigZag(v))
			} else {
				p.Quantity = int(protowire.DecodeZigZag(v))
			}
			b = b[n:]
		case (num == fieldName || num == fieldCategory || num == fieldKind) && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return p, formatError(protowire.ParseError(n))
			}
			switch num {
			case fieldName:
				p.Name = s
			case fieldCategory:
				p.Category = s
			default:
				kind = s
			}
			b = b[n:]
		case num == fieldPrice && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return p, formatError(protowire.ParseError(n))
			}
			p.Price = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return p, formatError(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	k, err := inventory.ParseKind(kind)
	if err != nil {
		return p, fmt.Errorf("%w: %v", inverrors.ErrSnapshotFormat, err)
	}
	p.Kind = k
	return p, nil
}

func formatError(err error) error {
	return fmt.Errorf("%w: %v", inverrors.ErrSnapshotFormat, err)
}
