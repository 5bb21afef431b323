// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

// ErrStorage reports that a snapshot destination or source could not be accessed.
var ErrStorage = errors.New("snapshot storage failure")

// ErrSnapshotFormat reports that a snapshot does not decode to a valid product sequence.
var ErrSnapshotFormat = errors.New("invalid snapshot format")

var ErrInvalidInput = errors.New("invalid product input")
