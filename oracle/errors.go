package oracle

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownFile is returned for a path with no open document.
	ErrUnknownFile = errors.New("unknown file")

	// ErrUnknownType is returned when a type name in a model cannot be
	// resolved.
	ErrUnknownType = errors.New("unknown type")

	// ErrInvalidModel marks model documents that fail validation.
	ErrInvalidModel = errors.New("invalid type model")
)
