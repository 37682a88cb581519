package world

import "errors"

var (
	ErrUnknownBlock   = errors.New("unknown block kind")
	ErrDuplicateBlock = errors.New("block kind already registered")
	ErrInvalidShape   = errors.New("invalid block shape")
	ErrInvalidSlip    = errors.New("slipperiness out of range")
	ErrPaletteFull    = errors.New("block palette is full")
)
