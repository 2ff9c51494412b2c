package domain

import "errors"

var (
	// ErrEmptyInput means no passages survived filtering.
	ErrEmptyInput = errors.New("no passages to index")
	// ErrIndexNotReady is returned when a query is projected before any build.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrDimensionMismatch signals vectors from different spaces were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
