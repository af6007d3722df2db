package h264

import (
	"github.com/pkg/errors"

	"github.com/deepteams/h264/internal/grid"
	"github.com/deepteams/h264/internal/nal"
)

// Errors returned by the encoder and the stream inspector.
var (
	// ErrDimension reports a picture size that cannot be coded, or a frame
	// whose size differs from the encoder's.
	ErrDimension = grid.ErrDimension

	// ErrInvalidOptions reports an Options value out of range.
	ErrInvalidOptions = errors.New("h264: invalid options")

	// ErrClosed is returned by an Encoder after Close.
	ErrClosed = errors.New("h264: encoder closed")

	// ErrTruncated reports a stream that ends inside a syntax structure.
	ErrTruncated = nal.ErrTruncated

	// ErrNoParameterSets is returned by Info when a stream has no sequence
	// or picture parameter set.
	ErrNoParameterSets = errors.New("h264: no parameter sets found")
)
