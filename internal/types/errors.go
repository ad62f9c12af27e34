package types

import (
	"errors"

	"github.com/farcloser/primordium/fault"
)

var (
	// ErrDecode is returned when an audio source cannot be decoded by any available path.
	ErrDecode = errors.New("audio decode failed")
	// ErrConfiguration is returned for unknown engines, unknown steps, or invalid options.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrStageFailure wraps any unexpected failure inside a pipeline stage.
	ErrStageFailure = errors.New("pipeline stage failed")
	// ErrTimeout is returned when an analysis exceeds its time budget.
	ErrTimeout = fault.ErrTimeout
)
