package options

import "errors"

// ErrInvalidInput marks structurally invalid inputs (non-positive strike or
// spot, unknown option type). These are rejected before any computation and
// never silently coerced.
var ErrInvalidInput = errors.New("invalid input")

// ErrInsufficientData marks series too short for an estimator. Callers of
// the fractal path receive a neutral profile instead of this error; it only
// surfaces where no neutral fallback exists (e.g. an empty chain).
var ErrInsufficientData = errors.New("insufficient data")
