package space

import "errors"

var (
	// ErrNotReady is returned by queries issued before Fill has completed.
	ErrNotReady = errors.New("space: not ready")

	// ErrDimensionMismatch is returned when a tension vector's length doesn't match the space.
	ErrDimensionMismatch = errors.New("space: dimension mismatch")

	// ErrNonFinite is returned when a tension vector holds a NaN or infinite value.
	ErrNonFinite = errors.New("space: non-finite tension value")

	// ErrNegativeSpread is returned when a random query is given a negative standard deviation.
	ErrNegativeSpread = errors.New("space: negative distance spread")
)
