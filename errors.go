package go_vollib

import "errors"

var (
	// ErrInvalidInput reports malformed parameters: non-positive strike or
	// spot, non-positive volatility, negative time to maturity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPriceOutOfBounds reports an observed price outside the no-arbitrage
	// bounds; no volatility reproduces it.
	ErrPriceOutOfBounds = errors.New("price out of no-arbitrage bounds")

	// ErrNoConvergence reports that the iteration budget was spent without
	// reproducing the observed price.
	ErrNoConvergence = errors.New("implied volatility did not converge")
)
