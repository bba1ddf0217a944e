package go_vollib

import (
	"fmt"
	"math"

	"github.com/golang/glog"
)

const (
	// MaxIterations caps the Newton and bisection steps of ImpliedVol.
	MaxIterations = 100
	// Tolerance is the accepted price error relative to the larger of the
	// time value and vega·σ, which bounds the relative volatility error.
	Tolerance = 1e-9
	// MaxVolatility is the upper end of the bisection bracket.
	MaxVolatility = 100.0
)

// ImpliedVol inverts the closed-form price with Newton-Raphson steps from a
// Corrado-Miller seed. Steps that leave the current bracket fall back to
// bisection, so the search always converges on an attainable price.
// It stops once the price is matched within Tolerance of the time value or
// of vega·σ, whichever is larger, so tiny far out-of-the-money prices are
// held to the same relative accuracy as liquid ones.
//
// RationalImpliedVol is faster and more accurate. ImpliedVol remains as an
// independent check and as the fallback when the rational solver reports
// ErrNoConvergence.
func ImpliedVol(observedPrice float64, option *VanillaOption, market *MarketData) (float64, error) {
	if err := validateImpliedVolInputs(observedPrice, option, market); err != nil {
		return 0, err
	}
	if atIntrinsic, err := checkPriceBounds(observedPrice, option, market); err != nil || atIntrinsic {
		return 0, err
	}
	timeValue := observedPrice - option.DiscountedIntrinsic(market)

	lowVol := 0.0
	highVol := MaxVolatility
	sigma := corradoMillerSeed(observedPrice, option, market)
	for i := 0; i < MaxIterations; i++ {
		bs, err := newBlackScholes(option, market, sigma)
		if err != nil {
			return 0, err
		}
		vega := bs.rawVega()
		diff := bs.price() - observedPrice
		if math.Abs(diff) <= Tolerance*math.Max(timeValue, vega*sigma) {
			return sigma, nil
		}
		if diff < 0 {
			lowVol = sigma
		} else {
			highVol = sigma
		}
		if highVol-lowVol <= epsilon*sigma {
			break
		}

		// sigma' = sigma - (price(sigma) - observed) / vega
		next := sigma - diff/vega
		if !(next > lowVol && next < highVol) {
			next = (lowVol + highVol) / 2.0
		}
		sigma = next
	}

	if glog.V(1) {
		glog.Infof("implied vol: no convergence for %v K=%v T=%v price=%v, bracket [%v, %v]",
			option.Type, option.Strike, option.TimeToMaturity, observedPrice, lowVol, highVol)
	}
	return 0, fmt.Errorf("%w after %d iterations", ErrNoConvergence, MaxIterations)
}

// epsilon is the spacing of float64 values just above 1.
var epsilon = math.Nextafter(1, 2) - 1

// corradoMillerSeed approximates the implied volatility with the
// Corrado-Miller (1996) quadratic formula. Puts are converted to calls by
// parity. The result is clamped into a range Newton starts well from.
func corradoMillerSeed(observedPrice float64, option *VanillaOption, market *MarketData) float64 {
	spot := market.Spot * market.DividendDiscountFactor(option)
	strike := option.Strike * market.DiscountFactor(option)
	call := observedPrice
	if option.Type == Put {
		call = observedPrice + spot - strike
	}
	// σ√T ≈ √(2π) / (S + X) * (C - (S - X)/2 + √((C - (S - X)/2)² - (S - X)²/π))
	m := call - (spot-strike)/2
	disc := m*m - (spot-strike)*(spot-strike)/math.Pi
	a := math.Sqrt(2*math.Pi) / (spot + strike) * (m + math.Sqrt(math.Max(disc, 0)))
	sigma := a / math.Sqrt(option.TimeToMaturity)
	switch {
	case math.IsNaN(sigma):
		return 0.2
	case sigma < 1e-3:
		return 1e-3
	case sigma > 1:
		return 1
	}
	return sigma
}
