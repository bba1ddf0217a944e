package go_vollib

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"

	"github.com/joshi-prasad/go_vollib/internal/lets_be_rational"
)

// RationalIterations is the number of Householder steps taken after the
// rational initial guess. Two are enough for full double precision.
const RationalIterations = 2

// Pricer prices a European option for a given volatility.
type Pricer interface {
	Price(option *VanillaOption, market *MarketData, volatility float64) (float64, error)
}

// ClosedForm prices with the textbook Black-Scholes-Merton formula.
type ClosedForm struct{}

func (ClosedForm) Price(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return Price(option, market, volatility)
}

// Rational prices through the normalised Black function.
type Rational struct{}

func (Rational) Price(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return RationalPrice(option, market, volatility)
}

var (
	_ Pricer = ClosedForm{}
	_ Pricer = Rational{}
)

// RationalPrice returns the discounted Black price on the forward
// S·exp((r-q)·T). It agrees with Price where the latter is well conditioned
// and keeps relative precision for far out-of-the-money options and short
// maturities where the closed form cancels.
func RationalPrice(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	if err := validate(option, market); err != nil {
		return 0, err
	}
	if err := validateVolatility(volatility); err != nil {
		return 0, err
	}
	if option.TimeToMaturity == 0 {
		return intrinsic(option, market), nil
	}
	if err := validateCarry(option, market); err != nil {
		return 0, err
	}
	forward := market.Forward(option)
	undiscounted := lets_be_rational.Black(
		forward, option.Strike, volatility, option.TimeToMaturity, option.Type.sign())
	price := market.DiscountFactor(option) * undiscounted
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: rational price is not finite for σ=%v", ErrInvalidInput, volatility)
	}
	return price, nil
}

// RationalImpliedVol returns the volatility at which RationalPrice
// reproduces observedPrice. A price equal to the discounted intrinsic value
// yields zero volatility.
func RationalImpliedVol(observedPrice float64, option *VanillaOption, market *MarketData) (float64, error) {
	if err := validateImpliedVolInputs(observedPrice, option, market); err != nil {
		return 0, err
	}
	if atIntrinsic, err := checkPriceBounds(observedPrice, option, market); err != nil || atIntrinsic {
		return 0, err
	}
	df := market.DiscountFactor(option)
	forward := market.Forward(option)
	sigma, err := lets_be_rational.ImpliedVolatility(
		observedPrice/df, forward, option.Strike, option.TimeToMaturity,
		option.Type.sign(), RationalIterations)
	switch {
	case err == nil:
		return sigma, nil
	case errors.Is(err, lets_be_rational.ErrBelowIntrinsic):
		// The discounted price passed the bounds check, so it lies within
		// rounding of the intrinsic value.
		if glog.V(1) {
			glog.Infof("rational implied vol: %v K=%v price=%v rounds to intrinsic",
				option.Type, option.Strike, observedPrice)
		}
		return 0, nil
	case errors.Is(err, lets_be_rational.ErrAboveMaximum):
		return 0, fmt.Errorf("%w: %v %v price %v at or above %v",
			ErrPriceOutOfBounds, option.Type, option.Strike, observedPrice, option.UpperBound(market))
	case errors.Is(err, lets_be_rational.ErrNoConvergence):
		if glog.V(1) {
			glog.Infof("rational implied vol: residual rejected for %v K=%v T=%v price=%v forward=%v",
				option.Type, option.Strike, option.TimeToMaturity, observedPrice, forward)
		}
		return 0, fmt.Errorf("%w after %d iterations", ErrNoConvergence, RationalIterations)
	}
	return 0, err
}

// validateImpliedVolInputs checks what both implied volatility solvers
// need: a live option and a finite, non-negative price.
func validateImpliedVolInputs(observedPrice float64, option *VanillaOption, market *MarketData) error {
	if err := validate(option, market); err != nil {
		return err
	}
	if option.TimeToMaturity == 0 {
		return fmt.Errorf("%w: implied volatility is undefined at expiry", ErrInvalidInput)
	}
	if !(observedPrice >= 0) || math.IsInf(observedPrice, 0) {
		return fmt.Errorf("%w: price must be finite and non-negative, got %v", ErrInvalidInput, observedPrice)
	}
	return validateCarry(option, market)
}

// checkPriceBounds rejects prices outside [discounted intrinsic, upper bound)
// and reports whether the price sits exactly on the intrinsic value.
func checkPriceBounds(observedPrice float64, option *VanillaOption, market *MarketData) (bool, error) {
	lower := option.DiscountedIntrinsic(market)
	if observedPrice < lower {
		return false, fmt.Errorf("%w: %v %v price %v below discounted intrinsic %v",
			ErrPriceOutOfBounds, option.Type, option.Strike, observedPrice, lower)
	}
	if upper := option.UpperBound(market); observedPrice >= upper {
		return false, fmt.Errorf("%w: %v %v price %v at or above %v",
			ErrPriceOutOfBounds, option.Type, option.Strike, observedPrice, upper)
	}
	return observedPrice == lower, nil
}
