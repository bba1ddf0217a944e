package go_vollib

import (
	"fmt"
	"math"
)

// blackScholes caches the terms shared by the closed-form price and every
// Greek for one (option, market, volatility) triple.
type blackScholes struct {
	isCall   bool
	expired  bool
	spot     float64 /* S */
	strike   float64 /* K */
	rate     float64 /* r */
	dividend float64 /* q */
	sigma    float64
	t        float64

	sqrtT float64
	a     float64 /* σ·√T, the standard deviation of log returns until expiry */
	d1    float64
	d2    float64

	deflater         float64 /* exp(-r·T), discounts cash paid at expiry */
	dividendDeflater float64 /* exp(-q·T) */
}

func newBlackScholes(option *VanillaOption, market *MarketData, volatility float64) (*blackScholes, error) {
	if err := validate(option, market); err != nil {
		return nil, err
	}
	if err := validateVolatility(volatility); err != nil {
		return nil, err
	}
	bs := &blackScholes{
		isCall:           option.Type == Call,
		expired:          option.TimeToMaturity == 0,
		spot:             market.Spot,
		strike:           option.Strike,
		rate:             market.Rate,
		dividend:         market.DividendYield,
		sigma:            volatility,
		t:                option.TimeToMaturity,
		sqrtT:            math.Sqrt(option.TimeToMaturity),
		deflater:         market.DiscountFactor(option),
		dividendDeflater: market.DividendDiscountFactor(option),
	}
	if bs.expired {
		return bs, nil
	}
	bs.a = volatility * bs.sqrtT
	if math.IsInf(bs.a, 0) {
		return nil, fmt.Errorf("%w: total volatility σ√T overflows for σ=%v T=%v", ErrInvalidInput, volatility, bs.t)
	}
	// d1 = (ln(S / K) + (r - q) * T) / σ * √T + σ * √T / 2
	// σ² is never formed, so d1 stays finite for very large volatilities.
	bs.d1 = (math.Log(bs.spot/bs.strike)+(bs.rate-bs.dividend)*bs.t)/bs.a + 0.5*bs.a
	// d2 = d1 - σ * √T
	bs.d2 = bs.d1 - bs.a
	return bs, nil
}

// closedForm evaluates one of the blackScholes methods after validation.
func closedForm(option *VanillaOption, market *MarketData, volatility float64, f func(*blackScholes) float64) (float64, error) {
	bs, err := newBlackScholes(option, market, volatility)
	if err != nil {
		return 0, err
	}
	v := f(bs)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not finite for σ=%v", ErrInvalidInput, volatility)
	}
	return v, nil
}

// Price returns the Black-Scholes-Merton price of a European option. At
// expiry it is the intrinsic value.
func Price(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).price)
}

// Delta returns ∂V/∂S.
func Delta(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).delta)
}

// Gamma returns ∂²V/∂S².
func Gamma(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).gamma)
}

// Vega returns ∂V/∂σ for a one point (0.01) move in volatility.
func Vega(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).vega)
}

// Theta returns the change in value over one calendar day.
func Theta(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).theta)
}

// Rho returns ∂V/∂r for a 1% move in the rate.
func Rho(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).rho)
}

// Epsilon returns ∂V/∂q for a 1% move in the dividend yield.
func Epsilon(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).epsilon)
}

// Lambda returns the elasticity Δ·S/V, zero for a worthless option.
func Lambda(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).lambda)
}

func (bs *blackScholes) intrinsic() float64 {
	if bs.isCall {
		return math.Max(bs.spot-bs.strike, 0)
	}
	return math.Max(bs.strike-bs.spot, 0)
}

// exercised is the payoff's sensitivity to the spot at expiry: 1 for an
// in-the-money call, -1 for an in-the-money put, otherwise 0.
func (bs *blackScholes) exercised() float64 {
	switch {
	case bs.isCall && bs.spot > bs.strike:
		return 1
	case !bs.isCall && bs.spot < bs.strike:
		return -1
	}
	return 0
}

func (bs *blackScholes) price() float64 {
	if bs.expired {
		return bs.intrinsic()
	}
	if bs.isCall {
		return bs.callPrice()
	}
	return bs.putPrice()
}

func (bs *blackScholes) callPrice() float64 {
	// price = S * exp(-q * T) * N(d1) - K * exp(-r * T) * N(d2)
	return bs.spot*bs.dividendDeflater*normCdf(bs.d1) -
		bs.strike*bs.deflater*normCdf(bs.d2)
}

func (bs *blackScholes) putPrice() float64 {
	// price = K * exp(-r * T) * N(-d2) - S * exp(-q * T) * N(-d1)
	return bs.strike*bs.deflater*normCdf(-bs.d2) -
		bs.spot*bs.dividendDeflater*normCdf(-bs.d1)
}

func (bs *blackScholes) delta() float64 {
	if bs.expired {
		return bs.exercised()
	}
	if bs.isCall {
		return bs.dividendDeflater * normCdf(bs.d1)
	}
	return -bs.dividendDeflater * normCdf(-bs.d1)
}

func (bs *blackScholes) gamma() float64 {
	if bs.expired {
		return 0
	}
	return bs.dividendDeflater * normPdf(bs.d1) / (bs.spot * bs.a)
}

// negligible reports that φ(d1) underflowed. Every Greek carrying that
// factor is then zero, whatever the size of the polynomial in d1 and d2
// multiplying it.
func (bs *blackScholes) negligible() bool {
	return bs.expired || normPdf(bs.d1) == 0
}

// rawVega is ∂V/∂σ per unit of volatility.
func (bs *blackScholes) rawVega() float64 {
	if bs.expired {
		return 0
	}
	return bs.spot * bs.dividendDeflater * normPdf(bs.d1) * bs.sqrtT
}

func (bs *blackScholes) vega() float64 {
	return bs.rawVega() * 0.01
}

// rawTheta is ∂V/∂t per year, the negative of ∂V/∂T.
func (bs *blackScholes) rawTheta() float64 {
	if bs.expired {
		return 0
	}
	decay := -bs.spot * bs.dividendDeflater * normPdf(bs.d1) * bs.sigma / (2 * bs.sqrtT)
	if bs.isCall {
		// theta = decay - r * K * exp(-r * T) * N(d2) + q * S * exp(-q * T) * N(d1)
		return decay -
			bs.rate*bs.strike*bs.deflater*normCdf(bs.d2) +
			bs.dividend*bs.spot*bs.dividendDeflater*normCdf(bs.d1)
	}
	// theta = decay + r * K * exp(-r * T) * N(-d2) - q * S * exp(-q * T) * N(-d1)
	return decay +
		bs.rate*bs.strike*bs.deflater*normCdf(-bs.d2) -
		bs.dividend*bs.spot*bs.dividendDeflater*normCdf(-bs.d1)
}

func (bs *blackScholes) theta() float64 {
	return bs.rawTheta() / DaysPerYear
}

func (bs *blackScholes) rho() float64 {
	if bs.expired {
		return 0
	}
	if bs.isCall {
		// rho = K * T * exp(-r * T) * N(d2)
		return bs.strike * bs.t * bs.deflater * normCdf(bs.d2) * 0.01
	}
	// rho = -K * T * exp(-r * T) * N(-d2)
	return -bs.strike * bs.t * bs.deflater * normCdf(-bs.d2) * 0.01
}

func (bs *blackScholes) epsilon() float64 {
	if bs.expired {
		return 0
	}
	if bs.isCall {
		return -bs.spot * bs.t * bs.dividendDeflater * normCdf(bs.d1) * 0.01
	}
	return bs.spot * bs.t * bs.dividendDeflater * normCdf(-bs.d1) * 0.01
}

func (bs *blackScholes) lambda() float64 {
	price := bs.price()
	if price == 0 {
		return 0
	}
	return bs.delta() * bs.spot / price
}
