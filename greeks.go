package go_vollib

import (
	"fmt"
	"math"
)

// Greeks bundles the price and every sensitivity of one option. First-order
// Greeks follow market quoting (Vega, Rho and Epsilon per 1%, Theta per
// calendar day); higher-order Greeks are plain partial derivatives with time
// measured in years.
type Greeks struct {
	Price float64

	Delta   float64
	Gamma   float64
	Vega    float64
	Theta   float64
	Rho     float64
	Epsilon float64
	Lambda  float64

	Vanna     float64
	Charm     float64
	Vomma     float64
	Veta      float64
	Speed     float64
	Zomma     float64
	Color     float64
	Ultima    float64
	DualDelta float64
	DualGamma float64
}

// ComputeGreeks evaluates the price and all Greeks sharing one set of d1/d2
// terms.
func ComputeGreeks(option *VanillaOption, market *MarketData, volatility float64) (Greeks, error) {
	bs, err := newBlackScholes(option, market, volatility)
	if err != nil {
		return Greeks{}, err
	}
	g := Greeks{
		Price:     bs.price(),
		Delta:     bs.delta(),
		Gamma:     bs.gamma(),
		Vega:      bs.vega(),
		Theta:     bs.theta(),
		Rho:       bs.rho(),
		Epsilon:   bs.epsilon(),
		Lambda:    bs.lambda(),
		Vanna:     bs.vanna(),
		Charm:     bs.charm(),
		Vomma:     bs.vomma(),
		Veta:      bs.veta(),
		Speed:     bs.speed(),
		Zomma:     bs.zomma(),
		Color:     bs.color(),
		Ultima:    bs.ultima(),
		DualDelta: bs.dualDelta(),
		DualGamma: bs.dualGamma(),
	}
	for _, v := range g.values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Greeks{}, fmt.Errorf("%w: greeks are not finite for σ=%v", ErrInvalidInput, volatility)
		}
	}
	return g, nil
}

func (g *Greeks) values() []float64 {
	return []float64{
		g.Price, g.Delta, g.Gamma, g.Vega, g.Theta, g.Rho, g.Epsilon, g.Lambda,
		g.Vanna, g.Charm, g.Vomma, g.Veta, g.Speed, g.Zomma, g.Color, g.Ultima,
		g.DualDelta, g.DualGamma,
	}
}

// Vanna returns ∂²V/∂S∂σ.
func Vanna(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).vanna)
}

// Charm returns ∂Δ/∂t per year.
func Charm(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).charm)
}

// Vomma returns ∂²V/∂σ².
func Vomma(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).vomma)
}

// Veta returns ∂²V/∂σ∂t per year.
func Veta(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).veta)
}

// Speed returns ∂³V/∂S³.
func Speed(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).speed)
}

// Zomma returns ∂³V/∂S²∂σ.
func Zomma(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).zomma)
}

// Color returns ∂Γ/∂t per year.
func Color(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).color)
}

// Ultima returns ∂³V/∂σ³.
func Ultima(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).ultima)
}

// DualDelta returns ∂V/∂K.
func DualDelta(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).dualDelta)
}

// DualGamma returns ∂²V/∂K².
func DualGamma(option *VanillaOption, market *MarketData, volatility float64) (float64, error) {
	return closedForm(option, market, volatility, (*blackScholes).dualGamma)
}

func (bs *blackScholes) vanna() float64 {
	if bs.negligible() {
		return 0
	}
	// vanna = -exp(-q * T) * φ(d1) * d2 / σ
	return -bs.dividendDeflater * normPdf(bs.d1) * bs.d2 / bs.sigma
}

// drift is the term (2(r-q)T - d2·σ√T) / (2T·σ√T) shared by charm and color.
func (bs *blackScholes) drift() float64 {
	return (2*(bs.rate-bs.dividend)*bs.t - bs.d2*bs.a) / (2 * bs.t * bs.a)
}

func (bs *blackScholes) charm() float64 {
	if bs.expired {
		return 0
	}
	decay := 0.0
	if !bs.negligible() {
		decay = bs.dividendDeflater * normPdf(bs.d1) * bs.drift()
	}
	if bs.isCall {
		return bs.dividend*bs.dividendDeflater*normCdf(bs.d1) - decay
	}
	return -bs.dividend*bs.dividendDeflater*normCdf(-bs.d1) - decay
}

func (bs *blackScholes) vomma() float64 {
	if bs.negligible() {
		return 0
	}
	return bs.rawVega() * bs.d1 * bs.d2 / bs.sigma
}

func (bs *blackScholes) veta() float64 {
	if bs.negligible() {
		return 0
	}
	return bs.rawVega() * (bs.dividend +
		(bs.rate-bs.dividend)*bs.d1/bs.a -
		(1+bs.d1*bs.d2)/(2*bs.t))
}

func (bs *blackScholes) speed() float64 {
	if bs.negligible() {
		return 0
	}
	return -bs.gamma() / bs.spot * (bs.d1/bs.a + 1)
}

func (bs *blackScholes) zomma() float64 {
	if bs.negligible() {
		return 0
	}
	return bs.gamma() * (bs.d1*bs.d2 - 1) / bs.sigma
}

func (bs *blackScholes) color() float64 {
	if bs.negligible() {
		return 0
	}
	return bs.gamma() * (bs.dividend + 1/(2*bs.t) + bs.drift()*bs.d1)
}

func (bs *blackScholes) ultima() float64 {
	if bs.negligible() {
		return 0
	}
	d1d2 := bs.d1 * bs.d2
	return -bs.rawVega() / (bs.sigma * bs.sigma) *
		(d1d2*(1-d1d2) + bs.d1*bs.d1 + bs.d2*bs.d2)
}

func (bs *blackScholes) dualDelta() float64 {
	if bs.expired {
		return -bs.exercised()
	}
	if bs.isCall {
		return -bs.deflater * normCdf(bs.d2)
	}
	return bs.deflater * normCdf(-bs.d2)
}

func (bs *blackScholes) dualGamma() float64 {
	if bs.expired {
		return 0
	}
	return bs.deflater * normPdf(bs.d2) / (bs.strike * bs.a)
}
