// Package go_vollib prices European options under the Black-Scholes-Merton
// model, computes their Greeks and inverts prices to implied volatility.
//
// Two pricers are provided: the closed-form formula (Price) and a rational
// reformulation built on the normalised Black function (RationalPrice) that
// keeps full relative precision deep in and out of the money and close to
// expiry. RationalImpliedVol inverts prices with the latter.
//
// Every function is pure and safe for concurrent use.
package go_vollib

import (
	"fmt"
	"math"
)

// DaysPerYear converts calendar days to year fractions and annualised
// theta to a daily figure.
const DaysPerYear = 365.25

type OptionStyle int

const (
	European OptionStyle = iota
)

func (s OptionStyle) String() string {
	switch s {
	case European:
		return "european"
	}
	return fmt.Sprintf("OptionStyle(%d)", int(s))
}

type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

// sign is +1 for calls and -1 for puts.
func (t OptionType) sign() float64 {
	if t == Put {
		return -1
	}
	return 1
}

// VanillaOption is a plain vanilla contract. TimeToMaturity is in years; zero
// means the option is at expiry.
type VanillaOption struct {
	Style          OptionStyle
	Type           OptionType
	Strike         float64 /* K */
	TimeToMaturity float64 /* T */
}

func NewVanillaOption(style OptionStyle, optionType OptionType, strike, timeToMaturity float64) VanillaOption {
	return VanillaOption{
		Style:          style,
		Type:           optionType,
		Strike:         strike,
		TimeToMaturity: timeToMaturity,
	}
}

// MarketData holds the state of the underlying. Rate and DividendYield are
// continuously compounded and may be negative.
type MarketData struct {
	Spot          float64 /* S */
	Rate          float64 /* r */
	DividendYield float64 /* q */
}

func NewMarketData(spot, rate, dividendYield float64) MarketData {
	return MarketData{
		Spot:          spot,
		Rate:          rate,
		DividendYield: dividendYield,
	}
}

// DaysToYears converts a number of calendar days to a year fraction.
func DaysToYears(days float64) float64 {
	return days / DaysPerYear
}

// DiscountFactor returns exp(-r·T).
func (m *MarketData) DiscountFactor(option *VanillaOption) float64 {
	return math.Exp(-m.Rate * option.TimeToMaturity)
}

// DividendDiscountFactor returns exp(-q·T).
func (m *MarketData) DividendDiscountFactor(option *VanillaOption) float64 {
	return math.Exp(-m.DividendYield * option.TimeToMaturity)
}

// Forward returns the forward price S·exp((r-q)·T) at the option's expiry.
func (m *MarketData) Forward(option *VanillaOption) float64 {
	return m.Spot * math.Exp((m.Rate-m.DividendYield)*option.TimeToMaturity)
}

// DiscountedIntrinsic returns the lower no-arbitrage bound of the option
// price, max(±(S·e^{-qT} - K·e^{-rT}), 0).
func (o *VanillaOption) DiscountedIntrinsic(market *MarketData) float64 {
	df := market.DiscountFactor(o)
	return df * math.Max(o.Type.sign()*(market.Forward(o)-o.Strike), 0)
}

// UpperBound returns the upper no-arbitrage bound of the option price: the
// discounted forward for a call, the discounted strike for a put.
func (o *VanillaOption) UpperBound(market *MarketData) float64 {
	df := market.DiscountFactor(o)
	if o.Type == Put {
		return df * o.Strike
	}
	return df * market.Forward(o)
}

// validate checks the contract and market inputs shared by every pricing
// entry point.
func validate(option *VanillaOption, market *MarketData) error {
	switch {
	case option == nil || market == nil:
		return fmt.Errorf("%w: option and market data are required", ErrInvalidInput)
	case option.Style != European:
		return fmt.Errorf("%w: unsupported option style %v", ErrInvalidInput, option.Style)
	case option.Type != Call && option.Type != Put:
		return fmt.Errorf("%w: unsupported option type %v", ErrInvalidInput, option.Type)
	case !(option.Strike > 0) || math.IsInf(option.Strike, 0):
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidInput, option.Strike)
	case !(option.TimeToMaturity >= 0) || math.IsInf(option.TimeToMaturity, 0):
		return fmt.Errorf("%w: time to maturity must be non-negative, got %v", ErrInvalidInput, option.TimeToMaturity)
	case !(market.Spot > 0) || math.IsInf(market.Spot, 0):
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidInput, market.Spot)
	case math.IsNaN(market.Rate) || math.IsInf(market.Rate, 0):
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidInput, market.Rate)
	case math.IsNaN(market.DividendYield) || math.IsInf(market.DividendYield, 0):
		return fmt.Errorf("%w: dividend yield must be finite, got %v", ErrInvalidInput, market.DividendYield)
	}
	return nil
}

// validateCarry checks that the forward, the discount factor and the
// moneyness F/K are positive and finite.
func validateCarry(option *VanillaOption, market *MarketData) error {
	forward := market.Forward(option)
	df := market.DiscountFactor(option)
	moneyness := forward / option.Strike
	switch {
	case !(forward > 0) || math.IsInf(forward, 0):
		return fmt.Errorf("%w: forward %v is not representable", ErrInvalidInput, forward)
	case !(df > 0) || math.IsInf(df, 0):
		return fmt.Errorf("%w: discount factor %v is not representable", ErrInvalidInput, df)
	case !(moneyness > 0) || math.IsInf(moneyness, 0):
		return fmt.Errorf("%w: moneyness F/K = %v is not representable", ErrInvalidInput, moneyness)
	}
	return nil
}

func validateVolatility(volatility float64) error {
	if !(volatility > 0) || math.IsInf(volatility, 0) {
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidInput, volatility)
	}
	return nil
}

// intrinsic is the payoff at expiry, max(±(S-K), 0).
func intrinsic(option *VanillaOption, market *MarketData) float64 {
	return math.Max(option.Type.sign()*(market.Spot-option.Strike), 0)
}
