package go_vollib

import (
	"math"
	"testing"
)

func TestOptionEnumsString(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{European.String(), "european"},
		{Call.String(), "call"},
		{Put.String(), "put"},
		{OptionType(9).String(), "OptionType(9)"},
		{OptionStyle(2).String(), "OptionStyle(2)"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestDaysToYears(t *testing.T) {
	if got := DaysToYears(365.25); got != 1 {
		t.Errorf("one year: %v", got)
	}
	if got := DaysToYears(0); got != 0 {
		t.Errorf("zero days: %v", got)
	}
}

func TestMarketDataDiscounting(t *testing.T) {
	option := NewVanillaOption(European, Call, 100, 2)
	market := NewMarketData(100, 0.05, 0.02)
	if got, want := market.DiscountFactor(&option), math.Exp(-0.1); got != want {
		t.Errorf("discount factor %v, want %v", got, want)
	}
	if got, want := market.DividendDiscountFactor(&option), math.Exp(-0.04); got != want {
		t.Errorf("dividend discount factor %v, want %v", got, want)
	}
	if got, want := market.Forward(&option), 100*math.Exp(0.06); !almostEqual(got, want, 1e-15) {
		t.Errorf("forward %v, want %v", got, want)
	}
}

func TestNoArbitrageBounds(t *testing.T) {
	market := NewMarketData(100, 0.05, 0.02)
	cases := []struct {
		option    VanillaOption
		intrinsic float64
		upper     float64
	}{
		{
			NewVanillaOption(European, Call, 90, 1),
			100*math.Exp(-0.02) - 90*math.Exp(-0.05),
			100 * math.Exp(-0.02),
		},
		{NewVanillaOption(European, Call, 120, 1), 0, 100 * math.Exp(-0.02)},
		{NewVanillaOption(European, Put, 90, 1), 0, 90 * math.Exp(-0.05)},
		{
			NewVanillaOption(European, Put, 120, 1),
			120*math.Exp(-0.05) - 100*math.Exp(-0.02),
			120 * math.Exp(-0.05),
		},
		{NewVanillaOption(European, Put, 120, 0), 20, 120},
	}
	for _, c := range cases {
		if got := c.option.DiscountedIntrinsic(&market); !almostEqual(got, c.intrinsic, 1e-14) {
			t.Errorf("%v %v: intrinsic %v, want %v", c.option.Type, c.option.Strike, got, c.intrinsic)
		}
		if got := c.option.UpperBound(&market); !almostEqual(got, c.upper, 1e-14) {
			t.Errorf("%v %v: upper bound %v, want %v", c.option.Type, c.option.Strike, got, c.upper)
		}
	}
}

func TestValidateAcceptsNegativeRates(t *testing.T) {
	option := NewVanillaOption(European, Put, 100, 1)
	market := NewMarketData(100, -0.02, -0.01)
	if err := validate(&option, &market); err != nil {
		t.Fatal(err)
	}
}
