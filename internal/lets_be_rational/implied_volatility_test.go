package lets_be_rational

import (
	"errors"
	"math"
	"testing"
)

func TestNormalisedImpliedVolatilityRoundTrip(t *testing.T) {
	for _, x := range []float64{-60, -30, -10, -3, -1, -0.25, -0.01, 0} {
		for _, s := range []float64{0.001, 0.01, 0.05, 0.2, 0.42, 1, 2.5, 6} {
			beta := normalisedBlackCall(x, s)
			if beta < 1e-300 {
				continue
			}
			got, err := NormalisedImpliedVolatility(beta, x, Call, 2)
			if err != nil {
				t.Errorf("x=%v s=%v: %v", x, s, err)
				continue
			}
			if !almostEqual(got, s, 1e-12) {
				t.Errorf("x=%v s=%v: implied %v", x, s, got)
			}
		}
	}
}

func TestNormalisedImpliedVolatilityInTheMoney(t *testing.T) {
	for _, x := range []float64{0.01, 0.25, 1, 3} {
		for _, s := range []float64{0.05, 0.2, 0.42, 1, 2.5} {
			beta := normalisedBlackCall(x, s)
			if beta-normalisedIntrinsicCall(x) < 1e-3*beta {
				continue
			}
			got, err := NormalisedImpliedVolatility(beta, x, Call, 2)
			if err != nil {
				t.Errorf("x=%v s=%v: %v", x, s, err)
				continue
			}
			if !almostEqual(got, s, 1e-10) {
				t.Errorf("x=%v s=%v: implied %v", x, s, got)
			}
			// The same price is an out-of-the-money put on -x.
			put, err := NormalisedImpliedVolatility(NormalisedBlack(-x, s, Put), -x, Put, 2)
			if err != nil || !almostEqual(put, s, 1e-10) {
				t.Errorf("x=%v s=%v: put implied %v, %v", -x, s, put, err)
			}
		}
	}
}

func TestImpliedVolatilityBounds(t *testing.T) {
	cases := []struct {
		name    string
		price   float64
		q       float64
		wantErr error
	}{
		{"call below intrinsic", 9.99, Call, ErrBelowIntrinsic},
		{"call at forward", 110, Call, ErrAboveMaximum},
		{"put at strike", 100, Put, ErrAboveMaximum},
		{"put below zero", -1e-9, Put, ErrBelowIntrinsic},
	}
	for _, c := range cases {
		_, err := ImpliedVolatility(c.price, 110, 100, 1, c.q, 2)
		if !errors.Is(err, c.wantErr) {
			t.Errorf("%s: got %v, want %v", c.name, err, c.wantErr)
		}
	}
}

func TestImpliedVolatilityAtIntrinsicIsZero(t *testing.T) {
	got, err := ImpliedVolatility(10, 110, 100, 1, Call, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestImpliedVolatilityScaleInvariant(t *testing.T) {
	const sigma = 0.37
	for _, scale := range []float64{1e-6, 1, 1e6} {
		F, K := 95*scale, 100*scale
		price := Black(F, K, sigma, 0.5, Put)
		got, err := ImpliedVolatility(price, F, K, 0.5, Put, 2)
		if err != nil {
			t.Fatalf("scale %v: %v", scale, err)
		}
		if !almostEqual(got, sigma, 1e-13) {
			t.Errorf("scale %v: got %v, want %v", scale, got, sigma)
		}
	}
}

func TestImpliedVolatilityWithoutIterations(t *testing.T) {
	// The rational guess alone is only good to a few parts in 10⁴ at the
	// money, so without Householder steps the residual check rejects it.
	price := Black(100, 100, 0.2, 1, Call)
	_, err := ImpliedVolatility(price, 100, 100, 1, Call, 0)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("got %v, want %v", err, ErrNoConvergence)
	}
	got, err := ImpliedVolatility(price, 100, 100, 1, Call, 2)
	if err != nil || math.Abs(got-0.2) > 1e-14 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestRationalCubicInterpolationEndpoints(t *testing.T) {
	for _, r := range []float64{-0.5, 0, 3, 10, maxRationalCubicControl} {
		if got := rationalCubicInterpolation(1, 1, 2, 5, 7, 1, 3, r); got != 5 {
			t.Errorf("r=%v: left end %v", r, got)
		}
		if got := rationalCubicInterpolation(2, 1, 2, 5, 7, 1, 3, r); !almostEqual(got, 7, 1e-15) {
			t.Errorf("r=%v: right end %v", r, got)
		}
	}
	// r → ∞ is the straight line.
	if got := rationalCubicInterpolation(1.5, 1, 2, 5, 7, 1, 3, maxRationalCubicControl); got != 6 {
		t.Errorf("linear limit %v", got)
	}
}

func TestMinimumControlParameterKeepsConvexity(t *testing.T) {
	// Slopes 1 and 3 around a secant of 2 describe a convex increasing
	// segment; the interpolant must stay below the chord.
	r := minimumControlParameter(1, 3, 2, true)
	for u := 0.05; u < 1; u += 0.05 {
		y := rationalCubicInterpolation(u, 0, 1, 0, 2, 1, 3, r)
		if y > 2*u+1e-15 {
			t.Errorf("u=%v: %v above chord", u, y)
		}
	}
}
