package lets_be_rational

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tol*math.Max(math.Abs(a), math.Abs(b))
}

func TestErfcx(t *testing.T) {
	cases := []struct {
		x    float64
		want float64
	}{
		{-5, 144009798674.66104},
		{-1, 5.008980080762283},
		{-0.3, 1.4537492328427657},
		{0, 1},
		{0.3, 0.7345993345676552},
		{0.46875, 0.6320696892495562},
		{2, 0.2553956763105057},
		{5, 0.11070463773306863},
		{10, 0.05614099274382258},
		{30, 0.01879588886141675},
		{1000, 0.0005641893014533876},
	}
	for _, c := range cases {
		if got := Erfcx(c.x); !almostEqual(got, c.want, 1e-14) {
			t.Errorf("Erfcx(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

func TestErfcxAgreesWithErfc(t *testing.T) {
	for x := -6.0; x <= 6.0; x += 0.0625 {
		want := math.Exp(x*x) * math.Erfc(x)
		if got := Erfcx(x); !almostEqual(got, want, 1e-13) {
			t.Errorf("Erfcx(%v) = %v, exp(x²)·erfc(x) = %v", x, got, want)
		}
	}
}

func TestErfcxLimits(t *testing.T) {
	if got := Erfcx(-27); got != math.MaxFloat64 {
		t.Errorf("Erfcx(-27) = %v, want MaxFloat64", got)
	}
	x := 1e9
	if got, want := Erfcx(x), 1/(x*math.SqrtPi); !almostEqual(got, want, 1e-15) {
		t.Errorf("Erfcx(%v) = %v, want %v", x, got, want)
	}
}

func TestSelectBranch(t *testing.T) {
	cases := []struct {
		x, s float64
		want evaluationBranch
	}{
		{-1, 0, branchIntrinsic},
		{-30, 1, branchAsymptotic},
		{0, 0.42, branchSmallT},
		{0, 0.421, branchErfcx},
		{-0.5, 0.1, branchSmallT},
		{0, 2, branchNormCdf},
		{-0.1, 1, branchErfcx},
	}
	for _, c := range cases {
		if got := selectBranch(c.x, c.s); got != c.want {
			t.Errorf("selectBranch(%v, %v) = %v, want %v", c.x, c.s, got, c.want)
		}
	}
}

// straddle walks from x one ulp at a time until the evaluation branch
// changes and returns the two neighbouring arguments.
func straddle(t *testing.T, x, s float64, moveX bool) (a, b [2]float64) {
	t.Helper()
	at := func(v float64) [2]float64 {
		if moveX {
			return [2]float64{v, s}
		}
		return [2]float64{x, v}
	}
	start := x
	if !moveX {
		start = s
	}
	for _, dir := range []float64{math.Inf(1), math.Inf(-1)} {
		v := start
		for i := 0; i < 100000; i++ {
			next := math.Nextafter(v, dir)
			p, q := at(v), at(next)
			if selectBranch(p[0], p[1]) != selectBranch(q[0], q[1]) {
				return p, q
			}
			v = next
		}
	}
	t.Fatalf("no branch change near x=%v s=%v", x, s)
	return
}

func TestNormalisedBlackContinuousAcrossBranches(t *testing.T) {
	type boundary struct {
		name  string
		x, s  float64
		moveX bool
	}
	var boundaries []boundary
	for _, x := range []float64{0, -0.05, -0.2} {
		boundaries = append(boundaries, boundary{"small-t/erfcx", x, SmallTExpansionThreshold * 2, false})
	}
	for _, s := range []float64{0.3, 0.5, 1, 2} {
		x := math.Min(s*(SmallTExpansionThreshold+asymptoticExpansionThreshold)-0.5*s*s, s*asymptoticExpansionThreshold)
		boundaries = append(boundaries, boundary{"asymptotic", x, s, true})
	}
	boundaries = append(boundaries, boundary{"norm-cdf/erfcx", 0.85*2 - 0.5*2*2, 2, true})

	for _, bd := range boundaries {
		p, q := straddle(t, bd.x, bd.s, bd.moveX)
		bp := normalisedBlackCall(p[0], p[1])
		bq := normalisedBlackCall(q[0], q[1])
		if !almostEqual(bp, bq, 1e-12) {
			t.Errorf("%s: b%v = %v (%v), b%v = %v (%v)", bd.name,
				p, bp, selectBranch(p[0], p[1]), q, bq, selectBranch(q[0], q[1]))
		}
	}
}

func TestNormalisedBlackPutCallParity(t *testing.T) {
	for _, x := range []float64{-3, -0.4, 0, 0.1, 2.5} {
		for _, s := range []float64{0.05, 0.3, 1, 4} {
			call := NormalisedBlack(x, s, Call)
			put := NormalisedBlack(x, s, Put)
			want := math.Exp(0.5*x) - math.Exp(-0.5*x)
			if math.Abs(call-put-want) > 1e-14*math.Max(1, math.Abs(want)) {
				t.Errorf("x=%v s=%v: call-put = %v, want %v", x, s, call-put, want)
			}
		}
	}
}

func TestNormalisedIntrinsic(t *testing.T) {
	cases := []struct {
		x, q, want float64
	}{
		{1e-3, Call, 2 * math.Sinh(0.5e-3)},
		{1e-3, Put, 0},
		{-2, Put, 2 * math.Sinh(1)},
		{-2, Call, 0},
		{0, Call, 0},
	}
	for _, c := range cases {
		if got := NormalisedIntrinsic(c.x, c.q); !almostEqual(got, c.want, 1e-14) {
			t.Errorf("NormalisedIntrinsic(%v, %v) = %v, want %v", c.x, c.q, got, c.want)
		}
	}
}

func TestNormalisedVegaMatchesDifference(t *testing.T) {
	for _, x := range []float64{-2, -0.3, 0} {
		for _, s := range []float64{0.3, 0.7, 2} {
			const h = 1e-6
			fd := (normalisedBlackCall(x, s+h) - normalisedBlackCall(x, s-h)) / (2 * h)
			if got := NormalisedVega(x, s); !almostEqual(got, fd, 1e-7) {
				t.Errorf("NormalisedVega(%v, %v) = %v, finite difference %v", x, s, got, fd)
			}
		}
	}
}

func TestBlackStrictlyIncreasingInVolatility(t *testing.T) {
	for _, q := range []float64{Call, Put} {
		previous := Black(100, 110, 0.05, 1, q)
		for sigma := 0.06; sigma < 5; sigma += 0.01 {
			price := Black(100, 110, sigma, 1, q)
			if !(price > previous) {
				t.Fatalf("q=%v: price %v at sigma=%v not above %v", q, price, sigma, previous)
			}
			previous = price
		}
	}
}

func TestBlackAtExpiryIsIntrinsic(t *testing.T) {
	if got := Black(120, 100, 0.3, 0, Call); got != 20 {
		t.Errorf("call at expiry = %v, want 20", got)
	}
	if got := Black(120, 100, 0.3, 0, Put); got != 0 {
		t.Errorf("put at expiry = %v, want 0", got)
	}
	if got := Black(80, 100, 0.3, 0, Put); got != 20 {
		t.Errorf("put at expiry = %v, want 20", got)
	}
}
