// Package lets_be_rational implements the normalised Black function and its
// inverse following Peter Jäckel, "Let's Be Rational", Wilmott (2015).
//
// Prices are normalised by √(F·K) and expressed in terms of the
// log-moneyness x = ln(F/K) and the total standard deviation s = σ·√T, so
// every routine here is independent of the absolute scale of the forward and
// the strike. The sign q is +1 for calls and -1 for puts.
package lets_be_rational

import "math"

// Call and Put are the values of q accepted by this package.
const (
	Call = 1.0
	Put  = -1.0
)

type evaluationBranch int

const (
	branchIntrinsic evaluationBranch = iota
	branchAsymptotic
	branchSmallT
	branchNormCdf
	branchErfcx
)

func (b evaluationBranch) String() string {
	switch b {
	case branchIntrinsic:
		return "intrinsic"
	case branchAsymptotic:
		return "asymptotic"
	case branchSmallT:
		return "small-t"
	case branchNormCdf:
		return "norm-cdf"
	case branchErfcx:
		return "erfcx"
	}
	return "unknown"
}

// Black returns the undiscounted Black price of an option on the forward F
// with strike K, volatility sigma and time to expiry T.
func Black(F, K, sigma, T, q float64) float64 {
	intrinsic := math.Max(q*(F-K), 0)
	// Compute the in-the-money price as intrinsic value plus the
	// out-of-the-money counterpart so the time value never cancels.
	if q*(F-K) > 0 {
		return intrinsic + Black(F, K, sigma, T, -q)
	}
	return math.Max(intrinsic, math.Sqrt(F)*math.Sqrt(K)*NormalisedBlack(math.Log(F/K), sigma*math.Sqrt(T), q))
}

// NormalisedBlack returns b(x, s) = q·(e^{x/2}·Φ(q·(x/s+s/2)) - e^{-x/2}·Φ(q·(x/s-s/2))).
func NormalisedBlack(x, s, q float64) float64 {
	if q < 0 {
		return normalisedBlackCall(-x, s)
	}
	return normalisedBlackCall(x, s)
}

// NormalisedIntrinsic returns the intrinsic value of the normalised price,
// max(q·(e^{x/2} - e^{-x/2}), 0).
func NormalisedIntrinsic(x, q float64) float64 {
	if q*x <= 0 {
		return 0
	}
	x2 := x * x
	// Taylor series of 2·sinh(x/2) for small |x|.
	if x2 < 98*fourthRootEpsilon {
		return math.Abs(x * (1 + x2*(1.0/24+x2*(1.0/1920+x2*(1.0/322560+x2*(1.0/92897280))))))
	}
	bMax := math.Exp(0.5 * x)
	return math.Abs(bMax - 1/bMax)
}

func normalisedIntrinsicCall(x float64) float64 {
	return NormalisedIntrinsic(x, Call)
}

// NormalisedVega returns ∂b/∂s.
func NormalisedVega(x, s float64) float64 {
	ax := math.Abs(x)
	if ax <= 0 {
		return oneOverSqrtTwoPi * math.Exp(-0.125*s*s)
	}
	if s <= 0 || s <= ax*sqrtDblMin {
		return 0
	}
	h := x / s
	t := 0.5 * s
	return oneOverSqrtTwoPi * math.Exp(-0.5*(h*h+t*t))
}

// selectBranch picks the evaluation path of b(x, s) for x ≤ 0.
func selectBranch(x, s float64) evaluationBranch {
	switch {
	case s <= 0:
		return branchIntrinsic
	case x < s*asymptoticExpansionThreshold &&
		0.5*s*s+x < s*(SmallTExpansionThreshold+asymptoticExpansionThreshold):
		return branchAsymptotic
	case 0.5*s < SmallTExpansionThreshold:
		return branchSmallT
	case x+0.5*s*s > s*0.85:
		return branchNormCdf
	}
	return branchErfcx
}

func normalisedBlackCall(x, s float64) float64 {
	if x > 0 {
		return normalisedIntrinsicCall(x) + normalisedBlackCall(-x, s)
	}
	switch selectBranch(x, s) {
	case branchIntrinsic:
		return normalisedIntrinsicCall(x)
	case branchAsymptotic:
		return asymptoticExpansionOfNormalisedBlackCall(x/s, 0.5*s)
	case branchSmallT:
		return smallTExpansionOfNormalisedBlackCall(x/s, 0.5*s)
	case branchNormCdf:
		return normalisedBlackCallUsingNormCdf(x, s)
	}
	return normalisedBlackCallUsingErfcx(x/s, 0.5*s)
}

// asymptoticExpansionOfNormalisedBlackCall sums the tail expansion of
// Φ(h+t)e^{ht} - Φ(h-t)e^{-ht} for h ≪ -1. With e = (t/h)², r = h²-t²
// and q = (h/r)² the n-th term is
//
//	(-1)^n · (2n-1)!! · qⁿ · 2·Σ_i C(2n+1, 2i+1)·eⁱ
func asymptoticExpansionOfNormalisedBlackCall(h, t float64) float64 {
	e := (t / h) * (t / h)
	r := (h + t) * (h - t)
	q := (h / r) * (h / r)

	sum := 0.0
	qn := 1.0
	doubleFactorial := 1.0
	for n := 0; n < asymptoticExpansionTerms; n++ {
		m := 2*n + 1
		poly := 0.0
		ei := 1.0
		binomial := float64(m) // C(m, 1)
		for i := 0; i <= n; i++ {
			poly += binomial * ei
			ei *= e
			k := 2*i + 1
			// C(m, k+2) from C(m, k).
			binomial *= float64((m-k)*(m-k-1)) / float64((k+1)*(k+2))
		}
		term := doubleFactorial * qn * 2 * poly
		if n%2 == 0 {
			sum += term
		} else {
			sum -= term
		}
		qn *= q
		doubleFactorial *= float64(m)
	}
	b := oneOverSqrtTwoPi * math.Exp(-0.5*(h*h+t*t)) * (t / r) * sum
	return math.Abs(math.Max(b, 0))
}

// smallTExpansionOfNormalisedBlackCall expands Y(h+t) - Y(h-t) in odd powers
// of t, where Y = Φ/φ satisfies Y' = 1 + h·Y. Odd derivatives are carried
// as polynomials in a = Y'(h) = 1 + h·Y(h) to avoid cancellation:
//
//	Y⁽ⁿ⁾ = (n-1+h²)·Y⁽ⁿ⁻²⁾ + (n-2)·h·Y⁽ⁿ⁻³⁾
//	h·Y⁽ᵐ⁾ = (m-1)·h·Y⁽ᵐ⁻²⁾ + h²·Y⁽ᵐ⁻¹⁾
func smallTExpansionOfNormalisedBlackCall(h, t float64) float64 {
	a := 1 + h*(0.5*sqrtTwoPi)*Erfcx(-oneOverSqrtTwo*h)
	w := t * t
	h2 := h * h

	odd := a      // Y'
	even := a - 1 // h·Y
	sum := odd
	power := 1.0
	factorial := 1.0
	for n := 3; n <= 13; n += 2 {
		nextEven := float64(n-2)*even + h2*odd
		odd = (float64(n-1)+h2)*odd + float64(n-2)*even
		even = nextEven
		power *= w
		factorial *= float64((n - 1) * n)
		sum += odd * power / factorial
	}
	b := oneOverSqrtTwoPi * math.Exp(-0.5*(h*h+t*t)) * 2 * t * sum
	return math.Abs(math.Max(b, 0))
}

func normalisedBlackCallUsingNormCdf(x, s float64) float64 {
	h := x / s
	t := 0.5 * s
	bMax := math.Exp(0.5 * x)
	b := normCdf(h+t)*bMax - normCdf(h-t)/bMax
	return math.Abs(math.Max(b, 0))
}

func normalisedBlackCallUsingErfcx(h, t float64) float64 {
	b := 0.5 * math.Exp(-0.5*(h*h+t*t)) *
		(Erfcx(-oneOverSqrtTwo*(h+t)) - Erfcx(-oneOverSqrtTwo*(h-t)))
	return math.Abs(math.Max(b, 0))
}
