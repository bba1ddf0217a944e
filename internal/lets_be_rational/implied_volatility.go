package lets_be_rational

import (
	"errors"
	"math"
)

var (
	// ErrBelowIntrinsic is returned for prices below the intrinsic value.
	ErrBelowIntrinsic = errors.New("price below intrinsic value")
	// ErrAboveMaximum is returned for prices at or above the forward (calls)
	// or strike (puts).
	ErrAboveMaximum = errors.New("price at or above maximum")
	// ErrNoConvergence is returned when the iterate left after the budget
	// does not reproduce the price.
	ErrNoConvergence = errors.New("no convergence")
)

// ResidualTolerance bounds |b(s)-β| / max(β, s·∂b/∂s) for an iterate to be
// accepted once the iteration budget is spent.
const ResidualTolerance = 1e-10

// ImpliedVolatility returns the Black volatility that reproduces the
// undiscounted price of an option on forward F with strike K and time to
// expiry T, using at most iterations Householder steps after the rational
// initial guess. Two steps reach full double precision.
func ImpliedVolatility(price, F, K, T, q float64, iterations int) (float64, error) {
	intrinsic := math.Max(q*(F-K), 0)
	if price < intrinsic {
		return 0, ErrBelowIntrinsic
	}
	maxPrice := F
	if q < 0 {
		maxPrice = K
	}
	if price >= maxPrice {
		return 0, ErrAboveMaximum
	}
	x := math.Log(F / K)
	// Map in-the-money to out-of-the-money.
	if q*x > 0 {
		price = math.Max(price-intrinsic, 0)
		q = -q
	}
	s, err := NormalisedImpliedVolatility(price/(math.Sqrt(F)*math.Sqrt(K)), x, q, iterations)
	if err != nil {
		return 0, err
	}
	return s / math.Sqrt(T), nil
}

// NormalisedImpliedVolatility returns the total standard deviation s with
// b(x, s) = beta.
func NormalisedImpliedVolatility(beta, x, q float64, iterations int) (float64, error) {
	if q*x > 0 {
		beta -= NormalisedIntrinsic(x, q)
		q = -q
	}
	if beta < 0 {
		return 0, ErrBelowIntrinsic
	}
	// Puts become calls.
	if q < 0 {
		x = -x
	}
	if beta <= 0 {
		return 0, nil
	}
	if beta >= math.Exp(0.5*x) {
		return 0, ErrAboveMaximum
	}
	s := unchecked(beta, x, iterations)
	if !residualAcceptable(beta, x, s) {
		return s, ErrNoConvergence
	}
	return s, nil
}

func residualAcceptable(beta, x, s float64) bool {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return false
	}
	b := normalisedBlackCall(x, s)
	scale := math.Max(beta, s*NormalisedVega(x, s))
	return math.Abs(b-beta) <= ResidualTolerance*scale
}

func householderFactor(newton, halley, hh3 float64) float64 {
	return (1 + 0.5*halley*newton) / (1 + newton*(halley+hh3*newton/6))
}

// objective is one of the three transformations of b(s) - β the iteration
// runs on. step returns the Householder(3) update, or ok = false when the
// derivatives underflow and the caller should bisect instead.
type objective func(b, bp, s float64) (ds float64, ok bool)

// bracketedIteration runs at most n Householder steps from s, keeping the
// iterate inside (sLeft, sRight) and bisecting once it leaves the bracket or
// changes direction three times.
func bracketedIteration(beta, x, s, sLeft, sRight float64, n int, step objective) float64 {
	ds := -dblMax
	dsPrevious := 0.0
	reversals := 0
	for i := 0; i < n && math.Abs(ds) > dblEpsilon*s; i++ {
		if ds*dsPrevious < 0 {
			reversals++
		}
		if i > 0 && (reversals == 3 || !(s > sLeft && s < sRight)) {
			s = 0.5 * (sLeft + sRight)
			if sRight-sLeft <= dblEpsilon*s {
				break
			}
			reversals = 0
			ds = 0
		}
		dsPrevious = ds
		b := normalisedBlackCall(x, s)
		bp := NormalisedVega(x, s)
		if b > beta && s < sRight {
			sRight = s
		} else if b < beta && s > sLeft {
			sLeft = s
		}
		var ok bool
		ds, ok = step(b, bp, s)
		if !ok || math.IsNaN(ds) {
			ds = 0.5*(sLeft+sRight) - s
		}
		ds = math.Max(-0.5*s, ds)
		s += ds
	}
	return s
}

// unchecked expects an out-of-the-money call: x ≤ 0, 0 < beta < e^{x/2}.
func unchecked(beta, x float64, n int) float64 {
	bMax := math.Exp(0.5 * x)
	sC := math.Sqrt(math.Abs(2 * x))
	bC := normalisedBlackCall(x, sC)
	vC := NormalisedVega(x, sC)

	// In the middle segments the objective is g(s) = b(s) - β.
	middle := func(b, bp, s float64) (float64, bool) {
		if bp <= 0 {
			return 0, false
		}
		newton := (beta - b) / bp
		halley := (x/s)*(x/s)/s - s/4
		hh3 := halley*halley - 3*(x/(s*s))*(x/(s*s)) - 0.25
		return newton * householderFactor(newton, halley, hh3), true
	}

	if beta < bC {
		sL := sC - bC/vC
		bL := normalisedBlackCall(x, sL)
		if beta >= bL {
			vL := NormalisedVega(x, sL)
			r := convexControlParameterToFitSecondDerivativeAtRightSide(bL, bC, sL, sC, 1/vL, 1/vC, 0, false)
			s := rationalCubicInterpolation(beta, bL, bC, sL, sC, 1/vL, 1/vC, r)
			return bracketedIteration(beta, x, s, sL, sC, n, middle)
		}

		// Lowest segment: f(β) ≈ Φ(-z)³ with z = |x|/(√3·s) is interpolated,
		// and the objective is g(s) = 1/ln(b(s)) - 1/ln(β).
		fL, dfL, d2fL := lowerMapAndDerivatives(x, sL)
		r := convexControlParameterToFitSecondDerivativeAtRightSide(0, bL, 0, fL, 1, dfL, d2fL, true)
		f := rationalCubicInterpolation(beta, 0, bL, 0, fL, 1, dfL, r)
		if !(f > 0) {
			// Roundoff for |x| > 500 or so; fall back to the quadratic
			// through f(0) = 0, f(b_l) and f'(0) = 1.
			t := beta / bL
			f = (fL*t + bL*(1-t)) * t
		}
		s := inverseLowerMap(x, f)
		lnBeta := math.Log(beta)
		return bracketedIteration(beta, x, s, dblMin, sL, n, func(b, bp, s float64) (float64, bool) {
			if b <= 0 || bp <= 0 {
				return 0, false
			}
			lnB := math.Log(b)
			bpob := bp / b
			h := x / s
			bHalley := h*h/s - s/4
			newton := (lnBeta - lnB) * lnB / lnBeta / bpob
			halley := bHalley - bpob*(1+2/lnB)
			bHH3 := bHalley*bHalley - 3*(h/s)*(h/s) - 0.25
			hh3 := bHH3 + 2*bpob*bpob*(1+3/lnB*(1+1/lnB)) - 3*bHalley*bpob*(1+2/lnB)
			return newton * householderFactor(newton, halley, hh3), true
		})
	}

	sH := sC
	if vC > dblMin {
		sH = sC + (bMax-bC)/vC
	}
	bH := normalisedBlackCall(x, sH)
	if beta <= bH {
		vH := NormalisedVega(x, sH)
		r := convexControlParameterToFitSecondDerivativeAtLeftSide(bC, bH, sC, sH, 1/vC, 1/vH, 0, false)
		s := rationalCubicInterpolation(beta, bC, bH, sC, sH, 1/vC, 1/vH, r)
		return bracketedIteration(beta, x, s, sC, sH, n, middle)
	}

	// Highest segment: f(β) ≈ Φ(-s/2) is interpolated towards b_max.
	fH, dfH, d2fH := upperMapAndDerivatives(x, sH)
	f := -dblMax
	if d2fH > -sqrtDblMax && d2fH < sqrtDblMax {
		r := convexControlParameterToFitSecondDerivativeAtLeftSide(bH, bMax, fH, 0, dfH, -0.5, d2fH, true)
		f = rationalCubicInterpolation(beta, bH, bMax, fH, 0, dfH, -0.5, r)
	}
	if f <= 0 {
		// Quadratic through f(b_h), f(b_max) = 0 and f'(b_max) = -1/2.
		h := bMax - bH
		t := (beta - bH) / h
		f = (fH*(1-t) + 0.5*h*t) * (1 - t)
	}
	s := inverseUpperMap(f)
	if beta <= 0.5*bMax {
		return bracketedIteration(beta, x, s, sH, dblMax, n, middle)
	}
	// Objective g(s) = ln((b_max-β)/(b_max-b(s))).
	return bracketedIteration(beta, x, s, sH, dblMax, n, func(b, bp, s float64) (float64, bool) {
		if b >= bMax || bp <= dblMin {
			return 0, false
		}
		bMaxMinusB := bMax - b
		g := math.Log((bMax - beta) / bMaxMinusB)
		gp := bp / bMaxMinusB
		bHalley := (x/s)*(x/s)/s - s/4
		bHH3 := bHalley*bHalley - 3*(x/(s*s))*(x/(s*s)) - 0.25
		newton := -g / gp
		halley := bHalley + gp
		hh3 := bHH3 + gp*(2*gp+3*bHalley)
		return newton * householderFactor(newton, halley, hh3), true
	})
}

func lowerMapAndDerivatives(x, s float64) (f, fp, fpp float64) {
	ax := math.Abs(x)
	z := sqrtOneOverThree * ax / s
	y := z * z
	s2 := s * s
	phiCdf := normCdf(-z)
	phiPdf := normPdf(z)
	fpp = piOverSix * y / (s2 * s) * phiCdf *
		(8*sqrtThree*s*ax + (3*s2*(s2-8)-8*x*x)*phiCdf/phiPdf) *
		math.Exp(2*y+0.25*s2)
	if isBelowHorizon(s) {
		return 0, 1, fpp
	}
	phiCdf2 := phiCdf * phiCdf
	fp = twoPi * y * phiCdf2 * math.Exp(y+0.125*s*s)
	if isBelowHorizon(x) {
		return 0, fp, fpp
	}
	return twoPiOverSqrt27 * ax * (phiCdf2 * phiCdf), fp, fpp
}

func inverseLowerMap(x, f float64) float64 {
	if isBelowHorizon(f) {
		return 0
	}
	return math.Abs(x / (sqrtThree * inverseNormCdf(math.Cbrt(f/(twoPiOverSqrt27*math.Abs(x))))))
}

func upperMapAndDerivatives(x, s float64) (f, fp, fpp float64) {
	f = normCdf(-0.5 * s)
	if isBelowHorizon(x) {
		return f, -0.5, 0
	}
	w := (x / s) * (x / s)
	return f, -0.5 * math.Exp(0.5*w), sqrtPiOverTwo * math.Exp(w+0.125*s*s) * w / s
}

func inverseUpperMap(f float64) float64 {
	return -2 * inverseNormCdf(f)
}

func isBelowHorizon(x float64) bool {
	return math.Abs(x) < dblMin
}
