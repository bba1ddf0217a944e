package lets_be_rational

import "math"

// Shape preserving rational cubic interpolation, after R. Delbourgo and
// J. A. Gregory, "Shape preserving piecewise rational interpolation",
// SIAM J. Sci. Stat. Comput. 6 (1985). The control parameter r > -1 tunes
// the segment between the standard cubic (r = 3) and a straight line
// (r → ∞).

func isZero(x float64) bool {
	return math.Abs(x) < dblMin
}

func rationalCubicInterpolation(x, xl, xr, yl, yr, dl, dr, r float64) float64 {
	h := xr - xl
	if math.Abs(h) <= 0 {
		return 0.5 * (yl + yr)
	}
	t := (x - xl) / h
	if !(r >= maxRationalCubicControl) {
		omt := 1 - t
		t2 := t * t
		omt2 := omt * omt
		return (yr*t2*t + (r*yr-h*dr)*t2*omt + (r*yl+h*dl)*t*omt2 + yl*omt2*omt) /
			(1 + (r-3)*t*omt)
	}
	// Linear interpolation without over- or underflow.
	return yr*t + yl*(1-t)
}

func controlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL float64) float64 {
	h := xr - xl
	numerator := 0.5*h*secondDerivativeL + (dr - dl)
	if isZero(numerator) {
		return 0
	}
	denominator := (yr-yl)/h - dl
	if isZero(denominator) {
		if numerator > 0 {
			return maxRationalCubicControl
		}
		return minRationalCubicControl
	}
	return numerator / denominator
}

func controlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR float64) float64 {
	h := xr - xl
	numerator := 0.5*h*secondDerivativeR + (dr - dl)
	if isZero(numerator) {
		return 0
	}
	denominator := dr - (yr-yl)/h
	if isZero(denominator) {
		if numerator > 0 {
			return maxRationalCubicControl
		}
		return minRationalCubicControl
	}
	return numerator / denominator
}

// minimumControlParameter returns the smallest r that keeps the segment
// monotonic and convex (or concave) whenever the end slopes dl, dr and the
// secant s allow it.
func minimumControlParameter(dl, dr, s float64, preferShapePreservation bool) float64 {
	monotonic := dl*s >= 0 && dr*s >= 0
	convex := dl <= s && s <= dr
	concave := dl >= s && s >= dr
	if !monotonic && !convex && !concave {
		return minRationalCubicControl
	}
	drMinusDl := dr - dl
	drMinusS := dr - s
	sMinusDl := s - dl
	r1 := -dblMax
	r2 := r1
	if monotonic {
		if !isZero(s) {
			r1 = (dr + dl) / s
		} else if preferShapePreservation {
			r1 = maxRationalCubicControl
		}
	}
	if convex || concave {
		if !(isZero(sMinusDl) || isZero(drMinusS)) {
			r2 = math.Max(math.Abs(drMinusDl/drMinusS), math.Abs(drMinusDl/sMinusDl))
		} else if preferShapePreservation {
			r2 = maxRationalCubicControl
		}
	} else if monotonic && preferShapePreservation {
		r2 = maxRationalCubicControl
	}
	return math.Max(minRationalCubicControl, math.Max(r1, r2))
}

func convexControlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL float64, preferShapePreservation bool) float64 {
	r := controlParameterToFitSecondDerivativeAtLeftSide(xl, xr, yl, yr, dl, dr, secondDerivativeL)
	rMin := minimumControlParameter(dl, dr, (yr-yl)/(xr-xl), preferShapePreservation)
	return math.Max(r, rMin)
}

func convexControlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR float64, preferShapePreservation bool) float64 {
	r := controlParameterToFitSecondDerivativeAtRightSide(xl, xr, yl, yr, dl, dr, secondDerivativeR)
	rMin := minimumControlParameter(dl, dr, (yr-yl)/(xr-xl), preferShapePreservation)
	return math.Max(r, rMin)
}
