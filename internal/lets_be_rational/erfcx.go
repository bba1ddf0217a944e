package lets_be_rational

import "math"

// Rational approximation coefficients from W. J. Cody, "Rational Chebyshev
// approximations for the error function", Math. Comp. 23 (1969).
var (
	erfA = [5]float64{
		3.1611237438705656, 113.864154151050156, 377.485237685302021,
		3209.37758913846947, 0.185777706184603153,
	}
	erfB = [4]float64{
		23.6012909523441209, 244.024637934444173, 1282.61652607737228,
		2844.23683343917062,
	}
	erfC = [9]float64{
		0.564188496988670089, 8.88314979438837594, 66.1191906371416295,
		298.635138197400131, 881.95222124176909, 1712.04761263407058,
		2051.07837782607147, 1230.33935479799725, 2.15311535474403846e-8,
	}
	erfD = [8]float64{
		15.7449261107098347, 117.693950891312499, 537.181101862009858,
		1621.38957456669019, 3290.79923573345963, 4362.61909014324716,
		3439.36767414372164, 1230.33935480374942,
	}
	erfP = [6]float64{
		0.305326634961232344, 0.360344899949804439, 0.125781726111229246,
		0.0160837851487422766, 6.58749161529837803e-4, 0.0163153871373020978,
	}
	erfQ = [5]float64{
		2.56852019228982242, 1.87295284992346725, 0.527905102951428412,
		0.0605183413124413191, 0.00233520497626869185,
	}
)

const (
	erfThreshold = 0.46875
	erfXSmall    = 1.11e-16
	erfXNeg      = -26.628
	erfXHuge     = 6.71e7
)

// Erfcx returns the scaled complementary error function exp(x²)·erfc(x).
//
// For large positive x the product is formed without ever computing
// erfc(x) itself, so the result stays accurate long after erfc underflows.
// For x below -26.628 the true value overflows and MaxFloat64 is returned.
func Erfcx(x float64) float64 {
	y := math.Abs(x)
	var result float64
	switch {
	case y <= erfThreshold:
		ysq := 0.0
		if y > erfXSmall {
			ysq = y * y
		}
		xnum := erfA[4] * ysq
		xden := ysq
		for i := 0; i < 3; i++ {
			xnum = (xnum + erfA[i]) * ysq
			xden = (xden + erfB[i]) * ysq
		}
		return math.Exp(ysq) * (1 - x*(xnum+erfA[3])/(xden+erfB[3]))
	case y <= 4:
		xnum := erfC[8] * y
		xden := y
		for i := 0; i < 7; i++ {
			xnum = (xnum + erfC[i]) * y
			xden = (xden + erfD[i]) * y
		}
		result = (xnum + erfC[7]) / (xden + erfD[7])
	case y >= erfXHuge:
		result = oneOverSqrtPi / y
	default:
		ysq := 1 / (y * y)
		xnum := erfP[5] * ysq
		xden := ysq
		for i := 0; i < 4; i++ {
			xnum = (xnum + erfP[i]) * ysq
			xden = (xden + erfQ[i]) * ysq
		}
		result = ysq * (xnum + erfP[4]) / (xden + erfQ[4])
		result = (oneOverSqrtPi - result) / y
	}
	if x < 0 {
		if x < erfXNeg {
			return dblMax
		}
		// exp(x²) is split as exp(a²)·exp((x-a)(x+a)) with a = trunc(16x)/16
		// so that x² never loses its low-order bits.
		a := math.Trunc(x*16) / 16
		del := (x - a) * (x + a)
		e := math.Exp(a*a) * math.Exp(del)
		result = (e + e) - result
	}
	return result
}
