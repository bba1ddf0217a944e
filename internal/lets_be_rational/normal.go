package lets_be_rational

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

func normCdf(z float64) float64 {
	return distuv.UnitNormal.CDF(z)
}

func normPdf(z float64) float64 {
	return oneOverSqrtTwoPi * math.Exp(-0.5*z*z)
}

// inverseNormCdf clamps p into [0, 1] first; roundoff in the transformed
// maps can push it a few ulps outside and distuv panics on that.
func inverseNormCdf(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	return distuv.UnitNormal.Quantile(p)
}
