package lets_be_rational

import "math"

const (
	dblEpsilon = 2.220446049250313e-16
	dblMin     = 2.2250738585072014e-308
	dblMax     = math.MaxFloat64

	oneOverSqrtTwo    = 0.7071067811865475244008443621048490392848359376887
	oneOverSqrtTwoPi  = 0.3989422804014326779399460599343818684758586311649
	sqrtTwoPi         = 2.506628274631000502415765284811045253006986740610
	twoPi             = 6.283185307179586476925286766559005768394338798750
	sqrtPiOverTwo     = 1.253314137315500251207882642405522626503493370305
	sqrtThree         = 1.732050807568877293527446341505872366942805253810
	sqrtOneOverThree  = 0.577350269189625764509148780501957455647601751270
	twoPiOverSqrt27   = 1.209199576156145233729385505094770488189377498728
	piOverSix         = 0.523598775598298873077107230546583814032861566563
	oneOverSqrtPi     = 0.564189583547756286948079451560772585844050629329
	fourthRootEpsilon = 1.220703125e-4
)

const (
	sqrtDblEpsilon   = 1.4901161193847656e-08
	sqrtDblMin       = 1.4916681462400413e-154
	sqrtDblMax       = 1.3407807929942596e+154
	sixteenthRootEps = 0.10511205190671431

	// SmallTExpansionThreshold is the half total standard deviation s/2
	// below which the normalised Black function switches to its small-t
	// expansion.
	SmallTExpansionThreshold = 2 * sixteenthRootEps
)

const (
	// asymptoticExpansionThreshold bounds h = x/s below which the tail
	// expansion of the normalised Black function is used.
	asymptoticExpansionThreshold = -10.0

	// asymptoticExpansionTerms keeps the truncation error of the tail
	// expansion below a few ulps for h < -10.
	asymptoticExpansionTerms = 18

	minRationalCubicControl = -(1 - sqrtDblEpsilon)
	maxRationalCubicControl = 2 / (dblEpsilon * dblEpsilon)
)
