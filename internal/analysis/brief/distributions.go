package brief

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StatisticalDistributions provides unified access to the reference distributions
// used by the contingency tests.
type StatisticalDistributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *StatisticalDistributions {
	return &StatisticalDistributions{}
}

// ChiSquarePValue returns P(X > chiSquare) for X ~ χ²(degreesOfFreedom).
// The survival function is used directly so that tiny p-values keep their precision.
func (sd *StatisticalDistributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return math.NaN()
	}
	if chiSquare <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	p := chiDist.Survival(chiSquare)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// ChiSquareCritical returns the statistic a test with the given dof must exceed to reach alpha.
func (sd *StatisticalDistributions) ChiSquareCritical(alpha float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || alpha <= 0 || alpha >= 1 {
		return math.NaN()
	}
	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return chiDist.Quantile(1 - alpha)
}
