// Package repness computes representative and consensus statements from
// grouped participant votes.
//
// All routines are pure: they read vote matrices and return new values.
// Degenerate inputs (no votes, a single group, a pooled proportion of 1)
// resolve to defined numbers rather than errors.
package repness

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// Z90 is the one-sided 90% confidence threshold.
	Z90 = 1.645
	// Z95 is the threshold used for any confidence other than 0.9.
	Z95 = 1.96

	// MinVotesForDirection is the agree/disagree count below which a side
	// cannot win the direction choice in FinalizeCommentStats.
	MinVotesForDirection = 7
)

// ProportionTest is a one-sample z-like score of successes out of n
// against 50%, with +1 smoothing on both counts.
func ProportionTest(successes, n int) float64 {
	adjSucc := float64(successes + 1)
	adjN := float64(n + 1)
	return 2 * math.Sqrt(adjN) * (adjSucc/adjN - 0.5)
}

// TwoProportionTest is a two-proportion z-score of an in-group against an
// out-group, with +1 smoothing on all four inputs and a pooled-proportion
// denominator. It returns 0 when the pooled proportion is exactly 1.
func TwoProportionTest(succIn, succOut, popIn, popOut int) float64 {
	adjSuccIn := float64(succIn + 1)
	adjSuccOut := float64(succOut + 1)
	adjPopIn := float64(popIn + 1)
	adjPopOut := float64(popOut + 1)

	pi1 := adjSuccIn / adjPopIn
	pi2 := adjSuccOut / adjPopOut
	piHat := (adjSuccIn + adjSuccOut) / (adjPopIn + adjPopOut)

	if piHat == 1 {
		return 0
	}

	return (pi1 - pi2) / math.Sqrt(piHat*(1-piHat)*(1/adjPopIn+1/adjPopOut))
}

// ZSig90 reports whether z clears the one-sided 90% threshold
func ZSig90(z float64) bool {
	return z > Z90
}

// ZThreshold maps a confidence level to its z threshold: 0.9 → 1.645,
// anything else → 1.96.
func ZThreshold(confidence float64) float64 {
	if confidence == 0.9 {
		return Z90
	}
	return Z95
}

// IsSignificant reports whether |z| clears the threshold for confidence
func IsSignificant(z, confidence float64) bool {
	return math.Abs(z) > ZThreshold(confidence)
}

// OneSidedPValue is the upper-tail standard normal probability of z.
// It is reported alongside z-scores; selection never uses it.
func OneSidedPValue(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}

// smoothedProportion is (successes+1)/(n+2), strictly inside (0, 1)
func smoothedProportion(successes, n int) float64 {
	return float64(successes+1) / float64(n+2)
}
