// Package risk computes student trust scores, warning thresholds and
// the current at-risk list.
package risk

// TrustPenaltyPerLate is deducted from the base score of 100 for every
// cumulative late return.
const TrustPenaltyPerLate = 20

// TrustScore derives the 0-100 trust score from the lifetime
// late-return counter.
func TrustScore(totalLateReturns int) int {
	if totalLateReturns < 0 {
		totalLateReturns = 0
	}
	score := 100 - TrustPenaltyPerLate*totalLateReturns
	if score < 0 {
		return 0
	}
	return score
}

// WarningThreshold is the number of late returns since the last
// suspension that triggers the next at-risk alert. Each completed
// suspension raises the bar: 3, then 5, 6, 7, ...
func WarningThreshold(totalSuspensions int) int {
	if totalSuspensions <= 0 {
		return 3
	}
	return totalSuspensions + 4
}
