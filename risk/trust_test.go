package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equiptrack/risk"
)

func TestWarningThresholdEscalation(t *testing.T) {
	cases := []struct {
		suspensions int
		want        int
	}{
		{0, 3},
		{1, 5},
		{2, 6},
		{3, 7},
		{4, 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, risk.WarningThreshold(tc.suspensions),
			"suspensions=%d", tc.suspensions)
	}
}

func TestWarningThresholdMonotonicAfterFirst(t *testing.T) {
	prev := risk.WarningThreshold(1)
	for n := 2; n <= 20; n++ {
		cur := risk.WarningThreshold(n)
		assert.Equal(t, prev+1, cur, "suspensions=%d", n)
		prev = cur
	}
}

func TestTrustScore(t *testing.T) {
	assert.Equal(t, 100, risk.TrustScore(0))
	assert.Equal(t, 80, risk.TrustScore(1))
	assert.Equal(t, 40, risk.TrustScore(3))
	assert.Equal(t, 0, risk.TrustScore(5))
	assert.Equal(t, 0, risk.TrustScore(50))
	assert.Equal(t, 100, risk.TrustScore(-1), "negative counters clamp to the base score")
}

func TestTrustScoreBoundsAndMonotonicity(t *testing.T) {
	prev := risk.TrustScore(0)
	for n := 1; n <= 30; n++ {
		cur := risk.TrustScore(n)
		assert.LessOrEqual(t, cur, prev, "score must never rise with more late returns")
		assert.GreaterOrEqual(t, cur, 0)
		assert.LessOrEqual(t, cur, 100)
		prev = cur
	}
}
