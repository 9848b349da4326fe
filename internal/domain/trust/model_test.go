// internal/domain/trust/model_test.go

package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := WeightRatings + WeightSentiment + WeightLegitimacy + WeightSocial + WeightSupport
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1.2))
	assert.Equal(t, 10.0, Clamp(11.7))
	assert.Equal(t, 6.3, Clamp(6.3))
	assert.Equal(t, 0.0, Clamp(0))
	assert.Equal(t, 10.0, Clamp(10))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 7.3, Round1(7.25))
	assert.Equal(t, 7.2, Round1(7.24))
	assert.Equal(t, 5.0, Round1(5.0))
}

func TestInterpretBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{10.0, "Excellent - Strong buy confidence"},
		{8.5, "Excellent - Strong buy confidence"},
		{8.4, "Good - Generally trustworthy"},
		{7.0, "Good - Generally trustworthy"},
		{6.9, "Average - Proceed with research"},
		{5.5, "Average - Proceed with research"},
		{5.4, "Below Average - Significant concerns"},
		{4.0, "Below Average - Significant concerns"},
		{3.9, "Poor - High risk, consider alternatives"},
		{0.0, "Poor - High risk, consider alternatives"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Interpret(tc.score), "score %.1f", tc.score)
	}
}
