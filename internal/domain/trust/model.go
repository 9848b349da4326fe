// internal/domain/trust/model.go

package trust

import "math"

// Component names, in breakdown order
const (
	ComponentRatings    = "ratings"
	ComponentSentiment  = "review_sentiment"
	ComponentLegitimacy = "business_legitimacy"
	ComponentSocial     = "social_media"
	ComponentSupport    = "customer_support"
)

// Fixed component weights. They sum to exactly 1.0 and are never
// renormalized: a component whose data source is unavailable scores the
// midpoint and keeps its weight, so missing information drags the final
// score toward the middle instead of being excluded.
const (
	WeightRatings    = 0.55
	WeightSentiment  = 0.20
	WeightLegitimacy = 0.10
	WeightSocial     = 0.10
	WeightSupport    = 0.05
)

// Midpoint is the default score for components with no usable data
const Midpoint = 5.0

// Judgment is the model's assessment of one component: a 0-10 score, a
// confidence label, and the factors that drove the score
type Judgment struct {
	Score      float64
	Confidence string
	KeyFactors []string
}

// ComponentScore is one weighted slice of the trust score
type ComponentScore struct {
	Name          string  `json:"name"`
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	Contribution  float64 `json:"contribution"`
	Confidence    string  `json:"confidence"`
	Justification string  `json:"justification"`
}

// Score is the final weighted trust judgment for one run
type Score struct {
	Components     []ComponentScore `json:"components"`
	FinalScore     float64          `json:"final_score"`
	Interpretation string           `json:"score_interpretation"`
}

// Clamp bounds a component or final score to [0,10]
func Clamp(s float64) float64 {
	return math.Min(10, math.Max(0, s))
}

// Round1 rounds to one decimal place
func Round1(s float64) float64 {
	return math.Round(s*10) / 10
}

// Interpret maps a final score to its categorical label. Lower bounds are
// inclusive: exactly 8.5 is Excellent.
func Interpret(score float64) string {
	switch {
	case score >= 8.5:
		return "Excellent - Strong buy confidence"
	case score >= 7.0:
		return "Good - Generally trustworthy"
	case score >= 5.5:
		return "Average - Proceed with research"
	case score >= 4.0:
		return "Below Average - Significant concerns"
	default:
		return "Poor - High risk, consider alternatives"
	}
}
