// internal/service/scoring/components.go

package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/trust"
)

// scoreRatings maps the average product rating onto the 0-10 scale and
// discounts it by review volume: the deviation from the midpoint is scaled
// by min(1, log10(n+1)/3), so a perfect rating on three reviews moves the
// score far less than on three thousand.
func (s *Scorer) scoreRatings(agg brand.Aggregate) trust.ComponentScore {
	r := agg.Result(brand.SourceRatings)
	if r.Ratings == nil || r.Ratings.AverageRating <= 0 {
		return midpointComponent(trust.ComponentRatings, trust.WeightRatings, "no rating data available")
	}

	avg := r.Ratings.AverageRating
	n := r.Ratings.TotalReviews

	raw := avg / 5 * 10
	volumeFactor := math.Min(1, math.Log10(float64(n)+1)/3)
	score := trust.Midpoint + (raw-trust.Midpoint)*volumeFactor

	confidence := "low"
	switch {
	case n >= 100:
		confidence = "high"
	case n >= 10:
		confidence = "medium"
	}

	return trust.ComponentScore{
		Name:       trust.ComponentRatings,
		Score:      score,
		Weight:     trust.WeightRatings,
		Confidence: confidence,
		Justification: fmt.Sprintf("average rating %.1f/5 across %d reviews on %d products",
			avg, n, r.Ratings.Products),
	}
}

// scoreSentiment asks the model to judge the pooled review and discussion
// text. Falls back to the midpoint when no text was collected or the model
// is unavailable.
func (s *Scorer) scoreSentiment(ctx context.Context, q brand.Query, agg brand.Aggregate, warn func(string, ...any)) trust.ComponentScore {
	findings := agg.TextFindings()
	if len(findings) == 0 {
		return midpointComponent(trust.ComponentSentiment, trust.WeightSentiment, "no review text collected")
	}

	judgment, err := s.judge.Judge(ctx, trust.ComponentSentiment, sentimentPrompt(q.Brand, findings))
	if err != nil {
		log.Warn().Err(err).Msg("sentiment judgment failed, using midpoint")
		warn("review sentiment defaulted to midpoint: %v", err)
		return midpointComponent(trust.ComponentSentiment, trust.WeightSentiment, "sentiment analysis unavailable")
	}

	return trust.ComponentScore{
		Name:          trust.ComponentSentiment,
		Score:         judgment.Score,
		Weight:        trust.WeightSentiment,
		Confidence:    judgment.Confidence,
		Justification: strings.Join(judgment.KeyFactors, "; "),
	}
}

// scoreLegitimacy converts the 0-100 website rubric to the 0-10 scale
func (s *Scorer) scoreLegitimacy(agg brand.Aggregate) trust.ComponentScore {
	r := agg.Result(brand.SourceWebsite)
	if r.Site == nil {
		return midpointComponent(trust.ComponentLegitimacy, trust.WeightLegitimacy, "no website data available")
	}

	confidence := "high"
	if r.Status == brand.StatusPartial {
		confidence = "medium"
	}

	return trust.ComponentScore{
		Name:       trust.ComponentLegitimacy,
		Score:      float64(r.Site.SiteScore) / 10,
		Weight:     trust.WeightLegitimacy,
		Confidence: confidence,
		Justification: fmt.Sprintf("site scored %d/100 (%s)",
			r.Site.SiteScore, r.Site.SSLStatus),
	}
}

// scoreSocial asks the model to judge the brand's social presence from
// mention volume, engagement, and sample posts
func (s *Scorer) scoreSocial(ctx context.Context, q brand.Query, agg brand.Aggregate, warn func(string, ...any)) trust.ComponentScore {
	reddit := agg.Result(brand.SourceReddit)
	twitter := agg.Result(brand.SourceTwitter)
	if !hasSignals(reddit) && !hasSignals(twitter) {
		return midpointComponent(trust.ComponentSocial, trust.WeightSocial, "no social media data available")
	}

	judgment, err := s.judge.Judge(ctx, trust.ComponentSocial, socialPrompt(q.Brand, reddit, twitter))
	if err != nil {
		log.Warn().Err(err).Msg("social judgment failed, using midpoint")
		warn("social media presence defaulted to midpoint: %v", err)
		return midpointComponent(trust.ComponentSocial, trust.WeightSocial, "social analysis unavailable")
	}

	return trust.ComponentScore{
		Name:          trust.ComponentSocial,
		Score:         judgment.Score,
		Weight:        trust.WeightSocial,
		Confidence:    judgment.Confidence,
		Justification: strings.Join(judgment.KeyFactors, "; "),
	}
}

func hasSignals(r brand.SourceResult) bool {
	return (r.Status == brand.StatusOK || r.Status == brand.StatusPartial) && r.Social != nil
}

// Support keyword lists used by the deterministic heuristic
var (
	supportComplaints = []string{
		"no response", "never responded", "never replied", "no refund",
		"terrible customer service", "awful customer service", "ignored my",
		"impossible to reach", "scam",
	}
	supportPraise = []string{
		"great customer service", "excellent customer service", "helpful support",
		"quick response", "fast response", "quick refund", "fast refund",
		"resolved quickly", "very responsive",
	}
)

// scoreSupport applies a keyword heuristic over the website signals and the
// pooled findings. Starts at the midpoint, credits reachable support
// channels, and shifts with support mentions in the collected text.
func (s *Scorer) scoreSupport(agg brand.Aggregate) trust.ComponentScore {
	score := trust.Midpoint
	var notes []string

	if site := agg.Result(brand.SourceWebsite).Site; site != nil {
		if site.HasSupport {
			score += 1.5
			notes = append(notes, "support section on website")
		}
		if site.HasPhone || site.HasEmail {
			score += 1.0
			notes = append(notes, "direct contact channel published")
		}
	}

	var complaints, praise int
	for _, f := range agg.TextFindings() {
		text := strings.ToLower(f.Text)
		for _, kw := range supportComplaints {
			if strings.Contains(text, kw) {
				complaints++
				break
			}
		}
		for _, kw := range supportPraise {
			if strings.Contains(text, kw) {
				praise++
				break
			}
		}
	}
	score -= math.Min(2.0, float64(complaints)*0.5)
	score += math.Min(1.5, float64(praise)*0.5)

	if complaints > 0 {
		notes = append(notes, fmt.Sprintf("%d support complaints in collected text", complaints))
	}
	if praise > 0 {
		notes = append(notes, fmt.Sprintf("%d positive support mentions", praise))
	}
	if len(notes) == 0 {
		notes = append(notes, "no support signals found")
	}

	confidence := "low"
	if complaints+praise >= 3 {
		confidence = "medium"
	}

	return trust.ComponentScore{
		Name:          trust.ComponentSupport,
		Score:         score,
		Weight:        trust.WeightSupport,
		Confidence:    confidence,
		Justification: strings.Join(notes, "; "),
	}
}
