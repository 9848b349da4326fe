// internal/service/scoring/scorer_test.go

package scoring

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/trust"
)

// stubJudge returns fixed judgments per component, or a global error
type stubJudge struct {
	judgments map[string]trust.Judgment
	err       error
	calls     []string
}

func (j *stubJudge) Judge(ctx context.Context, component, prompt string) (trust.Judgment, error) {
	j.calls = append(j.calls, component)
	if j.err != nil {
		return trust.Judgment{}, j.err
	}
	return j.judgments[component], nil
}

func fullAggregate() brand.Aggregate {
	return brand.Aggregate{
		CollectedAt: time.Now(),
		Results: map[string]brand.SourceResult{
			brand.SourceRatings: {
				Source: brand.SourceRatings,
				Status: brand.StatusOK,
				Findings: []brand.Finding{
					{Source: brand.SourceRatings, Text: "Great quality, arrived quickly and works well."},
				},
				Ratings: &brand.RatingsSummary{AverageRating: 4.5, TotalReviews: 999, Products: 5},
			},
			brand.SourceReddit: {
				Source: brand.SourceReddit,
				Status: brand.StatusOK,
				Findings: []brand.Finding{
					{Source: brand.SourceReddit, Text: "Been using their stuff for years, solid brand."},
				},
				Social: &brand.SocialSignals{Mentions: 12, Engagement: 340},
			},
			brand.SourceTwitter: {
				Source: brand.SourceTwitter,
				Status: brand.StatusOK,
				Social: &brand.SocialSignals{Mentions: 8, Engagement: 120, Followers: 5000},
			},
			brand.SourceWebsite: {
				Source: brand.SourceWebsite,
				Status: brand.StatusOK,
				Site:   &brand.SiteSignals{CertValid: true, HTTPSEnabled: true, SiteScore: 80, SSLStatus: "valid certificate"},
			},
		},
	}
}

func TestScoreCombinesWeightedComponents(t *testing.T) {
	judge := &stubJudge{judgments: map[string]trust.Judgment{
		trust.ComponentSentiment: {Score: 8.0, Confidence: "high"},
		trust.ComponentSocial:    {Score: 6.0, Confidence: "medium"},
	}}
	scorer := New(judge)

	score, warnings := scorer.Score(context.Background(), brand.Query{Brand: "Acme"}, fullAggregate())

	require.Len(t, score.Components, 5)
	assert.Empty(t, warnings)

	var sum float64
	for _, c := range score.Components {
		assert.InDelta(t, c.Score*c.Weight, c.Contribution, 1e-9)
		sum += c.Contribution
	}
	assert.InDelta(t, sum, score.FinalScore, 0.05+1e-9)
	assert.Equal(t, trust.Interpret(score.FinalScore), score.Interpretation)

	// Both model-backed components were judged
	assert.ElementsMatch(t, []string{trust.ComponentSentiment, trust.ComponentSocial}, judge.calls)
}

func TestScoreIsDeterministicWithFrozenJudge(t *testing.T) {
	judge := &stubJudge{judgments: map[string]trust.Judgment{
		trust.ComponentSentiment: {Score: 7.2, Confidence: "high"},
		trust.ComponentSocial:    {Score: 5.1, Confidence: "low"},
	}}
	scorer := New(judge)
	agg := fullAggregate()

	first, _ := scorer.Score(context.Background(), brand.Query{Brand: "Acme"}, agg)
	second, _ := scorer.Score(context.Background(), brand.Query{Brand: "Acme"}, agg)

	assert.Equal(t, first.FinalScore, second.FinalScore)
	assert.Equal(t, first.Components, second.Components)
}

func TestJudgeFailureDefaultsModelComponentsToMidpoint(t *testing.T) {
	judge := &stubJudge{err: errors.New("API status 401: invalid key")}
	scorer := New(judge)

	score, warnings := scorer.Score(context.Background(), brand.Query{Brand: "Acme"}, fullAggregate())

	byName := componentsByName(score)
	assert.Equal(t, trust.Midpoint, byName[trust.ComponentSentiment].Score)
	assert.Equal(t, trust.Midpoint, byName[trust.ComponentSocial].Score)

	// Deterministic components are unaffected by the model outage
	assert.Greater(t, byName[trust.ComponentRatings].Score, trust.Midpoint)
	assert.InDelta(t, 8.0, byName[trust.ComponentLegitimacy].Score, 1e-9)

	require.GreaterOrEqual(t, len(warnings), 2)
}

func TestAllSourcesFailedScoresAllMidpoints(t *testing.T) {
	agg := brand.Aggregate{Results: map[string]brand.SourceResult{
		brand.SourceRatings: brand.Failed(brand.SourceRatings, errors.New("down")),
		brand.SourceReddit:  brand.Failed(brand.SourceReddit, errors.New("down")),
		brand.SourceTwitter: brand.Failed(brand.SourceTwitter, errors.New("down")),
		brand.SourceWebsite: brand.Failed(brand.SourceWebsite, errors.New("down")),
	}}
	judge := &stubJudge{}
	scorer := New(judge)

	score, warnings := scorer.Score(context.Background(), brand.Query{Brand: "Acme"}, agg)

	for _, c := range score.Components {
		assert.Equal(t, trust.Midpoint, c.Score, c.Name)
	}
	assert.Equal(t, 5.0, score.FinalScore)
	assert.Equal(t, "Average - Proceed with research", score.Interpretation)
	assert.Len(t, warnings, 4)

	// No text, no signals: the judge is never called
	assert.Empty(t, judge.calls)
}

func TestRatingsVolumeDiscount(t *testing.T) {
	scorer := New(&stubJudge{})

	withReviews := func(avg float64, n int) float64 {
		agg := brand.Aggregate{Results: map[string]brand.SourceResult{
			brand.SourceRatings: {
				Source:  brand.SourceRatings,
				Status:  brand.StatusOK,
				Ratings: &brand.RatingsSummary{AverageRating: avg, TotalReviews: n, Products: 3},
			},
		}}
		return scorer.scoreRatings(agg).Score
	}

	// Perfect rating with tiny volume stays near the midpoint
	tiny := withReviews(5.0, 2)
	large := withReviews(5.0, 10000)
	assert.Less(t, tiny, large)
	assert.Greater(t, tiny, trust.Midpoint)

	// n=999 puts log10(1000)/3 at exactly 1: no discount
	expected := trust.Midpoint + (4.5/5*10-trust.Midpoint)*math.Min(1, math.Log10(1000)/3)
	assert.InDelta(t, expected, withReviews(4.5, 999), 1e-9)

	// Bad ratings are pulled up toward the midpoint by low volume too
	badTiny := withReviews(1.0, 2)
	badLarge := withReviews(1.0, 10000)
	assert.Greater(t, badTiny, badLarge)
	assert.Less(t, badTiny, trust.Midpoint)
}

func TestSupportHeuristic(t *testing.T) {
	scorer := New(&stubJudge{})

	agg := brand.Aggregate{Results: map[string]brand.SourceResult{
		brand.SourceWebsite: {
			Source: brand.SourceWebsite,
			Status: brand.StatusOK,
			Site:   &brand.SiteSignals{HasSupport: true, HasEmail: true},
		},
		brand.SourceReddit: {
			Source: brand.SourceReddit,
			Status: brand.StatusOK,
			Findings: []brand.Finding{
				{Source: brand.SourceReddit, Text: "Contacted them twice and got no response, and no refund either."},
			},
			Social: &brand.SocialSignals{Mentions: 1},
		},
	}}

	c := scorer.scoreSupport(agg)
	// 5.0 + 1.5 (support section) + 1.0 (contact) - 0.5 (one complaint)
	assert.InDelta(t, 7.0, c.Score, 1e-9)
	assert.Equal(t, trust.WeightSupport, c.Weight)
}

func componentsByName(score trust.Score) map[string]trust.ComponentScore {
	m := make(map[string]trust.ComponentScore, len(score.Components))
	for _, c := range score.Components {
		m[c.Name] = c
	}
	return m
}
