// internal/service/scoring/scorer.go

// Package scoring turns the collected source signals into the weighted
// trust score. Three components are computed deterministically from the
// collected data; review sentiment and social media presence are judged by
// the language model and fall back to the midpoint when judging fails.
package scoring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/trust"
)

// Judge scores one component from a prompt
type Judge interface {
	Judge(ctx context.Context, component, prompt string) (trust.Judgment, error)
}

// Scorer computes the weighted trust score for one run
type Scorer struct {
	judge Judge
}

// New creates a scorer backed by the given judge
func New(judge Judge) *Scorer {
	return &Scorer{judge: judge}
}

// Score evaluates every component and combines them under the fixed
// weights. It always returns a complete score; degraded components are
// reported through the warnings list.
func (s *Scorer) Score(ctx context.Context, q brand.Query, agg brand.Aggregate) (trust.Score, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	components := []trust.ComponentScore{
		s.scoreRatings(agg),
		s.scoreSentiment(ctx, q, agg, warn),
		s.scoreLegitimacy(agg),
		s.scoreSocial(ctx, q, agg, warn),
		s.scoreSupport(agg),
	}

	var final float64
	for i := range components {
		components[i].Score = trust.Clamp(components[i].Score)
		components[i].Contribution = components[i].Score * components[i].Weight
		final += components[i].Contribution
	}
	final = trust.Round1(trust.Clamp(final))

	for _, source := range brand.Sources() {
		if r := agg.Result(source); r.Status == brand.StatusFailed {
			warn("%s source failed: %s", source, r.Error)
		}
	}

	log.Info().
		Float64("final_score", final).
		Int("warnings", len(warnings)).
		Msg("trust score computed")

	return trust.Score{
		Components:     components,
		FinalScore:     final,
		Interpretation: trust.Interpret(final),
	}, warnings
}

// midpointComponent builds a component stuck at the neutral default. The
// component keeps its full weight so missing data pulls the final score
// toward the middle instead of inflating the rest.
func midpointComponent(name string, weight float64, reason string) trust.ComponentScore {
	return trust.ComponentScore{
		Name:          name,
		Score:         trust.Midpoint,
		Weight:        weight,
		Confidence:    "low",
		Justification: reason,
	}
}
