// internal/service/analysis/analyzer_test.go

package analysis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/trust"
	"brandtrust/internal/service/collect"
	reportsvc "brandtrust/internal/service/report"
	"brandtrust/internal/service/scoring"
)

// staticCollector returns a fixed result
type staticCollector struct {
	source string
	result brand.SourceResult
}

func (s *staticCollector) Name() string { return s.source }

func (s *staticCollector) Collect(ctx context.Context, q brand.Query) brand.SourceResult {
	return s.result
}

// midJudge always answers with a neutral judgment
type midJudge struct{}

func (midJudge) Judge(ctx context.Context, component, prompt string) (trust.Judgment, error) {
	return trust.Judgment{Score: 6.0, Confidence: "medium"}, nil
}

func testAnalyzer(t *testing.T, collectors ...brand.Collector) *Analyzer {
	t.Helper()
	orchestrator := collect.New(config.CollectConfig{SourceTimeout: time.Second}, collectors...)
	scorer := scoring.New(midJudge{})
	builder := reportsvc.New(config.ReportConfig{OutputDir: t.TempDir()})
	return New(orchestrator, scorer, builder, nil, nil)
}

func TestAnalyzeProducesReport(t *testing.T) {
	analyzer := testAnalyzer(t,
		&staticCollector{source: brand.SourceRatings, result: brand.SourceResult{
			Source:  brand.SourceRatings,
			Status:  brand.StatusOK,
			Ratings: &brand.RatingsSummary{AverageRating: 4.0, TotalReviews: 500, Products: 4},
			Findings: []brand.Finding{
				{Source: brand.SourceRatings, Text: "works as advertised, would buy again"},
			},
		}},
	)

	rep, path, err := analyzer.Analyze(context.Background(), brand.Query{Brand: "Acme"})
	require.NoError(t, err)

	assert.NotEmpty(t, rep.ID)
	assert.Len(t, rep.Trust.Components, 5)
	assert.Greater(t, rep.Trust.FinalScore, 0.0)
	assert.FileExists(t, path)

	run, ok := analyzer.GetRun(rep.ID)
	require.True(t, ok)
	assert.Equal(t, StateCompleted, run.State)
	assert.Equal(t, path, run.ReportPath)
	require.NotNil(t, run.FinishedAt)
}

func TestAnalyzeRejectsEmptyBrand(t *testing.T) {
	analyzer := testAnalyzer(t)

	_, _, err := analyzer.Analyze(context.Background(), brand.Query{})
	assert.Error(t, err)
}

func TestAnalyzeReportsWhenEverySourceFails(t *testing.T) {
	var collectors []brand.Collector
	for _, source := range brand.Sources() {
		collectors = append(collectors, &staticCollector{
			source: source,
			result: brand.Failed(source, errors.New("upstream down")),
		})
	}
	analyzer := testAnalyzer(t, collectors...)

	rep, path, err := analyzer.Analyze(context.Background(), brand.Query{Brand: "Acme"})
	require.NoError(t, err)
	assert.FileExists(t, path)

	// Every component defaults to the midpoint under its full weight
	assert.Equal(t, 5.0, rep.Trust.FinalScore)
	assert.Equal(t, "Average - Proceed with research", rep.Trust.Interpretation)
	for _, c := range rep.Trust.Components {
		assert.Equal(t, trust.Midpoint, c.Score)
	}

	// The failures are enumerated, not swallowed
	require.Len(t, rep.Warnings, 4)
	for _, w := range rep.Warnings {
		assert.Contains(t, w, "source failed")
	}
	// Five midpoint components plus four failed sources
	assert.Len(t, rep.AreasOfConcern, 9)

	runs := analyzer.ListRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, StateCompleted, runs[0].State)
}

func TestAnalyzeScoresWhenAllSourcesSkipped(t *testing.T) {
	var collectors []brand.Collector
	for _, source := range brand.Sources() {
		collectors = append(collectors, &staticCollector{
			source: source,
			result: brand.Skipped(source, "not configured"),
		})
	}
	analyzer := testAnalyzer(t, collectors...)

	rep, path, err := analyzer.Analyze(context.Background(), brand.Query{Brand: "Acme"})
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Equal(t, 5.0, rep.Trust.FinalScore)
	assert.Equal(t, "Average - Proceed with research", rep.Trust.Interpretation)
}

func TestStartRunsInBackground(t *testing.T) {
	analyzer := testAnalyzer(t,
		&staticCollector{source: brand.SourceRatings, result: brand.SourceResult{
			Source: brand.SourceRatings,
			Status: brand.StatusOK,
		}},
	)

	id, err := analyzer.Start(brand.Query{Brand: "Acme"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		run, ok := analyzer.GetRun(id)
		return ok && (run.State == StateCompleted || run.State == StateFailed)
	}, 5*time.Second, 10*time.Millisecond)

	run, _ := analyzer.GetRun(id)
	assert.Equal(t, StateCompleted, run.State)
	require.NotNil(t, run.Report)
}
