// internal/service/report/builder_test.go

package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	domainreport "brandtrust/internal/domain/report"
	"brandtrust/internal/domain/trust"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "acme_analysis.json", Filename("Acme"))
	assert.Equal(t, "acme_rocket_skates_analysis.json", Filename("Acme Rocket Skates"))
	assert.Equal(t, "acme_analysis.json", Filename("  ACME  "))
}

func sampleScore() trust.Score {
	return trust.Score{
		Components: []trust.ComponentScore{
			{Name: trust.ComponentRatings, Score: 9.0, Weight: 0.55, Contribution: 4.95, Justification: "strong ratings"},
			{Name: trust.ComponentSentiment, Score: 7.5, Weight: 0.20, Contribution: 1.5, Justification: "mostly positive"},
			{Name: trust.ComponentLegitimacy, Score: 6.0, Weight: 0.10, Contribution: 0.6, Justification: "site ok"},
			{Name: trust.ComponentSocial, Score: 4.0, Weight: 0.10, Contribution: 0.4, Justification: "little presence"},
			{Name: trust.ComponentSupport, Score: 5.0, Weight: 0.05, Contribution: 0.25, Justification: "no signals"},
		},
		FinalScore:     7.7,
		Interpretation: trust.Interpret(7.7),
	}
}

func sampleAggregate() brand.Aggregate {
	return brand.Aggregate{
		CollectedAt: time.Now(),
		Results: map[string]brand.SourceResult{
			brand.SourceRatings: {Source: brand.SourceRatings, Status: brand.StatusOK,
				Findings: []brand.Finding{{Source: brand.SourceRatings, Text: "a fine product overall"}}},
			brand.SourceReddit:  {Source: brand.SourceReddit, Status: brand.StatusSkipped, Error: "not configured"},
			brand.SourceTwitter: brand.Failed(brand.SourceTwitter, errors.New("search failed")),
			brand.SourceWebsite: {Source: brand.SourceWebsite, Status: brand.StatusOK},
		},
	}
}

func TestBuildSelectsStrengthsAndConcerns(t *testing.T) {
	b := New(config.ReportConfig{OutputDir: t.TempDir()})

	rep := b.Build("run-1", brand.Query{Brand: "Acme"}, sampleAggregate(), sampleScore(), []string{"a warning"})

	assert.Equal(t, "run-1", rep.ID)

	// Strengths: components at or above 7.5
	require.Len(t, rep.KeyStrengths, 2)
	assert.Contains(t, rep.KeyStrengths[0], trust.ComponentRatings)
	assert.Contains(t, rep.KeyStrengths[1], trust.ComponentSentiment)

	// Concerns: components below 5.5 plus the failed source
	require.Len(t, rep.AreasOfConcern, 3)
	assert.Contains(t, rep.AreasOfConcern[0], trust.ComponentSocial)
	assert.Contains(t, rep.AreasOfConcern[1], trust.ComponentSupport)
	assert.Contains(t, rep.AreasOfConcern[2], "twitter")

	require.Len(t, rep.Sources, 4)
	assert.Equal(t, brand.StatusSkipped, rep.Sources[brand.SourceReddit].Status)
	assert.Equal(t, 1, rep.Sources[brand.SourceRatings].Findings)
	assert.Equal(t, []string{"a warning"}, rep.Warnings)
	assert.False(t, rep.GeneratedAt.IsZero())
}

func TestBoundaryScoresAreNeitherStrengthNorConcern(t *testing.T) {
	score := trust.Score{Components: []trust.ComponentScore{
		{Name: trust.ComponentRatings, Score: 7.4},
		{Name: trust.ComponentSentiment, Score: 5.5},
	}}

	okAgg := brand.Aggregate{Results: map[string]brand.SourceResult{
		brand.SourceRatings: {Source: brand.SourceRatings, Status: brand.StatusOK},
		brand.SourceReddit:  {Source: brand.SourceReddit, Status: brand.StatusOK},
		brand.SourceTwitter: {Source: brand.SourceTwitter, Status: brand.StatusOK},
		brand.SourceWebsite: {Source: brand.SourceWebsite, Status: brand.StatusOK},
	}}

	assert.Empty(t, strengths(score))
	assert.Empty(t, concerns(score, okAgg))
}

func TestWriteProducesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.ReportConfig{OutputDir: dir})

	rep := b.Build("run-2", brand.Query{Brand: "Acme Rocket Skates"}, sampleAggregate(), sampleScore(), nil)

	path, err := b.Write(rep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme_rocket_skates_analysis.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded domainreport.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-2", decoded.ID)
	assert.Equal(t, 7.7, decoded.Trust.FinalScore)
}

func TestWriteFailureIsSurfaced(t *testing.T) {
	b := New(config.ReportConfig{OutputDir: filepath.Join(t.TempDir(), "missing", "nested")})

	_, err := b.Write(b.Build("run-3", brand.Query{Brand: "Acme"}, sampleAggregate(), sampleScore(), nil))
	assert.Error(t, err)
}
