// internal/service/report/builder.go

// Package report assembles the final analysis report and writes it to disk
// as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/report"
	"brandtrust/internal/domain/trust"
)

// Thresholds for calling out components in the report narrative
const (
	strengthThreshold = 7.5
	concernThreshold  = 5.5
)

// Builder assembles and persists analysis reports
type Builder struct {
	cfg config.ReportConfig
}

// New creates a report builder
func New(cfg config.ReportConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build assembles the report for one completed run
func (b *Builder) Build(id string, q brand.Query, agg brand.Aggregate, score trust.Score, warnings []string) report.Report {
	sources := make(map[string]report.SourceSummary, len(brand.Sources()))
	for _, source := range brand.Sources() {
		r := agg.Result(source)
		sources[source] = report.SourceSummary{
			Status:   r.Status,
			Findings: len(r.Findings),
		}
	}

	return report.Report{
		ID:             id,
		Query:          q,
		Aggregate:      agg,
		Trust:          score,
		KeyStrengths:   strengths(score),
		AreasOfConcern: concerns(score, agg),
		Sources:        sources,
		Warnings:       warnings,
		GeneratedAt:    time.Now().UTC(),
	}
}

// Write persists the report as pretty-printed JSON in the output directory.
// A write failure is fatal to the run: a report that cannot be persisted is
// a failed analysis.
func (b *Builder) Write(r report.Report) (string, error) {
	path := filepath.Join(b.cfg.OutputDir, Filename(r.Query.Brand))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	log.Info().Str("path", path).Str("brand", r.Query.Brand).Msg("report written")
	return path, nil
}

// Filename derives the report file name from the brand: lowercased, spaces
// replaced with underscores
func Filename(brandName string) string {
	name := strings.ToLower(strings.TrimSpace(brandName))
	name = strings.ReplaceAll(name, " ", "_")
	return name + "_analysis.json"
}

// strengths lists the components that scored at or above the strength
// threshold
func strengths(score trust.Score) []string {
	out := []string{}
	for _, c := range score.Components {
		if c.Score >= strengthThreshold {
			out = append(out, fmt.Sprintf("%s scored %.1f/10: %s", c.Name, c.Score, c.Justification))
		}
	}
	return out
}

// concerns lists the components below the concern threshold plus any failed
// sources
func concerns(score trust.Score, agg brand.Aggregate) []string {
	out := []string{}
	for _, c := range score.Components {
		if c.Score < concernThreshold {
			out = append(out, fmt.Sprintf("%s scored %.1f/10: %s", c.Name, c.Score, c.Justification))
		}
	}
	for _, source := range brand.Sources() {
		if r := agg.Result(source); r.Status == brand.StatusFailed {
			out = append(out, fmt.Sprintf("%s data could not be collected: %s", source, r.Error))
		}
	}
	return out
}
