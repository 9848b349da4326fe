// internal/domain/report/model.go

package report

import (
	"time"

	"brandtrust/internal/domain/brand"
	"brandtrust/internal/domain/trust"
)

// SourceSummary counts what each source contributed to the run
type SourceSummary struct {
	Status   brand.Status `json:"status"`
	Findings int          `json:"findings"`
}

// Summary is the archive listing view of a report
type Summary struct {
	ID             string    `json:"id"`
	Brand          string    `json:"brand"`
	FinalScore     float64   `json:"final_score"`
	Interpretation string    `json:"score_interpretation"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// Report is the terminal artifact of one analysis run. Write-once.
type Report struct {
	ID             string                   `json:"id"`
	Query          brand.Query              `json:"query"`
	Aggregate      brand.Aggregate          `json:"aggregate"`
	Trust          trust.Score              `json:"trust_score"`
	KeyStrengths   []string                 `json:"key_strengths"`
	AreasOfConcern []string                 `json:"areas_of_concern"`
	Sources        map[string]SourceSummary `json:"data_sources_analyzed"`
	Warnings       []string                 `json:"warnings"`
	GeneratedAt    time.Time                `json:"generated_at"`
}
