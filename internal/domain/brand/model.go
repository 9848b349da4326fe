// internal/domain/brand/model.go

package brand

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status describes the outcome of one source collection
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Known source identifiers, in report order
const (
	SourceRatings = "ratings"
	SourceReddit  = "reddit"
	SourceTwitter = "twitter"
	SourceWebsite = "website"
)

// Sources returns the known source identifiers in deterministic order
func Sources() []string {
	return []string{SourceRatings, SourceReddit, SourceTwitter, SourceWebsite}
}

// Query is the immutable input to one analysis run
type Query struct {
	Brand   string `json:"brand"`
	Handle  string `json:"handle,omitempty"`
	Website string `json:"website,omitempty"`
}

// Validate checks that the query can start a run
func (q Query) Validate() error {
	if strings.TrimSpace(q.Brand) == "" {
		return fmt.Errorf("brand name is required")
	}
	return nil
}

// Finding is one normalized text snippet collected from a source
type Finding struct {
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Rating float64 `json:"rating,omitempty"`
}

// RatingsSummary holds the numeric signals from the ratings source
type RatingsSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	Products      int     `json:"products_analyzed"`
}

// SiteSignals holds the website legitimacy indicators
type SiteSignals struct {
	HTTPSEnabled   bool   `json:"https_enabled"`
	CertValid      bool   `json:"certificate_valid"`
	SSLStatus      string `json:"ssl_status"`
	HasPhone       bool   `json:"has_phone"`
	HasEmail       bool   `json:"has_email"`
	HasAddress     bool   `json:"has_address"`
	HasAbout       bool   `json:"has_about"`
	HasPrivacy     bool   `json:"has_privacy_policy"`
	HasTerms       bool   `json:"has_terms"`
	HasSupport     bool   `json:"has_support"`
	HasSocialLinks bool   `json:"has_social_links"`
	ContentLength  int    `json:"content_length"`
	SiteScore      int    `json:"site_score"`
}

// SocialSignals holds the numeric signals from mention sources
type SocialSignals struct {
	Mentions   int `json:"mentions"`
	Engagement int `json:"engagement"`
	Followers  int `json:"followers,omitempty"`
}

// SourceResult is the normalized output of one collector. It is created by
// the collector and never mutated after return.
type SourceResult struct {
	Source   string          `json:"source"`
	Status   Status          `json:"status"`
	Findings []Finding       `json:"findings,omitempty"`
	Ratings  *RatingsSummary `json:"ratings,omitempty"`
	Site     *SiteSignals    `json:"site,omitempty"`
	Social   *SocialSignals  `json:"social,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Skipped builds a result for a source whose optional input or credentials
// are absent. Not an error state.
func Skipped(source, reason string) SourceResult {
	return SourceResult{Source: source, Status: StatusSkipped, Error: reason}
}

// Failed builds a result for a source whose collection could not complete
func Failed(source string, err error) SourceResult {
	return SourceResult{Source: source, Status: StatusFailed, Error: err.Error()}
}

// Aggregate maps every known source to its result for one run
type Aggregate struct {
	Results     map[string]SourceResult `json:"results"`
	CollectedAt time.Time               `json:"collected_at"`
}

// Result returns the entry for a source, or a failed placeholder if the
// aggregate is somehow missing one. The orchestrator guarantees one entry
// per known source.
func (a Aggregate) Result(source string) SourceResult {
	if r, ok := a.Results[source]; ok {
		return r
	}
	return SourceResult{Source: source, Status: StatusFailed, Error: "no result recorded"}
}

// TextFindings pools the findings of every source that returned text,
// in source order
func (a Aggregate) TextFindings() []Finding {
	var findings []Finding
	for _, source := range Sources() {
		r := a.Result(source)
		if r.Status == StatusOK || r.Status == StatusPartial {
			findings = append(findings, r.Findings...)
		}
	}
	return findings
}

// Collector is one registered source of brand signals. Implementations must
// recover from their own failures: an unreachable upstream is reported as a
// failed result, never as a panic or propagated error.
type Collector interface {
	// Name returns the source identifier
	Name() string

	// Collect gathers signals for the query. The passed context carries the
	// per-collector timeout.
	Collect(ctx context.Context, q Query) SourceResult
}
