// internal/source/serp/serp.go

// Package serp implements the ratings source on top of SerpAPI's Google
// Shopping engines: product discovery first, then per-product review pages.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/httpx"
)

// Collector wraps the SerpAPI search endpoints
type Collector struct {
	cfg    config.SerpConfig
	client *httpx.Client
}

// New creates a ratings collector
func New(cfg config.SerpConfig, client *httpx.Client) *Collector {
	return &Collector{cfg: cfg, client: client}
}

// Name returns the source identifier
func (c *Collector) Name() string { return brand.SourceRatings }

// product is one shopping result relevant to the brand
type product struct {
	Title     string          `json:"title"`
	ProductID string          `json:"product_id"`
	Rating    float64         `json:"rating"`
	Reviews   int             `json:"reviews"`
	Source    json.RawMessage `json:"source"`
}

type searchResponse struct {
	ShoppingResults []product `json:"shopping_results"`
}

type review struct {
	Date    string  `json:"date"`
	Rating  float64 `json:"rating"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
}

type productResponse struct {
	ProductResults struct {
		Title   string  `json:"title"`
		Rating  float64 `json:"rating"`
		Reviews int     `json:"reviews"`
	} `json:"product_results"`
	ReviewsResults struct {
		Reviews []review `json:"reviews"`
	} `json:"reviews_results"`
}

// Collect discovers the brand's products and gathers their ratings and
// review text
func (c *Collector) Collect(ctx context.Context, q brand.Query) brand.SourceResult {
	products, err := c.searchProducts(ctx, q.Brand)
	if err != nil {
		return brand.Failed(brand.SourceRatings, fmt.Errorf("product search: %w", err))
	}
	if len(products) == 0 {
		return brand.SourceResult{
			Source: brand.SourceRatings,
			Status: brand.StatusPartial,
			Error:  "no products matched the brand",
		}
	}

	selected := selectProducts(products, c.cfg.MaxProducts)

	var (
		findings     []brand.Finding
		ratingSum    float64
		ratedCount   int
		totalReviews int
		fetchErrs    int
	)

	for _, p := range selected {
		pr, err := c.fetchReviews(ctx, p.ProductID)
		if err != nil {
			log.Warn().Err(err).Str("product_id", p.ProductID).Msg("review fetch failed")
			fetchErrs++
			continue
		}

		if pr.ProductResults.Rating > 0 {
			ratingSum += pr.ProductResults.Rating
			ratedCount++
		}
		totalReviews += pr.ProductResults.Reviews

		for _, r := range pr.ReviewsResults.Reviews {
			text := strings.TrimSpace(r.Content)
			if len(text) <= 10 {
				continue
			}
			findings = append(findings, brand.Finding{
				Source: brand.SourceRatings,
				Title:  pr.ProductResults.Title,
				Text:   text,
				Rating: r.Rating,
			})
		}
	}

	if fetchErrs == len(selected) {
		return brand.Failed(brand.SourceRatings, fmt.Errorf("all %d review fetches failed", fetchErrs))
	}

	result := brand.SourceResult{
		Source:   brand.SourceRatings,
		Status:   brand.StatusOK,
		Findings: findings,
		Ratings: &brand.RatingsSummary{
			TotalReviews: totalReviews,
			Products:     len(selected) - fetchErrs,
		},
	}
	if ratedCount > 0 {
		result.Ratings.AverageRating = ratingSum / float64(ratedCount)
	}
	if fetchErrs > 0 {
		result.Status = brand.StatusPartial
		result.Error = fmt.Sprintf("%d of %d review fetches failed", fetchErrs, len(selected))
	}

	log.Debug().
		Int("products", len(selected)).
		Int("reviews", len(findings)).
		Float64("avg_rating", result.Ratings.AverageRating).
		Msg("ratings collection complete")

	return result
}

// searchProducts queries the shopping engine and keeps results matching the
// brand
func (c *Collector) searchProducts(ctx context.Context, brandName string) ([]product, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", brandName)
	params.Set("hl", c.cfg.Language)
	params.Set("gl", c.cfg.Country)
	params.Set("api_key", c.cfg.APIKey)

	resp, err := c.client.Get(ctx, c.cfg.BaseURL+"/search.json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding shopping results: %w", err)
	}

	var matched []product
	for _, p := range sr.ShoppingResults {
		if p.ProductID == "" {
			continue
		}
		if matchesBrand(brandName, p.Title, sourceName(p.Source)) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// fetchReviews pulls the review page for one product
func (c *Collector) fetchReviews(ctx context.Context, productID string) (*productResponse, error) {
	params := url.Values{}
	params.Set("engine", "google_product")
	params.Set("product_id", productID)
	params.Set("reviews", "1")
	params.Set("hl", c.cfg.Language)
	params.Set("gl", c.cfg.Country)
	params.Set("api_key", c.cfg.APIKey)

	resp, err := c.client.Get(ctx, c.cfg.BaseURL+"/search.json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding product results: %w", err)
	}
	return &pr, nil
}

// matchesBrand applies relaxed brand matching: the full brand name, or any
// brand word longer than two characters, in the title or seller name
func matchesBrand(brandName, title, seller string) bool {
	b := strings.ToLower(brandName)
	t := strings.ToLower(title)
	s := strings.ToLower(seller)

	if strings.Contains(t, b) || strings.Contains(s, b) {
		return true
	}
	for _, word := range strings.Fields(b) {
		if len(word) > 2 && (strings.Contains(t, word) || strings.Contains(s, word)) {
			return true
		}
	}
	return false
}

// sourceName extracts the seller name, which SerpAPI returns either as a
// plain string or as an object with a name field
func sourceName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

// selectProducts picks the best-rated and most-reviewed products, deduped,
// capped at max. Mirrors the discovery strategy of sampling both ends of
// the quality range plus the highest-volume listings.
func selectProducts(products []product, max int) []product {
	if max <= 0 {
		max = 10
	}

	byRating := make([]product, len(products))
	copy(byRating, products)
	sort.SliceStable(byRating, func(i, j int) bool {
		if byRating[i].Rating != byRating[j].Rating {
			return byRating[i].Rating > byRating[j].Rating
		}
		return byRating[i].Reviews > byRating[j].Reviews
	})

	byReviews := make([]product, len(products))
	copy(byReviews, products)
	sort.SliceStable(byReviews, func(i, j int) bool {
		return byReviews[i].Reviews > byReviews[j].Reviews
	})

	seen := make(map[string]bool)
	var selected []product
	add := func(list []product, limit int) {
		for _, p := range list {
			if len(selected) >= max || limit == 0 {
				return
			}
			if seen[p.ProductID] {
				continue
			}
			seen[p.ProductID] = true
			selected = append(selected, p)
			limit--
		}
	}

	add(byRating, (max+1)/2)
	add(byReviews, max)
	return selected
}
