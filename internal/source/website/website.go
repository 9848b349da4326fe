// internal/source/website/website.go

// Package website implements the site trust source. It probes the brand's
// website over HTTPS, extracts contact and policy signals from the page
// content, and scores the site on a 0-100 legitimacy rubric.
package website

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/httpx"
)

// maxContentBytes caps how much of a page body is read for inspection
const maxContentBytes = 2 << 20

// Collector probes the brand website directly and, when configured, through
// the Firecrawl scrape API
type Collector struct {
	cfg    config.WebsiteConfig
	client *httpx.Client

	// probe is used for the TLS check so certificate failures surface as
	// errors instead of being retried
	probe *http.Client
}

// New creates a website trust collector
func New(cfg config.WebsiteConfig, client *httpx.Client) *Collector {
	return &Collector{
		cfg:    cfg,
		client: client,
		probe: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
	}
}

// Name returns the source identifier
func (c *Collector) Name() string { return brand.SourceWebsite }

// Collect checks transport security, fetches the page content, and derives
// the legitimacy signals
func (c *Collector) Collect(ctx context.Context, q brand.Query) brand.SourceResult {
	if strings.TrimSpace(q.Website) == "" {
		return brand.Skipped(brand.SourceWebsite, "no website provided")
	}

	site := normalizeURL(q.Website)
	sig := &brand.SiteSignals{}

	body, reachable := c.checkTransport(ctx, site, sig)
	if !reachable {
		return brand.Failed(brand.SourceWebsite, fmt.Errorf("website unreachable: %s", site))
	}

	content, contentErr := c.fetchContent(ctx, site, body)
	if contentErr != nil {
		log.Warn().Err(contentErr).Str("url", site).Msg("website content fetch failed")
	}

	if content != "" {
		inspectContent(content, sig)
	}
	sig.SiteScore = siteScore(*sig)

	var findings []brand.Finding
	if content != "" {
		findings = append(findings, brand.Finding{
			Source: brand.SourceWebsite,
			Title:  "website content sample",
			Text:   sample(content, 1500),
		})
	}
	findings = append(findings, brand.Finding{
		Source: brand.SourceWebsite,
		Title:  "site trust indicators",
		Text:   describeSignals(*sig),
	})

	log.Debug().
		Str("url", site).
		Int("site_score", sig.SiteScore).
		Bool("cert_valid", sig.CertValid).
		Msg("website collection complete")

	result := brand.SourceResult{
		Source:   brand.SourceWebsite,
		Status:   brand.StatusOK,
		Findings: findings,
		Site:     sig,
	}
	if contentErr != nil {
		result.Status = brand.StatusPartial
		result.Error = fmt.Sprintf("content fetch failed, transport check only: %v", contentErr)
	}
	return result
}

// checkTransport classifies the site's transport security. It returns the
// HTTPS body when the first probe succeeded, avoiding a second fetch, and
// whether the site was reachable at all.
func (c *Collector) checkTransport(ctx context.Context, site string, sig *brand.SiteSignals) (string, bool) {
	httpsURL := "https://" + hostPath(site)

	body, err := c.fetchDirect(ctx, httpsURL)
	if err == nil {
		sig.HTTPSEnabled = true
		sig.CertValid = true
		sig.SSLStatus = "valid certificate"
		return body, true
	}

	if isCertError(err) {
		sig.HTTPSEnabled = true
		sig.SSLStatus = "certificate verification failed"
		return "", true
	}

	httpURL := "http://" + hostPath(site)
	if _, err := c.fetchDirect(ctx, httpURL); err == nil {
		sig.SSLStatus = "no HTTPS, HTTP only"
		return "", true
	}

	sig.SSLStatus = "unreachable"
	return "", false
}

// fetchContent returns page text for signal extraction: the already-fetched
// HTTPS body when available, otherwise Firecrawl when configured, otherwise
// a direct fetch of the normalized URL
func (c *Collector) fetchContent(ctx context.Context, site, probeBody string) (string, error) {
	if probeBody != "" {
		return parseHTML(probeBody)
	}

	if c.cfg.FirecrawlKey != "" {
		content, err := c.fetchFirecrawl(ctx, site)
		if err == nil {
			return content, nil
		}
		log.Warn().Err(err).Msg("firecrawl scrape failed, falling back to direct fetch")
	}

	body, err := c.fetchDirect(ctx, site)
	if err != nil {
		return "", err
	}
	return parseHTML(body)
}

// fetchFirecrawl scrapes the page through the Firecrawl API, which renders
// JavaScript-heavy storefronts a plain GET cannot read
func (c *Collector) fetchFirecrawl(ctx context.Context, site string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"url":     site,
		"formats": []string{"markdown"},
	})
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.FirecrawlURL+"/v1/scrape", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.FirecrawlKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("firecrawl returned status %d", resp.StatusCode)
	}

	var fr struct {
		Success bool `json:"success"`
		Data    struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return "", fmt.Errorf("decoding firecrawl response: %w", err)
	}
	if !fr.Success || fr.Data.Markdown == "" {
		return "", fmt.Errorf("firecrawl returned no content")
	}
	return fr.Data.Markdown, nil
}

// fetchDirect issues a plain GET and returns the raw body
func (c *Collector) fetchDirect(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; brandtrust/1.0)")

	resp, err := c.probe.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("site returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseHTML(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}
	return htmlToText(doc), nil
}

// isCertError reports whether the fetch failed on certificate verification
// rather than on connectivity
func isCertError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	return errors.As(err, &invalid)
}

// normalizeURL ensures the site has a scheme, defaulting to HTTPS
func normalizeURL(site string) string {
	site = strings.TrimSpace(site)
	if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
		return "https://" + site
	}
	return site
}

// hostPath strips any scheme so the probe can force one explicitly
func hostPath(site string) string {
	site = strings.TrimPrefix(site, "https://")
	return strings.TrimPrefix(site, "http://")
}

func sample(content string, n int) string {
	if len(content) <= n {
		return content
	}
	return content[:n]
}

// describeSignals renders the extracted signals as text so they can be
// pooled with the other sources' findings
func describeSignals(sig brand.SiteSignals) string {
	yesNo := func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	}
	return fmt.Sprintf(
		"ssl: %s; phone: %s; email: %s; address: %s; about page: %s; privacy policy: %s; terms: %s; support: %s; social links: %s; site score: %d/100",
		sig.SSLStatus,
		yesNo(sig.HasPhone), yesNo(sig.HasEmail), yesNo(sig.HasAddress),
		yesNo(sig.HasAbout), yesNo(sig.HasPrivacy), yesNo(sig.HasTerms),
		yesNo(sig.HasSupport), yesNo(sig.HasSocialLinks),
		sig.SiteScore,
	)
}
