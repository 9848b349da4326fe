// internal/source/website/extract.go

package website

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"brandtrust/internal/domain/brand"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+\d{1,3}[\s-]?\d{6,14}`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
	}

	addressPattern = regexp.MustCompile(`(?im)(?:address|registered\s+office|head\s+office|our\s+office|visit\s+us)[:\s]+[^\n]{20,200}`)

	socialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)instagram\.com/[\w.]+`),
		regexp.MustCompile(`(?i)(?:twitter|x)\.com/[\w.]+`),
		regexp.MustCompile(`(?i)(?:facebook|fb)\.com/[\w.]+`),
		regexp.MustCompile(`(?i)linkedin\.com/[\w./]+`),
		regexp.MustCompile(`(?i)(?:youtube\.com|youtu\.be)/[\w./]+`),
	}
)

var (
	aboutKeywords   = []string{"about us", "our story", "who we are", "our mission", "founded", "company profile"}
	privacyKeywords = []string{"privacy policy", "data protection", "cookie policy", "privacy notice", "gdpr"}
	termsKeywords   = []string{"terms and conditions", "terms of service", "terms of use", "user agreement", "disclaimer"}
	supportKeywords = []string{"customer service", "customer support", "help center", "support center", "contact us", "faq", "live chat"}
)

// inspectContent fills the text-derived legitimacy signals on sig
func inspectContent(content string, sig *brand.SiteSignals) {
	lower := strings.ToLower(content)

	sig.HasEmail = emailPattern.MatchString(content)
	sig.HasAddress = addressPattern.MatchString(content)
	for _, p := range phonePatterns {
		if p.MatchString(content) {
			sig.HasPhone = true
			break
		}
	}

	sig.HasAbout = containsAny(lower, aboutKeywords)
	sig.HasPrivacy = containsAny(lower, privacyKeywords)
	sig.HasTerms = containsAny(lower, termsKeywords)
	sig.HasSupport = containsAny(lower, supportKeywords)
	for _, p := range socialPatterns {
		if p.MatchString(content) {
			sig.HasSocialLinks = true
			break
		}
	}

	sig.ContentLength = len(content)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// siteScore combines the signals into the 0-100 legitimacy rubric: SSL 25,
// contact details 35, page sections 30, content volume 10
func siteScore(sig brand.SiteSignals) int {
	score := 0

	if sig.CertValid {
		score += 25
	} else if sig.HTTPSEnabled {
		score += 10
	}

	if sig.HasPhone {
		score += 15
	}
	if sig.HasAddress {
		score += 15
	}
	if sig.HasEmail {
		score += 5
	}

	if sig.HasAbout {
		score += 12
	}
	if sig.HasPrivacy {
		score += 8
	}
	if sig.HasTerms {
		score += 5
	}
	if sig.HasSupport {
		score += 3
	}
	if sig.HasSocialLinks {
		score += 2
	}

	switch {
	case sig.ContentLength > 5000:
		score += 10
	case sig.ContentLength > 2000:
		score += 5
	case sig.ContentLength > 500:
		score += 2
	}

	if score > 100 {
		score = 100
	}
	return score
}

// htmlToText extracts readable text and link targets from an HTML document.
// Link hrefs are kept because social profiles usually appear only in
// attributes, not text.
func htmlToText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	b.WriteString(doc.Find("body").Text())
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			b.WriteString(" ")
			b.WriteString(href)
		}
	})

	return strings.Join(strings.Fields(b.String()), " ")
}
