// internal/source/website/website_test.go

package website

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/httpx"
)

func testCollector() *Collector {
	return New(config.WebsiteConfig{FetchTimeout: 2 * time.Second}, httpx.New(httpx.DefaultOptions()))
}

func TestCollectSkipsWithoutURL(t *testing.T) {
	c := testCollector()

	result := c.Collect(context.Background(), brand.Query{Brand: "Acme"})

	assert.Equal(t, brand.StatusSkipped, result.Status)
	assert.Equal(t, brand.SourceWebsite, result.Source)
}

func TestCollectHTTPOnlySite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<p>About us: we are Acme, founded long ago to make things.</p>
			<p>Contact us at hello@acme.example or (555) 987-6543.</p>
			<a href="/privacy">Privacy Policy</a>
		</body></html>`)
	}))
	defer server.Close()

	c := testCollector()
	// The TLS probe against this host fails, the plain HTTP fetch succeeds
	result := c.Collect(context.Background(), brand.Query{Brand: "Acme", Website: server.URL})

	require.Equal(t, brand.StatusOK, result.Status)
	require.NotNil(t, result.Site)

	assert.False(t, result.Site.CertValid)
	assert.False(t, result.Site.HTTPSEnabled)
	assert.Equal(t, "no HTTPS, HTTP only", result.Site.SSLStatus)
	assert.True(t, result.Site.HasEmail)
	assert.True(t, result.Site.HasPhone)
	assert.True(t, result.Site.HasAbout)
	assert.True(t, result.Site.HasPrivacy)
	assert.NotEmpty(t, result.Findings)
	assert.Greater(t, result.Site.SiteScore, 0)
}

func TestCollectValidCertificate(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Acme home page with enough words to count.</p></body></html>`)
	}))
	defer server.Close()

	c := testCollector()
	// Trust the test server's certificate so the probe sees a valid chain
	c.probe = server.Client()
	c.probe.Timeout = 2 * time.Second

	result := c.Collect(context.Background(), brand.Query{Brand: "Acme", Website: server.URL})

	require.Equal(t, brand.StatusOK, result.Status)
	require.NotNil(t, result.Site)
	assert.True(t, result.Site.CertValid)
	assert.True(t, result.Site.HTTPSEnabled)
	assert.Equal(t, "valid certificate", result.Site.SSLStatus)
}

func TestCollectUnreachableSite(t *testing.T) {
	c := testCollector()

	result := c.Collect(context.Background(), brand.Query{Brand: "Acme", Website: "http://127.0.0.1:1"})

	assert.Equal(t, brand.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "unreachable")
}
