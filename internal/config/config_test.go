// internal/config/config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SERPAPI_KEY", "serp-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
}

func TestLoadRequiresSerpKey(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERPAPI_KEY")
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "serp-key")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://serpapi.com", cfg.Serp.BaseURL)
	assert.Equal(t, 10, cfg.Serp.MaxProducts)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 0.3, cfg.Gemini.Temperature)
	assert.Equal(t, 45*time.Second, cfg.Collect.SourceTimeout)
	assert.Equal(t, ".", cfg.Report.OutputDir)
	assert.False(t, cfg.Reddit.Enabled())
	assert.False(t, cfg.Twitter.Enabled())
}

func TestSingleBearerTokenAppended(t *testing.T) {
	setRequired(t)
	t.Setenv("TWITTER_BEARER_TOKENS", "tok-a,tok-b")
	t.Setenv("TWITTER_BEARER_TOKEN", "tok-c")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, cfg.Twitter.BearerTokens)
	assert.True(t, cfg.Twitter.Enabled())
}

func TestParseTwitterAccounts(t *testing.T) {
	accounts := parseTwitterAccounts("ck1:cs1:t1:ts1, ck2:cs2:t2:ts2")
	require.Len(t, accounts, 2)
	assert.Equal(t, TwitterAccount{
		ConsumerKey:    "ck1",
		ConsumerSecret: "cs1",
		Token:          "t1",
		TokenSecret:    "ts1",
	}, accounts[0])

	// Malformed entries are dropped
	assert.Len(t, parseTwitterAccounts("only:three:parts"), 0)
	assert.Nil(t, parseTwitterAccounts(""))
}

func TestRedditEnabled(t *testing.T) {
	assert.False(t, RedditConfig{ClientID: "id"}.Enabled())
	assert.True(t, RedditConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getEnvAsDuration("TEST_DURATION_UNSET", time.Minute))
}
