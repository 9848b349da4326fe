// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Serp        SerpConfig
	Gemini      GeminiConfig
	Reddit      RedditConfig
	Twitter     TwitterConfig
	Website     WebsiteConfig
	Collect     CollectConfig
	Report      ReportConfig
}

// ServerConfig holds HTTP server configuration for serve mode
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds the optional report archive configuration.
// Archiving is disabled when URL is empty.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// NATSConfig holds the optional event bus configuration.
// Run events are disabled when URL is empty.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// SerpConfig holds SerpAPI configuration for the ratings source
type SerpConfig struct {
	APIKey      string
	BaseURL     string
	Country     string
	Language    string
	MaxProducts int
}

// GeminiConfig holds the language model configuration
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	MaxRetries      int
}

// RedditConfig holds the optional discussion source credentials.
// The reddit source is skipped when ClientID or ClientSecret is empty.
type RedditConfig struct {
	ClientID      string
	ClientSecret  string
	UserAgent     string
	BaseURL       string
	AuthURL       string
	MaxSubreddits int
	PostsPerSub   int
}

// TwitterAccount is one OAuth1 user-context credential used for rotation
type TwitterAccount struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// TwitterConfig holds the optional microblog source credentials. The source
// is skipped when no bearer token and no account is configured. Multiple
// bearer tokens or OAuth1 accounts rotate on rate limits.
type TwitterConfig struct {
	BearerTokens []string
	Accounts     []TwitterAccount
	MaxResults   int
}

// WebsiteConfig holds the website trust source configuration. Firecrawl is
// optional; without a key the collector falls back to a plain HTTP fetch.
type WebsiteConfig struct {
	FirecrawlKey string
	FirecrawlURL string
	FetchTimeout time.Duration
}

// CollectConfig bounds the parallel collection phase
type CollectConfig struct {
	SourceTimeout  time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RequestsPerSec float64
	Burst          int
}

// ReportConfig holds report output configuration
type ReportConfig struct {
	OutputDir string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Serp: SerpConfig{
			APIKey:      getEnv("SERPAPI_KEY", ""),
			BaseURL:     getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
			Country:     getEnv("SERPAPI_COUNTRY", "us"),
			Language:    getEnv("SERPAPI_LANGUAGE", "en"),
			MaxProducts: getEnvAsInt("SERPAPI_MAX_PRODUCTS", 10),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			BaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			Model:           getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
			Temperature:     getEnvAsFloat("GEMINI_TEMPERATURE", 0.3),
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 1024),
			MaxRetries:      getEnvAsInt("GEMINI_MAX_RETRIES", 2),
		},
		Reddit: RedditConfig{
			ClientID:      getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret:  getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:     getEnv("REDDIT_USER_AGENT", "brandtrust/1.0"),
			BaseURL:       getEnv("REDDIT_BASE_URL", "https://oauth.reddit.com"),
			AuthURL:       getEnv("REDDIT_AUTH_URL", "https://www.reddit.com/api/v1/access_token"),
			MaxSubreddits: getEnvAsInt("REDDIT_MAX_SUBREDDITS", 5),
			PostsPerSub:   getEnvAsInt("REDDIT_POSTS_PER_SUB", 3),
		},
		Twitter: TwitterConfig{
			BearerTokens: getEnvAsSlice("TWITTER_BEARER_TOKENS", nil),
			Accounts:     parseTwitterAccounts(getEnv("TWITTER_ACCOUNTS", "")),
			MaxResults:   getEnvAsInt("TWITTER_MAX_RESULTS", 25),
		},
		Website: WebsiteConfig{
			FirecrawlKey: getEnv("FIRECRAWL_API_KEY", ""),
			FirecrawlURL: getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),
			FetchTimeout: getEnvAsDuration("WEBSITE_FETCH_TIMEOUT", 15*time.Second),
		},
		Collect: CollectConfig{
			SourceTimeout:  getEnvAsDuration("COLLECT_SOURCE_TIMEOUT", 45*time.Second),
			MaxRetries:     getEnvAsInt("COLLECT_MAX_RETRIES", 3),
			BackoffBase:    getEnvAsDuration("COLLECT_BACKOFF_BASE", 1*time.Second),
			BackoffMax:     getEnvAsDuration("COLLECT_BACKOFF_MAX", 15*time.Second),
			RequestsPerSec: getEnvAsFloat("COLLECT_REQUESTS_PER_SEC", 2.0),
			Burst:          getEnvAsInt("COLLECT_BURST", 4),
		},
		Report: ReportConfig{
			OutputDir: getEnv("REPORT_OUTPUT_DIR", "."),
		},
	}

	// Single bearer token form kept for convenience
	if token := getEnv("TWITTER_BEARER_TOKEN", ""); token != "" {
		config.Twitter.BearerTokens = append(config.Twitter.BearerTokens, token)
	}

	return config, validate(config)
}

// validate checks that the mandatory service credentials are present
func validate(config Config) error {
	if config.Serp.APIKey == "" {
		return fmt.Errorf("SERPAPI_KEY is required")
	}
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// Enabled reports whether the discussion source is configured
func (c RedditConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Enabled reports whether any microblog credential is configured
func (c TwitterConfig) Enabled() bool {
	return len(c.BearerTokens) > 0 || len(c.Accounts) > 0
}

// parseTwitterAccounts parses "key:secret:token:tokenSecret" quads separated
// by commas. Malformed entries are dropped.
func parseTwitterAccounts(value string) []TwitterAccount {
	if value == "" {
		return nil
	}
	var accounts []TwitterAccount
	for _, entry := range strings.Split(value, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 {
			continue
		}
		accounts = append(accounts, TwitterAccount{
			ConsumerKey:    parts[0],
			ConsumerSecret: parts[1],
			Token:          parts[2],
			TokenSecret:    parts[3],
		})
	}
	return accounts
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
