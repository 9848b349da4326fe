// internal/source/reddit/reddit.go

// Package reddit implements the discussion source. It authenticates with
// the Reddit API using application-only OAuth, discovers subreddits where
// the brand is discussed, and searches each one for posts mentioning it.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
	"brandtrust/internal/httpx"
)

// Collector wraps the Reddit search API
type Collector struct {
	cfg    config.RedditConfig
	client *httpx.Client
}

// New creates a discussion collector
func New(cfg config.RedditConfig, client *httpx.Client) *Collector {
	return &Collector{cfg: cfg, client: client}
}

// Name returns the source identifier
func (c *Collector) Name() string { return brand.SourceReddit }

// post is one search hit from the Reddit listing API
type post struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
}

// listing is the envelope Reddit wraps every listing response in
type listing struct {
	Data struct {
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect searches for brand discussion across relevant subreddits
func (c *Collector) Collect(ctx context.Context, q brand.Query) brand.SourceResult {
	if !c.cfg.Enabled() {
		return brand.Skipped(brand.SourceReddit, "reddit credentials not configured")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return brand.Failed(brand.SourceReddit, fmt.Errorf("reddit auth: %w", err))
	}

	subreddits, err := c.searchSubreddits(ctx, token, q.Brand)
	if err != nil {
		return brand.Failed(brand.SourceReddit, fmt.Errorf("subreddit search: %w", err))
	}
	if len(subreddits) == 0 {
		return brand.SourceResult{
			Source: brand.SourceReddit,
			Status: brand.StatusPartial,
			Error:  "no subreddits found for brand",
		}
	}

	var (
		findings   []brand.Finding
		mentions   int
		engagement int
		searchErrs int
	)

	for _, sub := range subreddits {
		posts, err := c.searchPosts(ctx, token, sub, q.Brand)
		if err != nil {
			log.Warn().Err(err).Str("subreddit", sub).Msg("subreddit post search failed")
			searchErrs++
			continue
		}

		for _, p := range posts {
			if !mentionsBrand(q.Brand, p.Title+" "+p.SelfText) {
				continue
			}
			mentions++
			engagement += p.Score + p.NumComments

			text := strings.TrimSpace(p.SelfText)
			if len(text) <= 10 {
				text = strings.TrimSpace(p.Title)
			}
			findings = append(findings, brand.Finding{
				Source: brand.SourceReddit,
				Title:  p.Title,
				Text:   text,
			})
		}
	}

	if searchErrs == len(subreddits) {
		return brand.Failed(brand.SourceReddit, fmt.Errorf("all %d subreddit searches failed", searchErrs))
	}

	result := brand.SourceResult{
		Source:   brand.SourceReddit,
		Status:   brand.StatusOK,
		Findings: findings,
		Social:   &brand.SocialSignals{Mentions: mentions, Engagement: engagement},
	}
	if searchErrs > 0 {
		result.Status = brand.StatusPartial
		result.Error = fmt.Sprintf("%d of %d subreddit searches failed", searchErrs, len(subreddits))
	}

	log.Debug().
		Int("subreddits", len(subreddits)).
		Int("mentions", mentions).
		Msg("reddit collection complete")

	return result
}

// accessToken obtains an application-only OAuth token
func (c *Collector) accessToken(ctx context.Context) (string, error) {
	resp, err := c.client.Do(ctx, func() (*http.Request, error) {
		body := strings.NewReader("grant_type=client_credentials")
		req, err := http.NewRequest(http.MethodPost, c.cfg.AuthURL, body)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit token endpoint returned status %d", resp.StatusCode)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return tr.AccessToken, nil
}

// searchSubreddits finds subreddits whose name or topic matches the brand
func (c *Collector) searchSubreddits(ctx context.Context, token, brandName string) ([]string, error) {
	params := url.Values{}
	params.Set("q", brandName)
	params.Set("limit", fmt.Sprintf("%d", c.cfg.MaxSubreddits))

	var l listing
	if err := c.getJSON(ctx, token, "/subreddits/search?"+params.Encode(), &l); err != nil {
		return nil, err
	}

	var subs []string
	for _, child := range l.Data.Children {
		var sub struct {
			DisplayName string `json:"display_name"`
		}
		if err := json.Unmarshal(child.Data, &sub); err != nil || sub.DisplayName == "" {
			continue
		}
		subs = append(subs, sub.DisplayName)
		if len(subs) >= c.cfg.MaxSubreddits {
			break
		}
	}
	return subs, nil
}

// searchPosts searches one subreddit for posts mentioning the brand
func (c *Collector) searchPosts(ctx context.Context, token, subreddit, brandName string) ([]post, error) {
	params := url.Values{}
	params.Set("q", brandName)
	params.Set("restrict_sr", "1")
	params.Set("sort", "relevance")
	params.Set("limit", fmt.Sprintf("%d", c.cfg.PostsPerSub))

	var l listing
	path := fmt.Sprintf("/r/%s/search?%s", url.PathEscape(subreddit), params.Encode())
	if err := c.getJSON(ctx, token, path, &l); err != nil {
		return nil, err
	}

	var posts []post
	for _, child := range l.Data.Children {
		var p post
		if err := json.Unmarshal(child.Data, &p); err != nil {
			continue
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// getJSON issues an authenticated GET against the OAuth API host
func (c *Collector) getJSON(ctx context.Context, token, path string, out any) error {
	resp, err := c.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mentionsBrand checks that the brand actually appears in the post text
func mentionsBrand(brandName, text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(brandName))
}
