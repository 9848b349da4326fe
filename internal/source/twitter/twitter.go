// internal/source/twitter/twitter.go

// Package twitter implements the microblog source on the Twitter v2 API:
// a profile lookup for audience size and a recent search for mentions of
// the brand's handle.
package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/rs/zerolog/log"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
)

// Retry bounds for transient API failures. Rotation through the account
// pool happens within a single attempt.
const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// Collector wraps the Twitter v2 API behind the common collector contract
type Collector struct {
	cfg     config.TwitterConfig
	pool    *clientPool
	backoff time.Duration
}

// New creates a microblog collector
func New(cfg config.TwitterConfig) *Collector {
	return &Collector{cfg: cfg, pool: newClientPool(cfg), backoff: retryBackoff}
}

// Name returns the source identifier
func (c *Collector) Name() string { return brand.SourceTwitter }

// Collect looks up the brand's profile and recent mentions of its handle
func (c *Collector) Collect(ctx context.Context, q brand.Query) brand.SourceResult {
	if strings.TrimSpace(q.Handle) == "" {
		return brand.Skipped(brand.SourceTwitter, "no handle provided")
	}
	if !c.cfg.Enabled() {
		return brand.Skipped(brand.SourceTwitter, "twitter credentials not configured")
	}

	handle := strings.TrimPrefix(strings.TrimSpace(q.Handle), "@")

	social := &brand.SocialSignals{}
	if followers, err := c.lookupFollowers(ctx, handle); err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("twitter profile lookup failed")
	} else {
		social.Followers = followers
	}

	tweets, err := c.searchMentions(ctx, handle)
	if err != nil {
		return brand.Failed(brand.SourceTwitter, fmt.Errorf("mention search: %w", err))
	}

	var findings []brand.Finding
	for _, t := range tweets {
		text := strings.TrimSpace(t.Text)
		if len(text) <= 10 {
			continue
		}
		findings = append(findings, brand.Finding{
			Source: brand.SourceTwitter,
			Text:   text,
		})
		social.Mentions++
		if t.PublicMetrics != nil {
			social.Engagement += t.PublicMetrics.Likes + t.PublicMetrics.Retweets + t.PublicMetrics.Replies
		}
	}

	log.Debug().
		Str("handle", handle).
		Int("mentions", social.Mentions).
		Int("followers", social.Followers).
		Msg("twitter collection complete")

	return brand.SourceResult{
		Source:   brand.SourceTwitter,
		Status:   brand.StatusOK,
		Findings: findings,
		Social:   social,
	}
}

// lookupFollowers fetches the audience size of the brand account
func (c *Collector) lookupFollowers(ctx context.Context, handle string) (int, error) {
	var followers int
	err := c.withRetry(ctx, func(client *twitter.Client) error {
		resp, err := client.UserNameLookup(ctx, []string{handle}, twitter.UserLookupOpts{
			UserFields: []twitter.UserField{twitter.UserFieldPublicMetrics},
		})
		if err != nil {
			return err
		}
		if len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
			return fmt.Errorf("user %q not found", handle)
		}
		if metrics := resp.Raw.Users[0].PublicMetrics; metrics != nil {
			followers = metrics.Followers
		}
		return nil
	})
	return followers, err
}

// searchMentions fetches recent tweets mentioning the handle, excluding
// the brand's own tweets and retweets
func (c *Collector) searchMentions(ctx context.Context, handle string) ([]*twitter.TweetObj, error) {
	query := fmt.Sprintf("@%s -from:%s -is:retweet", handle, handle)

	var tweets []*twitter.TweetObj
	err := c.withRetry(ctx, func(client *twitter.Client) error {
		resp, err := client.TweetRecentSearch(ctx, query, twitter.TweetRecentSearchOpts{
			MaxResults: c.cfg.MaxResults,
			TweetFields: []twitter.TweetField{
				twitter.TweetFieldPublicMetrics,
				twitter.TweetFieldCreatedAt,
			},
		})
		if err != nil {
			return err
		}
		tweets = resp.Raw.Tweets
		return nil
	})
	return tweets, err
}

// withRetry runs fn through the rotation pool with bounded retries and
// linear backoff on transient failures: network errors, server errors, and
// rate limits that survived a full pool rotation
func (c *Collector) withRetry(ctx context.Context, fn func(client *twitter.Client) error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		lastErr = c.withRotation(fn)
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}
		log.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("twitter request failed, retrying")
	}
	return lastErr
}

// isTransient reports whether an error is worth another attempt
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *twitter.ErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Anything outside the API error type is a transport failure
	return true
}

// withRotation runs fn against the current client, advancing through the
// pool when an account is rate limited
func (c *Collector) withRotation(fn func(client *twitter.Client) error) error {
	var lastErr error
	for attempt := 0; attempt < c.pool.size(); attempt++ {
		client := c.pool.next()
		err := fn(client)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return err
		}
		log.Warn().Err(err).Msg("twitter account rate limited, rotating")
	}
	return lastErr
}

// isRateLimited reports whether the API rejected the request with HTTP 429
func isRateLimited(err error) bool {
	var apiErr *twitter.ErrorResponse
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
