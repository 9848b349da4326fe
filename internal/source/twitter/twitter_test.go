// internal/source/twitter/twitter_test.go

package twitter

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/brand"
)

func TestCollectSkipsWithoutHandle(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"tok"}})

	result := c.Collect(context.Background(), brand.Query{Brand: "Acme"})

	assert.Equal(t, brand.StatusSkipped, result.Status)
	assert.Contains(t, result.Error, "no handle")
}

func TestCollectSkipsWithoutCredentials(t *testing.T) {
	c := New(config.TwitterConfig{})

	result := c.Collect(context.Background(), brand.Query{Brand: "Acme", Handle: "@acme"})

	assert.Equal(t, brand.StatusSkipped, result.Status)
	assert.Contains(t, result.Error, "not configured")
}

func TestClientPoolBuildsAllCredentials(t *testing.T) {
	pool := newClientPool(config.TwitterConfig{
		BearerTokens: []string{"tok-a", "tok-b"},
		Accounts: []config.TwitterAccount{
			{ConsumerKey: "ck", ConsumerSecret: "cs", Token: "t", TokenSecret: "ts"},
		},
	})

	assert.Equal(t, 3, pool.size())
}

func TestClientPoolRotates(t *testing.T) {
	pool := newClientPool(config.TwitterConfig{BearerTokens: []string{"a", "b"}})
	require.Equal(t, 2, pool.size())

	first := pool.next()
	second := pool.next()
	third := pool.next()

	assert.NotSame(t, first, second)
	assert.Same(t, first, third)
}

func TestBearerAuthorizer(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://api.twitter.com/2/tweets", nil)
	require.NoError(t, err)

	bearerAuthorizer{token: "tok"}.Add(req)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(&twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, isRateLimited(&twitter.ErrorResponse{StatusCode: http.StatusUnauthorized}))
	assert.False(t, isRateLimited(errors.New("plain network error")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("connection reset by peer")))
	assert.True(t, isTransient(&twitter.ErrorResponse{StatusCode: http.StatusInternalServerError}))
	assert.True(t, isTransient(&twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, isTransient(&twitter.ErrorResponse{StatusCode: http.StatusUnauthorized}))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(context.DeadlineExceeded))
}

func TestWithRetryRecoversFromNetworkError(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"tok"}})
	c.backoff = time.Millisecond

	attempts := 0
	err := c.withRetry(context.Background(), func(client *twitter.Client) error {
		attempts++
		if attempts < 2 {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"tok"}})
	c.backoff = time.Millisecond

	attempts := 0
	err := c.withRetry(context.Background(), func(client *twitter.Client) error {
		attempts++
		return &twitter.ErrorResponse{StatusCode: http.StatusUnauthorized}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"tok"}})
	c.backoff = time.Millisecond

	attempts := 0
	err := c.withRetry(context.Background(), func(client *twitter.Client) error {
		attempts++
		return errors.New("i/o timeout")
	})

	require.Error(t, err)
	assert.Equal(t, maxAttempts, attempts)
}

func TestWithRetryRespectsCancellation(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"tok"}})
	c.backoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := c.withRetry(ctx, func(client *twitter.Client) error {
		attempts++
		return errors.New("i/o timeout")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestWithRotationAdvancesOnRateLimit(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"a", "b", "c"}})

	attempts := 0
	err := c.withRotation(func(client *twitter.Client) error {
		attempts++
		if attempts < 3 {
			return &twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRotationStopsOnHardError(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"a", "b", "c"}})

	attempts := 0
	hard := &twitter.ErrorResponse{StatusCode: http.StatusForbidden}
	err := c.withRotation(func(client *twitter.Client) error {
		attempts++
		return hard
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRotationExhaustsPool(t *testing.T) {
	c := New(config.TwitterConfig{BearerTokens: []string{"a", "b"}})

	attempts := 0
	err := c.withRotation(func(client *twitter.Client) error {
		attempts++
		return &twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}
