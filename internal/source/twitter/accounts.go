// internal/source/twitter/accounts.go

package twitter

import (
	"net/http"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"

	"brandtrust/internal/config"
)

const apiHost = "https://api.twitter.com"

// bearerAuthorizer adds an app-context bearer token to each request
type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// signedAuthorizer is a no-op: OAuth1 user-context clients sign requests in
// their transport, so nothing is added here
type signedAuthorizer struct{}

func (signedAuthorizer) Add(req *http.Request) {}

// clientPool rotates across the configured credentials. Rotation advances
// when a client hits a rate limit so one throttled account does not block
// the collection.
type clientPool struct {
	mu      sync.Mutex
	clients []*twitter.Client
	idx     int
}

// newClientPool builds one API client per configured bearer token and one
// per OAuth1 account
func newClientPool(cfg config.TwitterConfig) *clientPool {
	pool := &clientPool{}

	for _, token := range cfg.BearerTokens {
		pool.clients = append(pool.clients, &twitter.Client{
			Authorizer: bearerAuthorizer{token: token},
			Client:     &http.Client{Timeout: 10 * time.Second},
			Host:       apiHost,
		})
	}

	for _, account := range cfg.Accounts {
		oauthConfig := oauth1.NewConfig(account.ConsumerKey, account.ConsumerSecret)
		token := oauth1.NewToken(account.Token, account.TokenSecret)
		httpClient := oauthConfig.Client(oauth1.NoContext, token)
		httpClient.Timeout = 10 * time.Second

		pool.clients = append(pool.clients, &twitter.Client{
			Authorizer: signedAuthorizer{},
			Client:     httpClient,
			Host:       apiHost,
		})
	}

	return pool
}

// size returns the number of configured clients
func (p *clientPool) size() int {
	return len(p.clients)
}

// next returns the current client and advances the rotation
func (p *clientPool) next() *twitter.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	client := p.clients[p.idx%len(p.clients)]
	p.idx++
	return client
}
