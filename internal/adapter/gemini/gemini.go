// internal/adapter/gemini/gemini.go

// Package gemini implements the component judge on the Gemini REST API.
// Prompts ask the model to return JSON; the response text is parsed with
// repair fallbacks because the model occasionally wraps or truncates it.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"brandtrust/internal/config"
	"brandtrust/internal/domain/trust"
)

// Client calls the Gemini generateContent endpoint behind a circuit breaker
type Client struct {
	cfg     config.GeminiConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New creates a Gemini judge client
func New(cfg config.GeminiConfig) *Client {
	settings := gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 60 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateRequest is the REST body for generateContent
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Judge sends the component prompt to the model and parses its JSON reply
// into a judgment
func (c *Client) Judge(ctx context.Context, component, prompt string) (trust.Judgment, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return trust.Judgment{}, fmt.Errorf("judging %s: %w", component, err)
	}

	judgment, err := parseJudgment(component, text)
	if err != nil {
		return trust.Judgment{}, fmt.Errorf("judging %s: %w", component, err)
	}
	return judgment, nil
}

// generate calls generateContent with retries on transient failures
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("gemini call failed, retrying")
	}
	return "", lastErr
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			TopP:            0.8,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if gr.Error != nil {
			msg = gr.Error.Message
		}
		return "", &apiError{StatusCode: resp.StatusCode, Message: msg}
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// apiError carries the HTTP status so callers can distinguish auth failures
// from transient errors
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini API status %d: %s", e.StatusCode, e.Message)
}

func isRetryable(err error) bool {
	if apiErr, ok := err.(*apiError); ok {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// transport errors may clear on retry; an open breaker will not within
	// the retry window
	return !errors.Is(err, gobreaker.ErrOpenState)
}
