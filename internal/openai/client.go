// Package openai holds the shared HTTP client for the OpenAI API. Both the
// transcription and structuring adapters are built on top of it; the client
// is injected at construction time so tests can point it at a fake server.
package openai

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.openai.com"

// Client wraps a configured resty client for the OpenAI REST API.
type Client struct {
	http *resty.Client
}

// New creates a client. baseURL may be empty, in which case the public API
// endpoint is used. apiKey must be set.
func New(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(2 * time.Minute)

	return &Client{http: c}, nil
}

// R starts a new request against the API.
func (c *Client) R() *resty.Request { return c.http.R() }
