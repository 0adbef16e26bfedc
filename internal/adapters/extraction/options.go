package extraction

import (
	"net/http"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithDefaultWait sets the wait used when a rate limit names no delay.
func WithDefaultWait(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.defaultWait = d
		}
	}
}

// WithSleeper replaces the timer used while waiting out a rate limit.
func WithSleeper(s Sleeper) PolicyOption {
	return func(p *Policy) {
		if s != nil {
			p.sleep = s
		}
	}
}

// WithPolicyLogger sets the policy logger.
func WithPolicyLogger(l logger.Logger) PolicyOption {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithEndpoint sets the API base URL.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *HTTPClient) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithModel sets the model name.
func WithModel(model string) ClientOption {
	return func(c *HTTPClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAPIKey sets the API key. Without one every call fails with ErrNotConfigured.
func WithAPIKey(key string) ClientOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if h != nil {
			c.http = h
		}
	}
}
