package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"
	defaultTimeout  = 60 * time.Second
	maxErrorBody    = 8 << 10
)

// HTTPClient calls a generateContent style vision API.
type HTTPClient struct {
	http     *http.Client
	endpoint string
	model    string
	apiKey   string
}

// NewHTTPClient creates a client. It is usable without an API key, but every
// Extract call then returns ErrNotConfigured.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		http:     &http.Client{Timeout: defaultTimeout},
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *HTTPClient) Configured() bool { return c.apiKey != "" }

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content      `json:"contents"`
	GenerationConfig map[string]any `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// Extract sends img with the ranking prompt and parses the answer.
func (c *HTTPClient) Extract(ctx context.Context, img Image, maxTeams int) ([]model.ExtractedEntry, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	mime := img.MIMEType
	if mime == "" {
		mime = http.DetectContentType(img.Data)
	}
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{
			{Text: Prompt(maxTeams)},
			{InlineData: &inlineData{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(img.Data)}},
		}}},
		GenerationConfig: map[string]any{"temperature": 0.1},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.endpoint, "/"), url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(resp, b)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrParse, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty candidates", ErrParse)
	}
	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return ParseAnswer(text.String())
}

func statusError(resp *http.Response, body []byte) error {
	var ae apiError
	_ = json.Unmarshal(body, &ae)
	msg := ae.Error.Message
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	limited := resp.StatusCode == http.StatusTooManyRequests ||
		ae.Error.Status == "RESOURCE_EXHAUSTED" ||
		strings.Contains(strings.ToLower(msg), "quota")
	if !limited {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}

	rl := &RateLimitError{Message: msg}
	for _, d := range ae.Error.Details {
		if d.RetryDelay == "" {
			continue
		}
		if wait, err := time.ParseDuration(d.RetryDelay); err == nil {
			rl.RetryAfter = wait
			break
		}
	}
	if rl.RetryAfter == 0 {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			rl.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	if rl.RetryAfter == 0 {
		rl.RetryAfter = RetryDelay(errors.New(msg), 0)
	}
	return rl
}
