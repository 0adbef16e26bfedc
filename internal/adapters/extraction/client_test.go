package extraction_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/podium/internal/adapters/extraction"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClientExtract(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"`+
			"```json\\n{\\\"teams\\\":[{\\\"position\\\":1,\\\"teamName\\\":\\\"A1\\\",\\\"kills\\\":8}]}\\n```"+
			`"}]}}]}`)
	})

	c := extraction.NewHTTPClient(
		extraction.WithEndpoint(srv.URL),
		extraction.WithModel("vision-test"),
		extraction.WithAPIKey("secret"),
	)
	entries, err := c.Extract(context.Background(), extraction.Image{Name: "a.png", MIMEType: "image/png", Data: []byte("png-bytes")}, 25)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "A1", entries[0].TeamLabel)
	require.Equal(t, 8, entries[0].Kills)
	require.Equal(t, "/models/vision-test:generateContent", gotPath)
	require.Equal(t, "secret", gotKey)

	parts := gotBody["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Contains(t, parts[0].(map[string]any)["text"], "between 1 and 25")
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	require.Equal(t, "image/png", inline["mime_type"])
	require.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), inline["data"])
}

func TestHTTPClientJoinsAnswerParts(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[`+
			`{"text":"{\"teams\":[{\"position\":1,\"teamName\":\"A1\","},`+
			`{"text":"\"kills\":8},{\"position\":2,\"teamName\":\"A2\",\"kills\":3}]}"}`+
			`]}}]}`)
	})

	c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL), extraction.WithAPIKey("secret"))
	entries, err := c.Extract(context.Background(), extraction.Image{Name: "a.png", MIMEType: "image/png", Data: []byte("png")}, 25)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "A1", entries[0].TeamLabel)
	require.Equal(t, 8, entries[0].Kills)
	require.Equal(t, "A2", entries[1].TeamLabel)
	require.Equal(t, extraction.DefaultConfidence, entries[1].Confidence)
}

func TestHTTPClientNotConfigured(t *testing.T) {
	c := extraction.NewHTTPClient()
	require.False(t, c.Configured())

	_, err := c.Extract(context.Background(), extraction.Image{}, 25)
	require.ErrorIs(t, err, extraction.ErrNotConfigured)
	require.Equal(t, extraction.KindConfiguration, extraction.Classify(err))
}

func TestHTTPClientRateLimited(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED",
			"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"5s"}]}}`)
	})

	c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL), extraction.WithAPIKey("k"))
	_, err := c.Extract(context.Background(), extraction.Image{Data: []byte("x")}, 25)

	var rl *extraction.RateLimitError
	require.True(t, errors.As(err, &rl))
	require.Equal(t, 5*time.Second, rl.RetryAfter)
	require.Equal(t, extraction.KindRateLimit, extraction.Classify(err))
}

func TestHTTPClientRetryAfterHeader(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "9")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL), extraction.WithAPIKey("k"))
	_, err := c.Extract(context.Background(), extraction.Image{Data: []byte("x")}, 25)

	require.Equal(t, 9*time.Second, extraction.RetryDelay(err, time.Minute))
}

func TestHTTPClientUpstreamAndParseErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL), extraction.WithAPIKey("k"))
		_, err := c.Extract(context.Background(), extraction.Image{Data: []byte("x")}, 25)
		require.ErrorIs(t, err, extraction.ErrUpstream)
		require.Equal(t, extraction.KindOther, extraction.Classify(err))
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"candidates":[]}`)
		})
		c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL), extraction.WithAPIKey("k"))
		_, err := c.Extract(context.Background(), extraction.Image{Data: []byte("x")}, 25)
		require.ErrorIs(t, err, extraction.ErrParse)
	})

	t.Run("prose answer", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"I cannot read this image"}]}}]}`)
		})
		c := extraction.NewHTTPClient(extraction.WithEndpoint(srv.URL+"/"), extraction.WithAPIKey("k"))
		_, err := c.Extract(context.Background(), extraction.Image{Data: []byte("x")}, 25)
		require.ErrorIs(t, err, extraction.ErrParse)
	})
}
