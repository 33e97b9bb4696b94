package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/fetch-rss", r.URL.Path)
		assert.Equal(t, "Bearer svc-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.ae/feed", body["url"])

		w.Write([]byte(`{"items":[{"title":"hello"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "svc-key")
	raw, err := c.Invoke(context.Background(), "fetch-rss", map[string]string{"url": "https://example.ae/feed"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"title":"hello"}]}`, string(raw))
}

func TestInvoke_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Invoke(context.Background(), "fetch-weather-data", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestInvoke_EmptyFunctionName(t *testing.T) {
	c := NewClient("http://localhost", "k")
	_, err := c.Invoke(context.Background(), "", nil)
	require.Error(t, err)
}

func TestModerateContent_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/content-moderation", r.URL.Path)
		json.NewEncoder(w).Encode(ModerationResult{Approved: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	ok, err := c.ModerateContent(context.Background(), "title", "body")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestModerateContent_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ModerationResult{Approved: false, Flags: []string{"spam"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	ok, err := c.ModerateContent(context.Background(), "title", "body")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestModerateContent_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.ModerateContent(context.Background(), "t", "c")
	require.Error(t, err)
}

func TestWithRateLimit_AllowsBurst(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", WithRateLimit(100, 5))
	for i := 0; i < 3; i++ {
		_, err := c.Invoke(context.Background(), "fetch-rss", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
