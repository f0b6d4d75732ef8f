package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendAndParseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ghostregime-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "abc", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(2*time.Second), WithUserAgent("ghostregime-test"))
	var out struct {
		Value int `json:"value"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"token": {"abc"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var body []byte
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &body)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Contains(t, se.Error(), "rate limited")
	assert.True(t, se.Throttled())
}

func TestClientMaxBodyTruncatesRawPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Date,Close\n2024-01-02,1\n"))
	}))
	defer srv.Close()

	var body []byte
	err := NewClient(WithMaxBody(10)).SendAndParse(context.Background(), &RequestOptions{URL: srv.URL}, &body)
	require.NoError(t, err)
	assert.Equal(t, "Date,Close", string(body))
}
