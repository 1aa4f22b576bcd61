package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateJoinsSentences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "gtx", q.Get("client"))
		assert.Equal(t, "auto", q.Get("sl"))
		assert.Equal(t, "pt-br", q.Get("tl"))
		assert.Equal(t, "Hello. How are you?", q.Get("q"))
		_, _ = w.Write([]byte(`[[["Olá. ","Hello. ",null,null,10],["Como vai?","How are you?",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	out, err := c.Translate(context.Background(), "Hello. How are you?", "pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "Olá. Como vai?", out)
}

func TestTranslateStatusError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	_, err := c.Translate(context.Background(), "hi", "fr")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "slow down", apiErr.Body)
	assert.Equal(t, int32(1), hits.Load(), "no retries")
}

func TestTranslateEmptyAndMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":     `[[["",  "hi"]],null,"en"]`,
		"malformed": `{"error":"nope"}`,
		"no parts":  `[]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := New(WithBaseURL(srv.URL)).Translate(context.Background(), "hi", "fr")
			require.Error(t, err)
			if name == "empty" {
				assert.True(t, errors.Is(err, ErrEmptyResult))
			}
		})
	}
}

func TestTranslateHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := New(WithBaseURL(srv.URL)).Translate(ctx, "hi", "fr")

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTranslateRateLimitWaitRespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[["salut","hi"]]]`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithRateLimit(0.1, 1))
	_, err := c.Translate(context.Background(), "hi", "fr")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Translate(ctx, "hi", "fr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}
