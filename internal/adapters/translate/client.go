package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBase = "https://translate.googleapis.com/translate_a/single"

// Client calls the public Google translate endpoint with automatic source
// language detection. It never retries: one Translate is one request.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("translate rate limit: %w", err)
		}
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", strings.ToLower(targetLang))
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate http: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", &APIError{Status: res.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&raw); err != nil {
		return "", fmt.Errorf("translate decode: %w", err)
	}
	out, err := joinSentences(raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyResult
	}
	return out, nil
}

// joinSentences reads the first element of the response, a list of
// [translated, source, ...] tuples, and concatenates the translations.
func joinSentences(raw []json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("translate decode: unexpected top-level structure")
	}
	var sentences [][]any
	if err := json.Unmarshal(raw[0], &sentences); err != nil {
		return "", fmt.Errorf("translate decode: unexpected sentences structure: %w", err)
	}
	var b strings.Builder
	for _, part := range sentences {
		if len(part) == 0 {
			continue
		}
		if s, ok := part[0].(string); ok {
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
