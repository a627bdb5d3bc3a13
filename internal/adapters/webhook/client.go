package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client posts JSON payloads to a single opaque endpoint. One attempt per
// call: the delivery policy is at-most-once, so there is no retry machinery
// here. A client-side rate limiter keeps a burst of submissions from hammering
// the sink.
type Client struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

func NewClient(url string, rps int) *Client {
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		url: url,
		hc:  &http.Client{Timeout: 10 * time.Second},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (c *Client) URL() string { return c.url }

// Post sends one JSON body and reports the HTTP status. The response body is
// discarded unread: the sink is opaque and nothing in it may influence the
// user-facing flow.
func (c *Client) Post(ctx context.Context, payload any) (int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "feedback-gate/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("sink status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
