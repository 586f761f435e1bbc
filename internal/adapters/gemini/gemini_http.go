package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Longest server-requested wait we are willing to sit out before giving up.
const maxRetryAfter = 30 * time.Second

// APIError is a non-2xx answer from the Gemini API, decoded from its
// {"error": {"code", "message", "status", "details"}} envelope.
type APIError struct {
	Code    int
	Status  string
	Message string
	// Server-requested wait from Retry-After or a RetryInfo detail; zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini api %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini api %d: %s", e.Code, e.Message)
}

func (e *APIError) temporary() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type errorEnvelope struct {
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

// readAPIError consumes and closes a failed response.
func readAPIError(resp *http.Response) *APIError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))

	apiErr := &APIError{
		Code:       resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	apiErr.Message = env.Error.Message
	apiErr.Status = env.Error.Status
	if apiErr.RetryAfter == 0 {
		for _, d := range env.Error.Details {
			if !strings.HasSuffix(d.Type, "google.rpc.RetryInfo") {
				continue
			}
			if wait, err := time.ParseDuration(d.RetryDelay); err == nil && wait > 0 {
				apiErr.RetryAfter = wait
			}
		}
	}
	return apiErr
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// send issues one generateContent call. The key travels only in the
// x-goog-api-key header, and transport errors are stripped of the URL.
func (g *GeminiClient) send(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, fmt.Errorf("%s %s: %w", ue.Op, g.model, ue.Err)
		}
		return nil, err
	}

	if resp.StatusCode/100 != 2 {
		return nil, readAPIError(resp)
	}
	return resp, nil
}

// post sends the payload, retrying throttling, 5xx answers and network
// failures. A 429 waits for the server's Retry-After when one is given.
func (g *GeminiClient) post(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	for attempt := 1; ; attempt++ {
		resp, err := g.send(ctx, endpoint, payload)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		wait, ok := g.retryDelay(attempt, err)
		if !ok {
			return nil, err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryDelay decides whether attempt may be followed by another and how long to wait.
func (g *GeminiClient) retryDelay(attempt int, err error) (time.Duration, bool) {
	if attempt >= g.maxAttempts {
		return 0, false
	}

	backoff := g.backoff << (attempt - 1)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if !apiErr.temporary() {
			return 0, false
		}
		if apiErr.RetryAfter > 0 {
			if apiErr.RetryAfter > maxRetryAfter {
				return 0, false
			}
			return apiErr.RetryAfter, true
		}
		return backoff, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return backoff, true
	}
	return 0, false
}
