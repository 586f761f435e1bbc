package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "SUPERSECRETKEY"

func newTestClient(t *testing.T, baseURL string) *GeminiClient {
	t.Helper()

	c, err := NewGeminiClientWithURL(testKey, "test-model", baseURL)
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func TestGeminiClient_GenerateText(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	var gotReq generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  hello Osaka \n"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "say hi")
	require.NoError(t, err)

	assert.Equal(t, "hello Osaka", got)
	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, testKey, gotKey)
	assert.Empty(t, gotQuery, "key must not travel in the URL")
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "say hi", gotReq.Contents[0].Parts[0].Text)
}

func TestGeminiClient_NetworkErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	c := newTestClient(t, baseURL)
	c.maxAttempts = 1

	_, err := c.GenerateText(context.Background(), "p")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testKey)
	assert.NotContains(t, err.Error(), "key=")
}

func TestGeminiClient_DecodesAPIError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "p")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
	assert.Equal(t, "INVALID_ARGUMENT", apiErr.Status)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", apiErr.Message)
	assert.NotContains(t, err.Error(), testKey)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestGeminiClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiClient_GivesUpOnLongRetryAfter(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "p")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, time.Hour, apiErr.RetryAfter)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGeminiClient_PromptBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GenerateText(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestRetryDelay(t *testing.T) {
	c := &GeminiClient{maxAttempts: 4, backoff: 100 * time.Millisecond}

	wait, ok := c.retryDelay(1, &APIError{Code: http.StatusTooManyRequests, RetryAfter: 2 * time.Second})
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, wait, "Retry-After wins over backoff")

	wait, ok = c.retryDelay(3, &APIError{Code: http.StatusBadGateway})
	assert.True(t, ok)
	assert.Equal(t, 400*time.Millisecond, wait)

	_, ok = c.retryDelay(4, &APIError{Code: http.StatusBadGateway})
	assert.False(t, ok, "attempts exhausted")

	_, ok = c.retryDelay(1, &APIError{Code: http.StatusForbidden})
	assert.False(t, ok)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 7*time.Second, parseRetryAfter("7", now))
	assert.Equal(t, 90*time.Second, parseRetryAfter(now.Add(90*time.Second).Format(http.TimeFormat), now))
	assert.Zero(t, parseRetryAfter("", now))
	assert.Zero(t, parseRetryAfter("soon", now))
	assert.Zero(t, parseRetryAfter(now.Add(-time.Minute).Format(http.TimeFormat), now))
}

func TestReadAPIError_RetryInfoDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusTooManyRequests)
	_, _ = rec.WriteString(`{"error":{"code":429,"message":"slow down","status":"RESOURCE_EXHAUSTED",` +
		`"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"12s"}]}}`)

	apiErr := readAPIError(rec.Result())
	assert.Equal(t, 12*time.Second, apiErr.RetryAfter)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient("", "")
	assert.Error(t, err)
}

func TestMockTextGenerator(t *testing.T) {
	m := NewMockTextGenerator(OfflineReplies())

	got, err := m.GenerateText(context.Background(), "Recommend places to eat near \"Namba\"")
	require.NoError(t, err)
	assert.Contains(t, got, "Kissaten")

	_, err = m.GenerateText(context.Background(), "unrelated")
	assert.Error(t, err)
}
