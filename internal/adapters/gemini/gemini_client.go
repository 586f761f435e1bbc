package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"itinerary-planner-service/internal/platform/obs"
	"itinerary-planner-service/internal/ports"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash-preview-09-2025"
)

var ErrEmptyAnswer = errors.New("gemini: empty answer")

// GeminiClient implements TextGenerator using the Gemini generateContent API.
//
// Transient failures are retried with backoff. The client is safe for concurrent use.
type GeminiClient struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	model       string
	maxAttempts int
	backoff     time.Duration
}

func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	return NewGeminiClientWithURL(apiKey, model, defaultBaseURL)
}

// NewGeminiClientWithURL points the client at another host, e.g. an httptest server.
func NewGeminiClientWithURL(apiKey, model, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	if model == "" {
		model = defaultModel
	}

	return &GeminiClient{
		session:     &http.Client{Timeout: 30 * time.Second},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxAttempts: 4,
		backoff:     250 * time.Millisecond,
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Send a single-turn prompt and return the first candidate's text.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (_ string, err error) {
	defer obs.Time(ctx, "gemini.GenerateText")(&err)

	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini generate: prompt must be non-empty")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))

	resp, err := g.post(ctx, endpoint, payload)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini generate: decode response: %w", err)
	}

	if len(out.Candidates) == 0 {
		if reason := out.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyAnswer, reason)
		}
		return "", ErrEmptyAnswer
	}

	first := out.Candidates[0]
	var text string
	if len(first.Content.Parts) > 0 {
		text = strings.TrimSpace(first.Content.Parts[0].Text)
	}
	if text == "" {
		if first.FinishReason != "" {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyAnswer, first.FinishReason)
		}
		return "", ErrEmptyAnswer
	}

	return text, nil
}

var (
	_ ports.TextGenerator = (*GeminiClient)(nil)
	_ ports.TextGenerator = (*MockTextGenerator)(nil)
)
