package gemini

import (
	"context"
	"fmt"
	"strings"
)

// MockReply answers any prompt containing Contains with Text.
type MockReply struct {
	Contains string
	Text     string
}

// MockTextGenerator is an offline TextGenerator for local runs without an API key.
type MockTextGenerator struct {
	replies []MockReply
}

func NewMockTextGenerator(replies []MockReply) *MockTextGenerator {
	return &MockTextGenerator{replies: replies}
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	for _, r := range m.replies {
		if strings.Contains(prompt, r.Contains) {
			return r.Text, nil
		}
	}

	return "", fmt.Errorf("mock generator: no reply for prompt %.40q", prompt)
}

// OfflineReplies are canned answers for the planner's three prompt kinds.
func OfflineReplies() []MockReply {
	return []MockReply{
		{
			Contains: "Today's plan",
			Text:     `[{"name":"Kuromon Market","reason":"street food on the way","type":"spot"}]`,
		},
		{
			Contains: "eat near",
			Text:     "```json\n" + `[{"name":"Local Kissaten","type":"cafe","rating":"4.3","comment":"retro coffee and pudding"}]` + "\n```",
		},
		{
			Contains: "highlights",
			Text:     "A lively spot worth a slow wander. Bring an appetite and a camera.",
		},
	}
}
