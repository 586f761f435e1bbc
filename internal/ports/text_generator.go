package ports

import "context"

// Contract with the external generative-language service.
type TextGenerator interface {
	// Return the model's text answer for a single prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Cache for generated answers keyed by kind and subject (e.g. "food", spot name).
type SuggestionCache interface {
	// Return the cached answer; ok is false on a miss.
	Get(ctx context.Context, kind, subject string) (value string, ok bool, err error)
	Set(ctx context.Context, kind, subject, value string) error
	Delete(ctx context.Context, kind, subject string) error
}
