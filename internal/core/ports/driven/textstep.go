package driven

import "context"

// TextStep is one text transform in a preprocessing pipeline.
// Process must be a deterministic function of its input.
type TextStep interface {
	// Name identifies the step in errors and run descriptions.
	Name() string

	// Process transforms text. The output feeds the next step.
	Process(ctx context.Context, text string) (string, error)
}

// KeywordExtractor ranks the salient terms of a text.
type KeywordExtractor interface {
	// Extract returns at most n keywords, best first.
	// Degenerate input returns domain.ErrNoKeywords.
	Extract(text string, n int) ([]string, error)
}
