package llm

import "context"

// TextGenerator produces model output for a system instruction plus a user
// prompt. Implementations must ask the provider for JSON output; callers
// still validate the shape before trusting it.
type TextGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

// Closer is implemented by generators holding network resources.
type Closer interface {
	Close() error
}
