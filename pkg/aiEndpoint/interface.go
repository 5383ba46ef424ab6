package aiEndpoint

import "context"

// AIEngine defines the interface for interacting with an AI endpoint.
// Implementations handle the transport details (REST, SDK) for a
// generative-language backend.
type AIEngine interface {
	// SendPrompt sends a single-turn prompt and returns the completion text.
	SendPrompt(ctx context.Context, prompt string) (string, error)
	// Name identifies the backend in logs.
	Name() string
}

// TokenCounter is implemented by engines that can report how many tokens a
// prompt consumes before it is sent.
type TokenCounter interface {
	CountTokens(ctx context.Context, prompt string) (int, error)
}
