package llm

import (
	"context"
	"errors"

	"kitchen-assistant/internal/shared"
)

// ErrNoContent indicates the provider returned an empty response.
var ErrNoContent = errors.New("llm: no content generated")

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
