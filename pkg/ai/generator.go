package ai

import "context"

// TextGenerator produces guide prose from a system prompt and user question.
// The backend is treated as an opaque text generator; callers bound its
// latency through ctx.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
