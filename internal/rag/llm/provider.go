package llm

import (
	"context"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
)

// Provider is a chat-completion backend. Messages arrive in order, system
// turns first, and the reply is the raw model text.
type Provider interface {
	ChatCompletion(ctx context.Context, messages []docModel.ConversationTurn, temperature float64, maxTokens int64) (string, error)
}
