package assistant

import (
	"context"
)

// LLMProvider is the boundary to the model inference endpoint. The
// transcript goes out in full on every call; the reply is one
// assistant turn of plain text which may embed tool-call directives
// (see parser.go). Providers never interpret directives themselves.
type LLMProvider interface {
	Chat(ctx context.Context, turns []Turn) (string, error)
}
