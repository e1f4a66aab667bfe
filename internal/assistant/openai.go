package assistant

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements LLMProvider using the OpenAI API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	if model == "" {
		model = openai.GPT5Mini
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = httpClient

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Chat replays the transcript and returns the assistant's text reply.
func (p *OpenAIProvider) Chat(ctx context.Context, turns []Turn) (string, error) {
	const maxRetries = 3
	var lastErr error

	req := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(turns),
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay(attempt)):
			case <-ctx.Done():
				return "", fmt.Errorf("openai completion error (context): %w", ctx.Err())
			}
		}

		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", fmt.Errorf("openai completion error (context): %w", ctx.Err())
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty choices in response")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("openai completion failed after %d attempts: %w", maxRetries, lastErr)
}

// retryDelay is the exponential backoff before retry attempt n:
// 1s, 2s, 4s, ...
func retryDelay(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

func toOpenAIMessages(turns []Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		role := openai.ChatMessageRoleUser
		switch turn.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case RoleToolResult:
			// Tool results travel back as user turns; the wire format
			// in the content already identifies them to the model.
			role = openai.ChatMessageRoleUser
		}
		messages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		}
	}
	return messages
}
