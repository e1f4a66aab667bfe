package assistant

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider implements LLMProvider using the Anthropic API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
func NewAnthropicProvider(apiKey string, model string) *AnthropicProvider {
	if model == "" {
		model = string(anthropic.ModelClaude3Dot5Sonnet20240620)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey, anthropic.WithHTTPClient(httpClient)),
		model:  model,
	}
}

func (p *AnthropicProvider) Chat(ctx context.Context, turns []Turn) (string, error) {
	var messages []anthropic.Message
	var systemPrompt string

	// The system turn is sent separately; everything else becomes an
	// alternating user/assistant message list. Tool results count as
	// user input.
	for _, turn := range turns {
		if turn.Role == RoleSystem {
			systemPrompt += turn.Content + "\n"
			continue
		}

		role := anthropic.RoleUser
		if turn.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}

		messages = append(messages, anthropic.Message{
			Role: role,
			Content: []anthropic.MessageContent{
				anthropic.NewTextMessageContent(turn.Content),
			},
		})
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(p.model),
		Messages:  messages,
		MaxTokens: 4096,
		System:    systemPrompt,
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic completion error: %w", err)
	}

	var reply string
	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText && content.Text != nil {
			reply += *content.Text
		}
	}
	return reply, nil
}
