package assistant

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements LLMProvider using Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider instance.
func NewGeminiProvider(ctx context.Context, apiKey string, model string) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-2.5-pro"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Chat(ctx context.Context, turns []Turn) (string, error) {
	model := p.client.GenerativeModel(p.model)
	cs := model.StartChat()

	// Gemini takes the system prompt on the model, a user/model history
	// on the chat session, and the newest message via SendMessage.
	for _, turn := range turns {
		if turn.Role == RoleSystem {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(turn.Content)},
			}
			continue
		}

		role := "user"
		if turn.Role == RoleAssistant {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	if len(cs.History) == 0 {
		return "", fmt.Errorf("transcript has no sendable turns")
	}
	last := cs.History[len(cs.History)-1]
	if last.Role != "user" {
		return "", fmt.Errorf("last turn was not from the user")
	}
	cs.History = cs.History[:len(cs.History)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var reply string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			reply += string(txt)
		}
	}
	return reply, nil
}
