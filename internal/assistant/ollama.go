package assistant

import (
	openai "github.com/sashabaranov/go-openai"
)

// NewOllamaProvider creates an OpenAI-compatible provider pointed at a
// local Ollama host.
func NewOllamaProvider(host string, model string) *OpenAIProvider {
	if host == "" {
		host = "http://localhost:11434/v1"
	}
	if model == "" {
		model = "llama3"
	}

	config := openai.DefaultConfig("ollama") // Ollama ignores the API key
	config.BaseURL = host

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}
