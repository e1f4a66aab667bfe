package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reinhart/codeAgent/internal/assistant"
	"github.com/reinhart/codeAgent/internal/configuration"
	"github.com/reinhart/codeAgent/internal/logger"
	"github.com/reinhart/codeAgent/internal/safety"
	"github.com/reinhart/codeAgent/internal/ui"
)

func main() {
	cfg, err := configuration.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger.Init()
	if cfg.Agent.Debug {
		logger.DebugMode = true
	}
	if logger.DebugMode {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal: could not open debug.log:", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.Debug("logger initialized")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	root := cfg.Workspace.Root
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			fmt.Printf("Error resolving working directory: %v\n", err)
			os.Exit(1)
		}
	}
	workspace, err := assistant.NewWorkspace(root)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	snapshots, err := safety.NewSnapshotService(cfg.Workspace.BackupDir)
	if err != nil {
		fmt.Printf("Warning: failed to initialize snapshot service: %v\n", err)
	}

	registry := assistant.NewToolRegistry()
	for _, tool := range []assistant.Tool{
		&assistant.ReadFileTool{WS: workspace},
		&assistant.ListFilesTool{WS: workspace},
		&assistant.EditFileTool{WS: workspace, Snapshot: snapshots},
		&assistant.UndoEditTool{Snapshot: snapshots},
	} {
		if err := registry.Register(tool); err != nil {
			fmt.Printf("Error registering tools: %v\n", err)
			os.Exit(1)
		}
	}

	systemPrompt := assistant.BuildSystemPrompt(registry.Specs())
	agent := assistant.NewAgent(provider, registry, systemPrompt, cfg.Agent.MaxTurns)

	p := tea.NewProgram(ui.NewModel(agent), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running CodeAgent: %v\n", err)
		os.Exit(1)
	}
}

func buildProvider(cfg *configuration.Config) (assistant.LLMProvider, error) {
	providerType := strings.ToLower(cfg.LLM.Provider)
	logger.Debug("selected provider: %s", providerType)

	switch providerType {
	case "openai":
		key := cfg.LLM.OpenAIKey
		if key == "" {
			return nil, missingKeyError("OPENAI_API_KEY", "openai_api_key")
		}
		return assistant.NewOpenAIProvider(key, cfg.LLM.OpenAIModel), nil

	case "anthropic":
		key := cfg.LLM.AnthropicKey
		if key == "" {
			return nil, missingKeyError("ANTHROPIC_API_KEY", "anthropic_api_key")
		}
		return assistant.NewAnthropicProvider(key, cfg.LLM.AnthropicModel), nil

	case "gemini":
		key := cfg.LLM.GeminiKey
		if key == "" {
			return nil, missingKeyError("GEMINI_API_KEY", "gemini_api_key")
		}
		return assistant.NewGeminiProvider(context.Background(), key, cfg.LLM.GeminiModel)

	case "ollama":
		return assistant.NewOllamaProvider(cfg.LLM.OllamaHost, cfg.LLM.OllamaModel), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, anthropic, gemini, ollama)", cfg.LLM.Provider)
	}
}

func missingKeyError(envVar, tomlKey string) error {
	return fmt.Errorf("%s not set; export it or add %s to ~/.config/codeagent/config.toml", envVar, tomlKey)
}
