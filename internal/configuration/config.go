package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Agent     AgentConfig     `toml:"agent"`
	Workspace WorkspaceConfig `toml:"workspace"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	OpenAIKey      string `toml:"openai_api_key"`
	AnthropicKey   string `toml:"anthropic_api_key"`
	GeminiKey      string `toml:"gemini_api_key"`
	OpenAIModel    string `toml:"openai_model"`
	AnthropicModel string `toml:"anthropic_model"`
	GeminiModel    string `toml:"gemini_model"`
	OllamaHost     string `toml:"ollama_host"`
	OllamaModel    string `toml:"ollama_model"`
}

type AgentConfig struct {
	MaxTurns int  `toml:"max_turns"`
	Debug    bool `toml:"debug"`
}

type WorkspaceConfig struct {
	// Root is the directory the file tools operate in. Empty means
	// the process working directory.
	Root string `toml:"root"`
	// BackupDir holds pre-edit snapshots. Empty means the default
	// under ~/.local/share/codeAgent.
	BackupDir string `toml:"backup_dir"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "openai",
		},
		Agent: AgentConfig{
			MaxTurns: 25,
			Debug:    false,
		},
	}
}

// LoadConfig loads configuration from file with fallback to defaults.
func LoadConfig() (*Config, error) {
	config := DefaultConfig()

	// Checked in order, first hit wins.
	configPaths := []string{
		"./config.toml",
		filepath.Join(os.Getenv("HOME"), ".config", "codeagent", "config.toml"),
		"/etc/codeagent/config.toml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			break
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides lets environment variables win over the file.
func applyEnvOverrides(config *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.LLM.OpenAIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.GeminiKey = key
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		config.LLM.OllamaHost = host
	}
	if root := os.Getenv("CODEAGENT_ROOT"); root != "" {
		config.Workspace.Root = root
	}
	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Agent.Debug = true
	}
}
