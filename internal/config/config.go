package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RibirX/ribir-bot/internal/errors"
)

const (
	configDirName  = ".ribir-bot"
	configFileName = "config.json"
)

// DefaultModels is the Gemini fallback chain, tried in order.
var DefaultModels = []string{
	"gemini-3-flash-preview",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-3-pro-preview",
	"gemini-2.5-pro",
}

// Config is the user-level configuration stored in ~/.ribir-bot/config.json.
// Tokens can also come from the environment, which wins over the file.
type Config struct {
	PathFile     string   `json:"-"`
	Language     string   `json:"language"`
	GithubToken  string   `json:"github_token,omitempty"`
	GeminiAPIKey string   `json:"gemini_api_key,omitempty"`
	Owner        string   `json:"github_owner,omitempty"`
	Repo         string   `json:"github_repo,omitempty"`
	Models       []string `json:"gemini_models,omitempty"`
}

func LoadConfig(homeDir string) (*Config, error) {
	configDir := filepath.Join(homeDir, configDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	configPath := filepath.Join(configDir, configFileName)
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	cfg := &Config{PathFile: configPath}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}
	if err := os.WriteFile(cfg.PathFile, data, 0600); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	cfg := &Config{
		PathFile: configPath,
		Language: "en",
		Models:   append([]string{}, DefaultModels...),
	}
	applyEnvOverrides(cfg)

	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GithubToken = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		// Actions-style "owner/repo"
		if owner, name, ok := splitRepoSlug(repo); ok {
			cfg.Owner = owner
			cfg.Repo = name
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = append([]string{}, DefaultModels...)
	}
}

func splitRepoSlug(slug string) (string, string, bool) {
	for i := 0; i < len(slug); i++ {
		if slug[i] == '/' {
			if i == 0 || i == len(slug)-1 {
				return "", "", false
			}
			return slug[:i], slug[i+1:], true
		}
	}
	return "", "", false
}

// ValidateForVCS checks that the config can talk to GitHub.
func (c *Config) ValidateForVCS() error {
	if c.GithubToken == "" {
		return errors.ErrTokenMissing
	}
	if c.Owner == "" || c.Repo == "" {
		return errors.ErrRepoNotConfigured
	}
	return nil
}

// ValidateForAI checks that the config can talk to Gemini.
func (c *Config) ValidateForAI() error {
	if c.GeminiAPIKey == "" {
		return errors.ErrAPIKeyMissing
	}
	return nil
}
