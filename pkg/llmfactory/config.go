package llmfactory

import (
	"slices"

	"github.com/effective-security/x/configloader"
)

// Config describes the available LLM providers and the model routing for
// tools and assistants.
type Config struct {
	// Providers lists the configured provider endpoints.
	Providers []*ProviderConfig `json:"providers" yaml:"providers"`
	// DefaultProvider names the provider used when none is requested.
	DefaultProvider string `json:"default_provider" yaml:"default_provider"`
	// ToolModels maps a tool name to its preferred models, in order.
	// The `default` key applies to tools without an entry.
	ToolModels map[string][]string `json:"tool_models" yaml:"tool_models"`
	// AssistantModels maps an assistant name to its preferred models, in
	// order. The `default` key applies to assistants without an entry.
	AssistantModels map[string][]string `json:"assistant_models" yaml:"assistant_models"`
}

// ProviderConfig describes a single LLM provider endpoint.
type ProviderConfig struct {
	Name            string       `json:"name" yaml:"name"`
	Token           string       `json:"token,omitempty" yaml:"token,omitempty"`
	DefaultModel    string       `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	EmbeddingModel  string       `json:"embedding_model,omitempty" yaml:"embedding_model,omitempty"`
	AvailableModels []string     `json:"available_models,omitempty" yaml:"available_models,omitempty"`
	OpenAI          OpenAIConfig `json:"open_ai" yaml:"open_ai"`
}

// OpenAIConfig carries the endpoint options.
type OpenAIConfig struct {
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	// APIType selects the adapter: OPEN_AI|AZURE|ANTHROPIC|PERPLEXITY
	APIType string `json:"api_type,omitempty" yaml:"api_type,omitempty"`
	// OrgID selects which organization's quota and billing to use.
	OrgID string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
}

// FindModel returns the first preferred model the provider actually offers,
// falling back to the provider default.
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

// LoadConfig reads the YAML config, expanding ${ENV} references.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
