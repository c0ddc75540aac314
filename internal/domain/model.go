package domain

// APIStyle selects the wire format a provider speaks.
type APIStyle string

const (
	// APIStyleOpenAI is the chat completions format (OpenAI, Ollama, compatible gateways).
	APIStyleOpenAI APIStyle = "openai"
	// APIStyleAnthropic is the messages format.
	APIStyleAnthropic APIStyle = "anthropic"
)

// ProviderDefinition describes a model backend declared in the config file.
type ProviderDefinition struct {
	Name              string        `yaml:"name"`
	APIStyle          APIStyle      `yaml:"api_style"`
	Endpoint          string        `yaml:"endpoint"`
	AuthEnvVar        string        `yaml:"auth_env_var,omitempty"`
	OrgEnvVar         string        `yaml:"org_env_var,omitempty"`
	Models            ModelDefaults `yaml:"models"`
	MaxTokens         int           `yaml:"max_tokens,omitempty"`
	Temperature       *float64      `yaml:"temperature,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
}

// ModelDefaults is the provider's default model per tier.
type ModelDefaults struct {
	Fast   string `yaml:"fast"`
	Strong string `yaml:"strong"`
}

// ForTier returns the model configured for tier, falling back to the other tier.
func (m ModelDefaults) ForTier(tier ModelTier) string {
	if tier == TierFast && m.Fast != "" {
		return m.Fast
	}
	if m.Strong != "" {
		return m.Strong
	}
	return m.Fast
}

// RequiresCredential reports whether the provider needs an API key.
func (p ProviderDefinition) RequiresCredential() bool {
	return p.AuthEnvVar != ""
}

// ModelFor picks the model for a mode: the explicit override wins, then the mode's tier.
func (p ProviderDefinition) ModelFor(mode Mode, override string) string {
	if override != "" {
		return override
	}
	return p.Models.ForTier(mode.Profile().Tier)
}
