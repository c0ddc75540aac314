package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		DefaultProvider: "openai",
		Providers: []domain.ProviderDefinition{
			{
				Name:     "openai",
				APIStyle: domain.APIStyleOpenAI,
				Endpoint: "https://api.openai.com/v1/chat/completions",
				Models:   domain.ModelDefaults{Fast: "gpt-5-mini", Strong: "gpt-5"},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*domain.Config) {}},
		{name: "no providers", mutate: func(c *domain.Config) { c.Providers = nil }, wantErr: "at least one provider"},
		{name: "unknown default", mutate: func(c *domain.Config) { c.DefaultProvider = "bard" }, wantErr: "default provider bard"},
		{name: "bad endpoint", mutate: func(c *domain.Config) { c.Providers[0].Endpoint = "api.openai.com" }, wantErr: "absolute URL"},
		{name: "bad api style", mutate: func(c *domain.Config) { c.Providers[0].APIStyle = "grpc" }, wantErr: "api_style"},
		{name: "no models", mutate: func(c *domain.Config) { c.Providers[0].Models = domain.ModelDefaults{} }, wantErr: "models.fast"},
		{name: "duplicate provider", mutate: func(c *domain.Config) { c.Providers = append(c.Providers, c.Providers[0]) }, wantErr: "declared twice"},
		{name: "negative timeout", mutate: func(c *domain.Config) { c.Python.RuntimeTimeoutSeconds = -1 }, wantErr: "runtime_timeout"},
		{name: "empty alias", mutate: func(c *domain.Config) { c.Dependencies.Aliases = map[string]string{"cv2": ""} }, wantErr: "aliases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
