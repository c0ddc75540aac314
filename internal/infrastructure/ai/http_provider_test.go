package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	previous := lookupEnv
	lookupEnv = func(key string) string { return values[key] }
	t.Cleanup(func() { lookupEnv = previous })
}

func newProvider(t *testing.T, def domain.ProviderDefinition) ports.Provider {
	t.Helper()
	provider, err := NewFactory(5*time.Second, nil).ForProvider(def)
	require.NoError(t, err)
	return provider
}

func TestOpenAIProviderRequest(t *testing.T) {
	withEnv(t, map[string]string{"TEST_OPENAI_KEY": "sk-test", "TEST_ORG": "org-1"})

	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello  "}}]}`))
	}))
	defer server.Close()

	provider := newProvider(t, domain.ProviderDefinition{
		Name:       "openai",
		APIStyle:   domain.APIStyleOpenAI,
		Endpoint:   server.URL,
		AuthEnvVar: "TEST_OPENAI_KEY",
		OrgEnvVar:  "TEST_ORG",
	})
	resp, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "gpt-5", System: "sys", User: "code"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "gpt-5", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "code", captured.Messages[1].Content)
}

func TestAnthropicProviderRequest(t *testing.T) {
	withEnv(t, map[string]string{"TEST_ANTHROPIC_KEY": "ak-test"})

	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"tool_use"},{"type":"text","text":"part two"}]}`))
	}))
	defer server.Close()

	provider := newProvider(t, domain.ProviderDefinition{
		Name:       "anthropic",
		APIStyle:   domain.APIStyleAnthropic,
		Endpoint:   server.URL,
		AuthEnvVar: "TEST_ANTHROPIC_KEY",
	})
	resp, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "claude", System: "sys", User: "code"})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", resp.Text)
	assert.Equal(t, "sys", captured.System)
	assert.Equal(t, defaultAnthropicMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
}

func TestOllamaProviderSendsNoAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	provider := newProvider(t, domain.ProviderDefinition{Name: "ollama", APIStyle: domain.APIStyleOpenAI, Endpoint: server.URL})
	resp, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "llama3.1", User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		retryAfter string
		wantKind   domain.BackendErrorKind
		wantDelay  time.Duration
		wantMsg    string
	}{
		{name: "unauthorized", status: 401, body: `{"error":{"message":"Incorrect API key"}}`, wantKind: domain.BackendAuth, wantMsg: "Incorrect API key"},
		{name: "forbidden", status: 403, body: `{"error":"nope"}`, wantKind: domain.BackendAuth, wantMsg: "nope"},
		{name: "rate limited", status: 429, body: `{}`, retryAfter: "7", wantKind: domain.BackendRateLimit, wantDelay: 7 * time.Second},
		{name: "server error", status: 503, body: "upstream down", wantKind: domain.BackendNetwork, wantMsg: "upstream down"},
		{name: "bad request", status: 400, body: `{"error":{"message":"unknown model"}}`, wantKind: domain.BackendRequest, wantMsg: "unknown model"},
		{name: "undecodable body", status: 200, body: "<html>", wantKind: domain.BackendMalformed},
		{name: "empty choices", status: 200, body: `{"choices":[]}`, wantKind: domain.BackendMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := newProvider(t, domain.ProviderDefinition{Name: "p", Endpoint: server.URL})
			_, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "m", User: "x"})

			var backendErr *domain.BackendError
			require.True(t, errors.As(err, &backendErr), "got %v", err)
			assert.Equal(t, tt.wantKind, backendErr.Kind)
			assert.Equal(t, tt.wantDelay, backendErr.RetryAfter)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, backendErr.Message)
			}
		})
	}
}

func TestProviderMissingCredential(t *testing.T) {
	withEnv(t, map[string]string{})
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	provider := newProvider(t, domain.ProviderDefinition{Name: "openai", Endpoint: server.URL, AuthEnvVar: "MISSING_KEY"})
	_, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "m"})

	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.BackendAuth, backendErr.Kind)
	assert.False(t, called)
}

func TestProviderNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	provider := newProvider(t, domain.ProviderDefinition{Name: "p", Endpoint: url})
	_, err := provider.Complete(context.Background(), ports.CompletionRequest{Model: "m"})

	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.BackendNetwork, backendErr.Kind)
	assert.True(t, backendErr.Retryable())
}

func TestFactoryRejectsBadDefinitions(t *testing.T) {
	factory := NewFactory(time.Second, nil)
	_, err := factory.ForProvider(domain.ProviderDefinition{Name: "x"})
	assert.Error(t, err)
	_, err = factory.ForProvider(domain.ProviderDefinition{Name: "x", Endpoint: "http://x", APIStyle: "grpc"})
	assert.Error(t, err)
}

func TestFactorySharesLimiterPerProvider(t *testing.T) {
	factory := NewFactory(time.Second, nil)
	def := domain.ProviderDefinition{Name: "openai", Endpoint: "http://x", RequestsPerMinute: 60}
	assert.Same(t, factory.limiterFor(def), factory.limiterFor(def))
	assert.Nil(t, factory.limiterFor(domain.ProviderDefinition{Name: "ollama"}))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("soon"))
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	assert.InDelta(t, float64(10*time.Second), float64(parseRetryAfter(future)), float64(2*time.Second))
}
