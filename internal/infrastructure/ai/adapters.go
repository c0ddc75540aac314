package ai

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

const (
	anthropicVersion          = "2023-06-01"
	defaultAnthropicMaxTokens = 8192
)

// lookupEnv is replaced in tests.
var lookupEnv = os.Getenv

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

func buildChatCompletionRequest(def domain.ProviderDefinition, req ports.CompletionRequest) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})
	return json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   def.MaxTokens,
		Temperature: def.Temperature,
	})
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func setOpenAIHeaders(req *http.Request, def domain.ProviderDefinition) error {
	key, err := credential(def)
	if err != nil {
		return err
	}
	if key != "" {
		req.Header.Set("authorization", "Bearer "+key)
	}
	if def.OrgEnvVar != "" {
		if org := lookupEnv(def.OrgEnvVar); org != "" {
			req.Header.Set("OpenAI-Organization", org)
		}
	}
	return nil
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

func buildAnthropicRequest(def domain.ProviderDefinition, req ports.CompletionRequest) ([]byte, error) {
	maxTokens := def.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	return json.Marshal(anthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []chatMessage{{Role: "user", Content: req.User}},
		Temperature: def.Temperature,
	})
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	var parts []string
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "")), nil
}

func setAnthropicHeaders(req *http.Request, def domain.ProviderDefinition) error {
	key, err := credential(def)
	if err != nil {
		return err
	}
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}
