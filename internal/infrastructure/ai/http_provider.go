package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

const maxResponseBytes = 10 * 1024 * 1024

type httpProvider struct {
	def        domain.ProviderDefinition
	httpClient *http.Client
	adapter    providerAdapter
	limiter    *rate.Limiter
	logger     ports.Logger
}

type providerAdapter struct {
	buildRequest  func(domain.ProviderDefinition, ports.CompletionRequest) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ProviderDefinition) error
}

func (p *httpProvider) Name() string {
	return p.def.Name
}

// Complete sends one request. Every failure is a *domain.BackendError.
func (p *httpProvider) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return ports.CompletionResponse{}, p.fail(domain.BackendNetwork, 0, "rate limiter", err)
		}
	}

	body, err := p.adapter.buildRequest(p.def, req)
	if err != nil {
		return ports.CompletionResponse{}, p.fail(domain.BackendRequest, 0, "encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.def.Endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.CompletionResponse{}, p.fail(domain.BackendRequest, 0, "build request", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := p.adapter.setHeaders(httpReq, p.def); err != nil {
		return ports.CompletionResponse{}, err
	}

	if p.logger != nil {
		p.logger.Debug("sending model request", map[string]interface{}{
			"provider": p.def.Name,
			"model":    req.Model,
			"bytes":    len(body),
		})
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return ports.CompletionResponse{}, p.fail(domain.BackendNetwork, 0, "send request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.CompletionResponse{}, p.fail(domain.BackendNetwork, resp.StatusCode, "read response", err)
	}

	if resp.StatusCode >= 400 {
		return ports.CompletionResponse{}, p.statusError(resp, raw)
	}

	content, err := p.adapter.parseResponse(raw)
	if err != nil {
		return ports.CompletionResponse{}, p.fail(domain.BackendMalformed, resp.StatusCode, "decode response", err)
	}
	if strings.TrimSpace(content) == "" {
		return ports.CompletionResponse{}, p.fail(domain.BackendMalformed, resp.StatusCode, "empty completion", nil)
	}

	if p.logger != nil {
		p.logger.Debug("received model response", map[string]interface{}{
			"provider": p.def.Name,
			"length":   len(content),
		})
	}
	return ports.CompletionResponse{Text: content, Model: req.Model}, nil
}

func (p *httpProvider) statusError(resp *http.Response, body []byte) error {
	msg := errorMessage(body)
	if msg == "" {
		msg = resp.Status
	}
	err := &domain.BackendError{
		Provider:   p.def.Name,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		err.Kind = domain.BackendAuth
	case resp.StatusCode == http.StatusTooManyRequests:
		err.Kind = domain.BackendRateLimit
		err.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		err.Kind = domain.BackendNetwork
	default:
		err.Kind = domain.BackendRequest
	}
	return err
}

func (p *httpProvider) fail(kind domain.BackendErrorKind, status int, msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &domain.BackendError{
		Kind:       kind,
		Provider:   p.def.Name,
		StatusCode: status,
		Message:    msg,
		Err:        cause,
	}
}

// errorMessage extracts {"error":{"message":...}} or {"error":"..."} from an error body.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 300 {
		text = text[:300] + "..."
	}
	return text
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if ts, err := http.ParseTime(value); err == nil {
		if d := time.Until(ts); d > 0 {
			return d
		}
	}
	return 0
}

func credential(def domain.ProviderDefinition) (string, error) {
	if def.AuthEnvVar == "" {
		return "", nil
	}
	key := strings.TrimSpace(lookupEnv(def.AuthEnvVar))
	if key == "" {
		return "", &domain.BackendError{
			Kind:     domain.BackendAuth,
			Provider: def.Name,
			Message:  fmt.Sprintf("%s is not set", def.AuthEnvVar),
			Err:      errors.New("missing credential"),
		}
	}
	return key, nil
}
