package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

type scriptedProvider struct {
	replies []string
	errs    []error
	calls   []ports.CompletionRequest
}

func (p *scriptedProvider) Name() string { return "stub" }

func (p *scriptedProvider) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	i := len(p.calls)
	p.calls = append(p.calls, req)
	var err error
	if i < len(p.errs) {
		err = p.errs[i]
	}
	if err != nil {
		return ports.CompletionResponse{}, err
	}
	text := ""
	if i < len(p.replies) {
		text = p.replies[i]
	}
	return ports.CompletionResponse{Text: text, Model: req.Model}, nil
}

type stubFactory struct {
	provider *scriptedProvider
	defs     []domain.ProviderDefinition
}

func (f *stubFactory) ForProvider(def domain.ProviderDefinition) (ports.Provider, error) {
	f.defs = append(f.defs, def)
	return f.provider, nil
}

func analyzerConfig() domain.Config {
	return domain.Config{
		DefaultProvider: "openai",
		Providers: []domain.ProviderDefinition{
			{Name: "openai", Models: domain.ModelDefaults{Fast: "gpt-5-mini", Strong: "gpt-5"}},
			{Name: "ollama", Models: domain.ModelDefaults{Fast: "llama3.1", Strong: "llama3.1"}},
		},
	}
}

func newTestAnalyzer(provider *scriptedProvider) (*Analyzer, *stubFactory, *[]time.Duration) {
	factory := &stubFactory{provider: provider}
	analyzer := NewAnalyzer(analyzerConfig(), factory, nil)
	var waits []time.Duration
	analyzer.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return analyzer, factory, &waits
}

const replyWithCode = `{"analysis": "Divides by zero.", "code": "print(0)"}`

func TestAnalyzerModelSelection(t *testing.T) {
	tests := []struct {
		name         string
		req          domain.SemanticRequest
		wantModel    string
		wantProvider string
	}{
		{name: "basic uses fast model", req: domain.SemanticRequest{Mode: domain.ModeBasic}, wantModel: "gpt-5-mini", wantProvider: "openai"},
		{name: "expert uses strong model", req: domain.SemanticRequest{Mode: domain.ModeExpert}, wantModel: "gpt-5", wantProvider: "openai"},
		{name: "analysis uses strong model", req: domain.SemanticRequest{Mode: domain.ModeAnalysisOnly}, wantModel: "gpt-5", wantProvider: "openai"},
		{name: "model override", req: domain.SemanticRequest{Mode: domain.ModeBasic, ModelID: "gpt-4o"}, wantModel: "gpt-4o", wantProvider: "openai"},
		{name: "provider override", req: domain.SemanticRequest{Mode: domain.ModeExpert, ProviderID: "ollama"}, wantModel: "llama3.1", wantProvider: "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{replies: []string{replyWithCode}}
			analyzer, factory, _ := newTestAnalyzer(provider)

			result, err := analyzer.Analyze(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, result.Model)
			require.Len(t, factory.defs, 1)
			assert.Equal(t, tt.wantProvider, factory.defs[0].Name)
			assert.Equal(t, tt.wantModel, provider.calls[0].Model)
		})
	}
}

func TestAnalyzerUnknownProvider(t *testing.T) {
	analyzer, _, _ := newTestAnalyzer(&scriptedProvider{})
	_, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{ProviderID: "bard"})
	assert.Equal(t, domain.ExitUsage, domain.ExitCodeOf(err))
}

func TestAnalyzerAnalysisOnlyDropsCode(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"Review.\n```python\nprint('rewritten')\n```"}}
	analyzer, _, _ := newTestAnalyzer(provider)

	result, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeAnalysisOnly})
	require.NoError(t, err)
	assert.Equal(t, "Review.", result.AnalysisText)
	assert.Empty(t, result.RefactoredCode)
	assert.False(t, result.HasRefactor())
}

func TestAnalyzerKeepsCodeWhenRefactoring(t *testing.T) {
	provider := &scriptedProvider{replies: []string{replyWithCode}}
	analyzer, _, _ := newTestAnalyzer(provider)

	result, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeExpert, Refactor: true})
	require.NoError(t, err)
	assert.Equal(t, "Divides by zero.", result.AnalysisText)
	assert.Equal(t, "print(0)", result.RefactoredCode)
	assert.Equal(t, 1, result.Attempts)
}

func TestAnalyzerDropsCodeWithoutRefactorOutput(t *testing.T) {
	provider := &scriptedProvider{replies: []string{replyWithCode}}
	analyzer, _, _ := newTestAnalyzer(provider)

	result, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeExpert})
	require.NoError(t, err)
	assert.Equal(t, "Divides by zero.", result.AnalysisText)
	assert.Empty(t, result.RefactoredCode)
}

func TestAnalyzerRetriesOnceOnRateLimit(t *testing.T) {
	provider := &scriptedProvider{
		errs:    []error{&domain.BackendError{Kind: domain.BackendRateLimit, RetryAfter: 5 * time.Second}},
		replies: []string{"", replyWithCode},
	}
	analyzer, _, waits := newTestAnalyzer(provider)

	result, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeBasic})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []time.Duration{5 * time.Second}, *waits)
}

func TestAnalyzerCapsRetryAfter(t *testing.T) {
	provider := &scriptedProvider{
		errs:    []error{&domain.BackendError{Kind: domain.BackendRateLimit, RetryAfter: 10 * time.Minute}},
		replies: []string{"", replyWithCode},
	}
	analyzer, _, waits := newTestAnalyzer(provider)

	_, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeBasic})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{domain.DefaultMaxRetryDelay}, *waits)
}

func TestAnalyzerRetriesMalformedReplyOnce(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"```python\nx\n```", "```python\nx\n```"}}
	analyzer, _, waits := newTestAnalyzer(provider)

	_, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeBasic})
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.BackendMalformed, backendErr.Kind)
	assert.Len(t, provider.calls, 2)
	assert.Equal(t, []time.Duration{domain.DefaultRetryDelay}, *waits)
}

func TestAnalyzerDoesNotRetryAuth(t *testing.T) {
	provider := &scriptedProvider{errs: []error{&domain.BackendError{Kind: domain.BackendAuth, StatusCode: 401}}}
	analyzer, _, waits := newTestAnalyzer(provider)

	_, err := analyzer.Analyze(context.Background(), domain.SemanticRequest{Mode: domain.ModeBasic})
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.BackendAuth, backendErr.Kind)
	assert.Len(t, provider.calls, 1)
	assert.Empty(t, *waits)
}

func TestAnalyzerCancelledDuringBackoff(t *testing.T) {
	provider := &scriptedProvider{errs: []error{&domain.BackendError{Kind: domain.BackendNetwork}}}
	analyzer, _, _ := newTestAnalyzer(provider)
	analyzer.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analyzer.Analyze(ctx, domain.SemanticRequest{Mode: domain.ModeBasic})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, provider.calls, 1)
}
