package ai

import (
	"context"
	"errors"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Analyzer implements ports.SemanticAnalyzer on top of a ProviderFactory.
type Analyzer struct {
	cfg           domain.Config
	factory       ports.ProviderFactory
	logger        ports.Logger
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	sleep         func(context.Context, time.Duration) error
}

// NewAnalyzer creates an analyzer using the providers and retry settings in cfg.
func NewAnalyzer(cfg domain.Config, factory ports.ProviderFactory, logger ports.Logger) *Analyzer {
	return &Analyzer{
		cfg:           cfg,
		factory:       factory,
		logger:        logger,
		retryDelay:    cfg.RetryDelay(),
		maxRetryDelay: cfg.MaxRetryDelay(),
		sleep:         sleepContext,
	}
}

// Analyze sends the source with the mode's instruction and parses the reply.
// Rate limits, network failures and malformed replies are retried once.
func (a *Analyzer) Analyze(ctx context.Context, req domain.SemanticRequest) (domain.SemanticResult, error) {
	def, err := a.cfg.ResolveProvider(req.ProviderID)
	if err != nil {
		return domain.SemanticResult{}, err
	}
	model := def.ModelFor(req.Mode, req.ModelID)
	if model == "" {
		return domain.SemanticResult{}, &domain.UsageError{Message: "no model configured for provider " + def.Name}
	}

	provider, err := a.factory.ForProvider(def)
	if err != nil {
		return domain.SemanticResult{}, err
	}

	system, user, err := renderPrompts(req)
	if err != nil {
		return domain.SemanticResult{}, err
	}
	completion := ports.CompletionRequest{Model: model, System: system, User: user}

	var lastErr error
	for attempt := 1; attempt <= 1+domain.MaxBackendRetries; attempt++ {
		reply, err := a.attempt(ctx, provider, completion)
		if err == nil {
			result := domain.SemanticResult{
				AnalysisText:   reply.Analysis,
				RefactoredCode: reply.Code,
				Provider:       provider.Name(),
				Model:          model,
				Attempts:       attempt,
			}
			if !req.WantsCode() {
				result.RefactoredCode = ""
			}
			return result, nil
		}
		lastErr = err

		var backendErr *domain.BackendError
		if !errors.As(err, &backendErr) || !backendErr.Retryable() || attempt > domain.MaxBackendRetries {
			break
		}
		delay := a.delayFor(backendErr)
		if a.logger != nil {
			a.logger.Warn("retrying model request", map[string]interface{}{
				"provider": def.Name,
				"kind":     string(backendErr.Kind),
				"delay":    delay.String(),
			})
		}
		if err := a.sleep(ctx, delay); err != nil {
			return domain.SemanticResult{}, &domain.BackendError{
				Kind:     domain.BackendNetwork,
				Provider: def.Name,
				Message:  "cancelled while waiting to retry",
				Err:      err,
			}
		}
	}
	return domain.SemanticResult{}, lastErr
}

func (a *Analyzer) attempt(ctx context.Context, provider ports.Provider, req ports.CompletionRequest) (modelReply, error) {
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return modelReply{}, err
	}
	reply, err := parseReply(resp.Text)
	if err != nil {
		return modelReply{}, &domain.BackendError{
			Kind:     domain.BackendMalformed,
			Provider: provider.Name(),
			Message:  err.Error(),
			Err:      err,
		}
	}
	return reply, nil
}

func (a *Analyzer) delayFor(err *domain.BackendError) time.Duration {
	if err.RetryAfter > 0 {
		if err.RetryAfter > a.maxRetryDelay {
			return a.maxRetryDelay
		}
		return err.RetryAfter
	}
	return a.retryDelay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ports.SemanticAnalyzer = (*Analyzer)(nil)
