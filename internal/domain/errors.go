package domain

import (
	"errors"
	"fmt"
	"time"
)

// Process exit codes. These values are part of the CLI contract.
const (
	ExitOK                 = 0
	ExitPipelineFailure    = 1
	ExitUsage              = 2
	ExitInputNotFound      = 3
	ExitSyntaxError        = 4
	ExitMissingCredential  = 5
	ExitDependenciesFailed = 6
)

// InputError reports a missing or unreadable source file.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("read input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// CredentialError reports an unset API key for the selected provider.
type CredentialError struct {
	Provider string
	EnvVar   string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s environment variable not set (required by provider %s)", e.EnvVar, e.Provider)
}

// UsageError reports invalid flags or arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// BackendErrorKind classifies model backend failures; remediation differs per kind.
type BackendErrorKind string

const (
	BackendAuth      BackendErrorKind = "auth"
	BackendRateLimit BackendErrorKind = "rate_limit"
	BackendNetwork   BackendErrorKind = "network"
	BackendMalformed BackendErrorKind = "malformed"
	BackendRequest   BackendErrorKind = "request"
)

// BackendError is returned by providers and the semantic analyzer.
type BackendError struct {
	Kind       BackendErrorKind
	Provider   string
	StatusCode int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s backend error (%s, HTTP %d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s backend error (%s): %s", e.Provider, e.Kind, msg)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Retryable reports whether a single retry may help.
func (e *BackendError) Retryable() bool {
	switch e.Kind {
	case BackendRateLimit, BackendNetwork, BackendMalformed:
		return true
	default:
		return false
	}
}

// Hint returns the user-facing remediation for the error kind.
func (e *BackendError) Hint() string {
	switch e.Kind {
	case BackendAuth:
		return "check that the API key for the provider is set and valid"
	case BackendRateLimit:
		return "the provider is rate limiting requests; retry later"
	case BackendNetwork:
		return "the provider could not be reached; check connectivity and retry"
	case BackendMalformed:
		return "the model reply could not be understood; rerun or try another model"
	default:
		return "the provider rejected the request; check the model name and provider settings"
	}
}

// ExitError carries a specific process exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeOf maps an error to the process exit code.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return ExitInputNotFound
	}
	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return ExitMissingCredential
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}
	return ExitPipelineFailure
}
