package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// OutputFilePermissions is used for reports and refactored sources (rw-r--r--)
	OutputFilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultRuntimeTimeout bounds execution of the checked program
	DefaultRuntimeTimeout = 10 * time.Second
	// DefaultRequestTimeout bounds a single model request
	DefaultRequestTimeout = 120 * time.Second
	// DefaultRetryDelay is the pause before retrying a transient backend failure
	DefaultRetryDelay = 2 * time.Second
	// DefaultMaxRetryDelay caps a Retry-After sent by the backend
	DefaultMaxRetryDelay = 30 * time.Second
	// DefaultInstallTimeout bounds one package installation
	DefaultInstallTimeout = 5 * time.Minute
	// DefaultProbeTimeout bounds interpreter probes (syntax, imports, resolve)
	DefaultProbeTimeout = 30 * time.Second
)

// Limit constants
const (
	// DefaultMaxOutputBytes caps captured stdout/stderr per stream
	DefaultMaxOutputBytes = 1 << 20
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
	// MaxBackendRetries is the number of retries after the first model request
	MaxBackendRetries = 1
)

// Defaults
const (
	DefaultInterpreter = "python3"
	DefaultProvider    = "openai"
	ReportSuffix       = "_report.txt"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
