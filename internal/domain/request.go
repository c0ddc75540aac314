package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceFile is the Python program under analysis.
type SourceFile struct {
	Path string
	Text string
}

// Dir returns the directory containing the source file.
func (s SourceFile) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// BaseName returns the file name, or "main.py" when the path is unknown.
func (s SourceFile) BaseName() string {
	if s.Path == "" {
		return "main.py"
	}
	return filepath.Base(s.Path)
}

// Stem returns the file name without directories and extension.
func (s SourceFile) Stem() string {
	base := s.BaseName()
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AnalysisRequest captures a single CLI invocation. It is not modified after construction.
type AnalysisRequest struct {
	Source             SourceFile
	Mode               Mode
	ModelID            string
	ProviderID         string
	RefactorOutput     string
	RuntimeTimeout     time.Duration
	FailOnRuntimeError bool
	ReportDir          string
}

// WantsRefactor reports whether a refactor output path was requested.
func (r AnalysisRequest) WantsRefactor() bool {
	return strings.TrimSpace(r.RefactorOutput) != ""
}

// SemanticRequest is what the orchestrator hands to the semantic analyzer.
type SemanticRequest struct {
	Source       SourceFile
	Mode         Mode
	ModelID      string
	ProviderID   string
	SyntaxError  string
	RuntimeError string
	// Refactor is set when the caller will write a refactored program.
	Refactor bool
}

// WantsCode reports whether the analyzer should ask for refactored code.
func (r SemanticRequest) WantsCode() bool {
	return r.Refactor && r.Mode.Refactors()
}
