// Package report persists the plain-text run report next to the input.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/filesystem"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// TextWriter implements ports.ReportWriter.
type TextWriter struct{}

// NewTextWriter returns a writer.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// PathFor returns <dir>/<stem>_report.txt; an empty dir means the working directory.
func PathFor(sourcePath, dir string) string {
	stem := domain.SourceFile{Path: sourcePath}.Stem()
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, stem+domain.ReportSuffix)
}

// Write renders report and stores it, returning the path.
func (w *TextWriter) Write(report domain.AnalysisReport, dir string) (string, error) {
	path := PathFor(report.SourcePath, dir)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if err := filesystem.WriteFileAtomic(path, []byte(Render(report)), domain.OutputFilePermissions); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// Render produces the report text.
func Render(r domain.AnalysisReport) string {
	var b strings.Builder
	completed := r.CompletedAt
	if completed.IsZero() {
		completed = time.Now()
	}

	fmt.Fprintf(&b, "Analysis completed at %s\n", completed.Format(domain.TimestampFormat))
	fmt.Fprintf(&b, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(&b, "Source: %s\n", r.SourcePath)
	fmt.Fprintf(&b, "Mode: %s\n", r.Mode.Profile().Label)
	if r.Provider != "" {
		fmt.Fprintf(&b, "Provider: %s\n", r.Provider)
	}
	if r.Model != "" {
		fmt.Fprintf(&b, "Used model: %s\n", r.Model)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Syntax check: %s\n", SyntaxLine(r.Syntax))
	fmt.Fprintf(&b, "Runtime check: %s\n", RuntimeLine(r.Runtime))
	b.WriteString("\n")

	b.WriteString("Semantic analysis:\n")
	switch {
	case r.Semantic != nil:
		b.WriteString(strings.TrimSpace(r.Semantic.AnalysisText))
		b.WriteString("\n")
	case r.SemanticError != "":
		fmt.Fprintf(&b, "FAILED: %s\n", r.SemanticError)
	default:
		b.WriteString("skipped\n")
	}

	if r.Reached(domain.StageDependencyResolved) {
		b.WriteString("\nDependencies:\n")
		if len(r.Dependencies) == 0 {
			b.WriteString("  none missing\n")
		}
		for _, module := range r.Dependencies.Modules() {
			pkg := r.Dependencies[module]
			status := "not attempted"
			if res, ok := r.Installs[pkg]; ok {
				status = string(res.Status)
				if res.Detail != "" {
					status += " (" + res.Detail + ")"
				}
			}
			fmt.Fprintf(&b, "  %s -> %s: %s\n", module, pkg, status)
		}
	}

	if r.RefactorPath != "" {
		state := "not written"
		if r.RefactorWritten {
			state = "written"
		}
		fmt.Fprintf(&b, "\nRefactored output: %s (%s)\n", r.RefactorPath, state)
	}

	if len(r.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range r.Notes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	fmt.Fprintf(&b, "\nAnalysis completed in %s\n", FormatElapsed(r.Elapsed))
	fmt.Fprintf(&b, "Exit code: %d\n", r.ExitCode)
	return b.String()
}

// SyntaxLine summarises a syntax result.
func SyntaxLine(s domain.SyntaxResult) string {
	if s.OK {
		return "OK"
	}
	if loc := s.Location(); loc != "" {
		return fmt.Sprintf("FAILED: %s (%s)", s.Message, loc)
	}
	if s.Message == "" {
		return "not run"
	}
	return "FAILED: " + s.Message
}

// RuntimeLine summarises a runtime result; nil means the stage was skipped.
func RuntimeLine(r *domain.RuntimeResult) string {
	switch {
	case r == nil:
		return "skipped"
	case r.OK:
		return "OK"
	case r.TimedOut:
		return "TIMED OUT: " + r.ErrorMessage
	default:
		return "FAILED: " + r.ErrorMessage
	}
}

// FormatElapsed renders "N minutes and S.SS seconds".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := (d - time.Duration(minutes)*time.Minute).Seconds()
	return fmt.Sprintf("%d minutes and %.2f seconds", minutes, seconds)
}

var _ ports.ReportWriter = (*TextWriter)(nil)
