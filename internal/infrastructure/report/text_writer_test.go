package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
)

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0 minutes and 0.00 seconds", FormatElapsed(0))
	assert.Equal(t, "0 minutes and 1.50 seconds", FormatElapsed(1500*time.Millisecond))
	assert.Equal(t, "2 minutes and 5.25 seconds", FormatElapsed(2*time.Minute+5250*time.Millisecond))
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "demo_report.txt"), PathFor("/src/demo.py", "out"))
	assert.Equal(t, "demo_report.txt", PathFor("demo.py", ""))
}

func TestRenderFullRun(t *testing.T) {
	r := domain.AnalysisReport{
		RunID:       "run-1",
		SourcePath:  "demo.py",
		Mode:        domain.ModeExpert,
		Provider:    "openai",
		Model:       "gpt-5",
		CompletedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Elapsed:     3 * time.Second,
		Syntax:      domain.SyntaxResult{OK: true},
		Runtime:     &domain.RuntimeResult{OK: false, ErrorMessage: "ZeroDivisionError: division by zero"},
		Semantic:    &domain.SemanticResult{AnalysisText: "Line 2 divides by zero."},
		Dependencies: domain.DependencySet{
			"cv2":      "opencv-python",
			"requests": "requests",
		},
		Installs: domain.InstallOutcome{
			"opencv-python": {Status: domain.InstallInstalled},
			"requests":      {Status: domain.InstallFailed, Detail: "No matching distribution"},
		},
		RefactorPath: "demo_refactored.py",
		Notes:        []string{"refactored file not written: dependencies unresolved"},
		ExitCode:     domain.ExitDependenciesFailed,
	}
	r.Advance(domain.StageStart)
	r.Advance(domain.StageDependencyResolved)

	text := Render(r)
	assert.Contains(t, text, "Analysis completed at 2026-03-01T10:00:00Z")
	assert.Contains(t, text, "Mode: Expert")
	assert.Contains(t, text, "Used model: gpt-5")
	assert.Contains(t, text, "Syntax check: OK")
	assert.Contains(t, text, "Runtime check: FAILED: ZeroDivisionError: division by zero")
	assert.Contains(t, text, "Line 2 divides by zero.")
	assert.Contains(t, text, "cv2 -> opencv-python: installed")
	assert.Contains(t, text, "requests -> requests: failed (No matching distribution)")
	assert.Contains(t, text, "Refactored output: demo_refactored.py (not written)")
	assert.Contains(t, text, "  - refactored file not written")
	assert.Contains(t, text, "Analysis completed in 0 minutes and 3.00 seconds")
	assert.Contains(t, text, "Exit code: 6")
}

func TestRenderSyntaxFailure(t *testing.T) {
	line, col := 3, 9
	r := domain.AnalysisReport{
		SourcePath:    "bad.py",
		Mode:          domain.ModeAnalysisOnly,
		Syntax:        domain.SyntaxResult{OK: false, Message: "expected ':'", Line: &line, Column: &col},
		ExitCode:      domain.ExitSyntaxError,
		SemanticError: "",
	}
	text := Render(r)
	assert.Contains(t, text, "Syntax check: FAILED: expected ':' (line 3, column 9)")
	assert.Contains(t, text, "Runtime check: skipped")
	assert.Contains(t, text, "Semantic analysis:\nskipped")
	assert.NotContains(t, text, "Dependencies:")
}

func TestWriteCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := domain.AnalysisReport{SourcePath: "/somewhere/demo.py", Syntax: domain.SyntaxResult{OK: true}}

	path, err := NewTextWriter().Write(r, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "demo_report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Syntax check: OK")
}
