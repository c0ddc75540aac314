// Package analysis sequences the syntax, runtime and semantic checks and the
// dependency side-flow for a single source file.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/pkg/filesystem"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Service orchestrates the analysis pipeline end-to-end.
type Service struct {
	Syntax    ports.SyntaxChecker
	Runtime   ports.RuntimeChecker
	Semantic  ports.SemanticAnalyzer
	Scanner   ports.DependencyScanner
	Installer ports.PackageInstaller
	Reports   ports.ReportWriter
	History   ports.HistoryRepository
	Progress  ports.Progress
	Logger    ports.Logger

	// Now and NewRunID default to time.Now and uuid.NewString.
	Now      func() time.Time
	NewRunID func() string
}

// Run executes the pipeline. The returned report is complete on every path;
// an error is returned only when the service is not wired.
func (s *Service) Run(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisReport, error) {
	if s.Syntax == nil || s.Runtime == nil || s.Semantic == nil || s.Scanner == nil ||
		s.Installer == nil || s.Reports == nil || s.Logger == nil {
		return domain.AnalysisReport{}, errors.New("analysis.Service dependencies not satisfied")
	}

	run := &pipelineRun{svc: s, req: req}
	run.start()
	run.execute(ctx)
	return run.report, nil
}

type pipelineRun struct {
	svc     *Service
	req     domain.AnalysisRequest
	report  domain.AnalysisReport
	started time.Time
}

func (r *pipelineRun) start() {
	r.started = r.svc.now()
	r.report = domain.AnalysisReport{
		RunID:      r.svc.runID(),
		SourcePath: r.req.Source.Path,
		Mode:       r.req.Mode,
		Provider:   r.req.ProviderID,
		Model:      r.req.ModelID,
		StartedAt:  r.started,
	}
	r.report.Advance(domain.StageStart)
}

func (r *pipelineRun) execute(ctx context.Context) {
	log := r.svc.Logger
	src := r.req.Source

	r.svc.startProgress("Checking syntax...")
	syntax, err := r.svc.Syntax.Check(ctx, src)
	r.svc.stopProgress()
	if err != nil {
		r.report.Syntax = domain.SyntaxResult{OK: false, Message: "syntax check unavailable: " + err.Error()}
		log.Error("syntax check failed to run", err, map[string]interface{}{"source": src.Path})
		r.finish(ctx, domain.StageFailed, domain.ExitPipelineFailure)
		return
	}
	r.report.Syntax = syntax
	if !syntax.OK {
		log.Info("syntax error", map[string]interface{}{"message": syntax.Message, "location": syntax.Location()})
		r.finish(ctx, domain.StageFailed, domain.ExitSyntaxError)
		return
	}
	r.report.Advance(domain.StageSyntaxChecked)

	r.svc.startProgress("Running program...")
	runtime := r.svc.Runtime.Check(ctx, src, r.req.RuntimeTimeout)
	r.svc.stopProgress()
	r.report.Runtime = &runtime
	r.report.Advance(domain.StageRuntimeChecked)

	exitCode := domain.ExitOK
	if !runtime.OK && r.req.FailOnRuntimeError {
		exitCode = domain.ExitPipelineFailure
	}

	semanticReq := domain.SemanticRequest{
		Source:     src,
		Mode:       r.req.Mode,
		ModelID:    r.req.ModelID,
		ProviderID: r.req.ProviderID,
		Refactor:   r.req.WantsRefactor() && r.req.Mode.Refactors(),
	}
	if !runtime.OK {
		semanticReq.RuntimeError = runtime.ErrorMessage
	}

	r.svc.startProgress("Performing semantic analysis...")
	semantic, err := r.svc.Semantic.Analyze(ctx, semanticReq)
	r.svc.stopProgress()
	if err != nil {
		r.report.SemanticError = describeBackendError(err)
		log.Error("semantic analysis failed", err, map[string]interface{}{"provider": r.req.ProviderID})
		r.finish(ctx, domain.StageFailed, domain.ExitCodeOf(err))
		return
	}
	if !r.req.Mode.Refactors() {
		semantic.RefactoredCode = ""
	}
	r.report.Semantic = &semantic
	if semantic.Provider != "" {
		r.report.Provider = semantic.Provider
	}
	if semantic.Model != "" {
		r.report.Model = semantic.Model
	}
	r.report.Advance(domain.StageSemanticAnalyzed)

	if r.req.WantsRefactor() {
		code, ok := r.resolveRefactor(ctx, semantic)
		if !ok {
			return
		}
		if code != domain.ExitOK {
			exitCode = code
		}
	}

	r.finish(ctx, domain.StageDone, exitCode)
}

// resolveRefactor runs the dependency side-flow and writes the refactored file.
// It returns false when the run was finished as failed.
func (r *pipelineRun) resolveRefactor(ctx context.Context, semantic domain.SemanticResult) (int, bool) {
	out := r.req.RefactorOutput
	r.report.RefactorPath = out

	switch {
	case !r.req.Mode.Refactors():
		r.report.Note("refactor output is not produced in analysis-only mode; use --basic or --expert")
		return domain.ExitOK, true
	case !semantic.HasRefactor():
		r.report.Note("the model returned no refactored code; nothing was written to " + out)
		return domain.ExitOK, true
	}

	code := ensureTrailingNewline(semantic.RefactoredCode)
	deps, err := r.svc.Scanner.Scan(ctx, code, filepath.Dir(out), r.req.Source.Dir())
	if err != nil {
		r.report.Note("dependency scan failed: " + err.Error())
		r.svc.Logger.Error("dependency scan failed", err, nil)
		r.finish(ctx, domain.StageFailed, domain.ExitPipelineFailure)
		return 0, false
	}
	r.report.Dependencies = deps

	outcome := domain.InstallOutcome{}
	if len(deps) > 0 {
		outcome = r.svc.Installer.Install(ctx, deps.Packages())
	}
	r.report.Installs = outcome
	r.report.Advance(domain.StageDependencyResolved)

	if !outcome.AllInstalled() {
		unresolved := append(outcome.WithStatus(domain.InstallFailed), outcome.WithStatus(domain.InstallSkipped)...)
		r.report.Note(fmt.Sprintf("refactored code was not written: unresolved dependencies: %s", strings.Join(unresolved, ", ")))
		return domain.ExitDependenciesFailed, true
	}

	if err := writeRefactor(out, code); err != nil {
		r.report.Note("could not write refactored code: " + err.Error())
		r.svc.Logger.Error("write refactored code failed", err, map[string]interface{}{"path": out})
		r.finish(ctx, domain.StageFailed, domain.ExitPipelineFailure)
		return 0, false
	}
	r.report.RefactorWritten = true
	return domain.ExitOK, true
}

// finish closes the run: timestamps, report file and history record.
func (r *pipelineRun) finish(ctx context.Context, stage domain.Stage, exitCode int) {
	r.report.Advance(stage)
	r.report.CompletedAt = r.svc.now()
	r.report.Elapsed = r.report.CompletedAt.Sub(r.started)
	r.report.ExitCode = exitCode

	path, err := r.svc.Reports.Write(r.report, r.req.ReportDir)
	if err != nil {
		r.svc.Logger.Error("write report failed", err, nil)
	} else {
		r.report.ReportPath = path
	}

	if r.svc.History != nil {
		if err := r.svc.History.Record(ctx, domain.RecordFromReport(r.report)); err != nil {
			r.svc.Logger.Warn("history record failed", map[string]interface{}{"error": err.Error()})
		}
	}

	r.svc.Logger.Debug("pipeline finished", map[string]interface{}{
		"run_id":    r.report.RunID,
		"stage":     string(stage),
		"exit_code": exitCode,
		"elapsed":   r.report.Elapsed.String(),
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) runID() string {
	if s.NewRunID != nil {
		return s.NewRunID()
	}
	return uuid.NewString()
}

func (s *Service) startProgress(msg string) {
	if s.Progress != nil {
		s.Progress.Start(msg)
	}
}

func (s *Service) stopProgress() {
	if s.Progress != nil {
		s.Progress.Stop()
	}
}

func describeBackendError(err error) string {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		return fmt.Sprintf("%s (hint: %s)", backendErr.Error(), backendErr.Hint())
	}
	return err.Error()
}

func ensureTrailingNewline(code string) string {
	code = strings.TrimRight(code, "\r\n")
	return code + "\n"
}

func writeRefactor(path, code string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
			return err
		}
	}
	return filesystem.WriteFileAtomic(path, []byte(code), domain.OutputFilePermissions)
}
