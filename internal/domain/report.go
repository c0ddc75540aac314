package domain

import "time"

// Stage is a state of the analysis pipeline.
type Stage string

const (
	StageStart              Stage = "start"
	StageSyntaxChecked      Stage = "syntax_checked"
	StageRuntimeChecked     Stage = "runtime_checked"
	StageSemanticAnalyzed   Stage = "semantic_analyzed"
	StageDependencyResolved Stage = "dependency_resolved"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// AnalysisReport aggregates everything a run produced. The orchestrator
// fills it in and hands it to presentation once the pipeline has finished.
type AnalysisReport struct {
	RunID       string
	SourcePath  string
	Mode        Mode
	Provider    string
	Model       string
	StartedAt   time.Time
	CompletedAt time.Time
	Elapsed     time.Duration

	Trail []Stage
	Stage Stage

	Syntax        SyntaxResult
	Runtime       *RuntimeResult
	Semantic      *SemanticResult
	SemanticError string

	Dependencies DependencySet
	Installs     InstallOutcome

	RefactorPath    string
	RefactorWritten bool
	ReportPath      string

	Notes    []string
	ExitCode int
}

// Advance records a stage transition.
func (r *AnalysisReport) Advance(stage Stage) {
	r.Stage = stage
	r.Trail = append(r.Trail, stage)
}

// Note appends a human-readable remark.
func (r *AnalysisReport) Note(msg string) {
	r.Notes = append(r.Notes, msg)
}

// Failed reports whether the pipeline ended in the failed state.
func (r AnalysisReport) Failed() bool {
	return r.Stage == StageFailed
}

// Reached reports whether stage appears in the trail.
func (r AnalysisReport) Reached(stage Stage) bool {
	for _, s := range r.Trail {
		if s == stage {
			return true
		}
	}
	return false
}
