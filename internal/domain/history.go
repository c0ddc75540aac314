package domain

import "time"

// RunRecord is the history entry persisted for each pipeline run.
type RunRecord struct {
	ID              string    `json:"id" yaml:"id"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
	SourcePath      string    `json:"source_path" yaml:"source_path"`
	Mode            Mode      `json:"mode" yaml:"mode"`
	Provider        string    `json:"provider" yaml:"provider"`
	Model           string    `json:"model" yaml:"model"`
	Stage           Stage     `json:"stage" yaml:"stage"`
	SyntaxOK        bool      `json:"syntax_ok" yaml:"syntax_ok"`
	RuntimeOK       bool      `json:"runtime_ok" yaml:"runtime_ok"`
	TimedOut        bool      `json:"timed_out" yaml:"timed_out"`
	SemanticOK      bool      `json:"semantic_ok" yaml:"semantic_ok"`
	RefactorPath    string    `json:"refactor_path,omitempty" yaml:"refactor_path,omitempty"`
	RefactorWritten bool      `json:"refactor_written" yaml:"refactor_written"`
	MissingPackages int       `json:"missing_packages" yaml:"missing_packages"`
	ExitCode        int       `json:"exit_code" yaml:"exit_code"`
	ElapsedMS       int64     `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// RecordFromReport flattens a report into a history entry.
func RecordFromReport(r AnalysisReport) RunRecord {
	rec := RunRecord{
		ID:              r.RunID,
		Timestamp:       r.CompletedAt,
		SourcePath:      r.SourcePath,
		Mode:            r.Mode,
		Provider:        r.Provider,
		Model:           r.Model,
		Stage:           r.Stage,
		SyntaxOK:        r.Syntax.OK,
		SemanticOK:      r.Semantic != nil,
		RefactorPath:    r.RefactorPath,
		RefactorWritten: r.RefactorWritten,
		MissingPackages: len(r.Dependencies),
		ExitCode:        r.ExitCode,
		ElapsedMS:       r.Elapsed.Milliseconds(),
	}
	if r.Runtime != nil {
		rec.RuntimeOK = r.Runtime.OK
		rec.TimedOut = r.Runtime.TimedOut
	}
	return rec
}
