package domain

import (
	"fmt"
	"strings"
)

// Mode selects the instruction template and default model for semantic analysis.
type Mode string

const (
	ModeBasic        Mode = "basic"
	ModeExpert       Mode = "expert"
	ModeAnalysisOnly Mode = "analysis_only"
)

// ModelTier indexes a provider's default model table.
type ModelTier string

const (
	// TierFast is a cheaper, quicker model.
	TierFast ModelTier = "fast"
	// TierStrong is the most capable model the provider offers.
	TierStrong ModelTier = "strong"
)

// ModeProfile is the per-mode row of the mode table.
type ModeProfile struct {
	Mode      Mode
	Label     string
	Tier      ModelTier
	Refactors bool
	Summary   string
}

var modeProfiles = map[Mode]ModeProfile{
	ModeBasic: {
		Mode:      ModeBasic,
		Label:     "Basic",
		Tier:      TierFast,
		Refactors: true,
		Summary:   "fast, beginner-friendly analysis with a minimal refactor",
	},
	ModeExpert: {
		Mode:      ModeExpert,
		Label:     "Expert",
		Tier:      TierStrong,
		Refactors: true,
		Summary:   "deep analysis focused on runtime and memory optimisation",
	},
	ModeAnalysisOnly: {
		Mode:      ModeAnalysisOnly,
		Label:     "Analysis",
		Tier:      TierStrong,
		Refactors: false,
		Summary:   "code review only, no refactored program",
	},
}

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeBasic, ModeExpert, ModeAnalysisOnly}
}

// Profile returns the table row for m. Unknown modes fall back to analysis-only.
func (m Mode) Profile() ModeProfile {
	if p, ok := modeProfiles[m]; ok {
		return p
	}
	return modeProfiles[ModeAnalysisOnly]
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := modeProfiles[m]
	return ok
}

// Refactors reports whether the mode may produce refactored code.
func (m Mode) Refactors() bool {
	return m.Profile().Refactors
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode converts a user-supplied name into a Mode.
func ParseMode(raw string) (Mode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	switch normalized {
	case "basic":
		return ModeBasic, nil
	case "expert":
		return ModeExpert, nil
	case "", "analysis", "analysis_only":
		return ModeAnalysisOnly, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected basic, expert or analysis_only)", raw)
	}
}

// ModeFromFlags maps the --basic/--expert switches onto a Mode.
// Neither switch means analysis-only.
func ModeFromFlags(basic, expert bool) (Mode, error) {
	switch {
	case basic && expert:
		return "", &UsageError{Message: "--basic and --expert cannot be used together"}
	case basic:
		return ModeBasic, nil
	case expert:
		return ModeExpert, nil
	default:
		return ModeAnalysisOnly, nil
	}
}
