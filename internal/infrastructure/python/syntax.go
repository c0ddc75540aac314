package python

import (
	"context"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

type syntaxPayload struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Line    *int   `json:"line"`
	Column  *int   `json:"column"`
}

// SyntaxChecker parses source with the interpreter's own grammar.
type SyntaxChecker struct {
	probe *Probe
}

// NewSyntaxChecker wraps a probe.
func NewSyntaxChecker(probe *Probe) *SyntaxChecker {
	return &SyntaxChecker{probe: probe}
}

// Check implements ports.SyntaxChecker.
func (c *SyntaxChecker) Check(ctx context.Context, src domain.SourceFile) (domain.SyntaxResult, error) {
	var payload syntaxPayload
	if err := c.probe.run(ctx, modeSyntax, src.Text, &payload); err != nil {
		return domain.SyntaxResult{}, err
	}
	if payload.OK {
		return domain.SyntaxResult{OK: true}, nil
	}
	msg := payload.Message
	if msg == "" {
		msg = "invalid syntax"
	}
	return domain.SyntaxResult{
		OK:      false,
		Message: msg,
		Line:    payload.Line,
		Column:  payload.Column,
	}, nil
}

var _ ports.SyntaxChecker = (*SyntaxChecker)(nil)
