package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	autoConfirm bool
	interactive bool
}

// NewPrompter constructs a prompter. autoConfirm answers yes without reading input.
func NewPrompter(in io.Reader, out io.Writer, autoConfirm bool) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		autoConfirm: autoConfirm,
		interactive: isTerminal(in),
	}
}

// Enabled reports whether a confirmation can be obtained at all.
// Non-interactive input without --yes declines every install.
func (p *Prompter) Enabled() bool {
	return p.autoConfirm || p.interactive
}

// ConfirmInstall lists the packages and asks once for all of them.
func (p *Prompter) ConfirmInstall(packages []string) (bool, error) {
	fmt.Fprintln(p.out, "\nThe refactored code imports packages that are not installed:")
	for _, pkg := range packages {
		fmt.Fprintf(p.out, " - %s\n", pkg)
	}
	if p.autoConfirm {
		fmt.Fprintln(p.out, "Installing (--yes).")
		return true, nil
	}
	return p.ask("Install them now? [y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
