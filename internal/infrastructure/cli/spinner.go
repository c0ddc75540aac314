package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/ports"
)

// Spinner shows progress on a terminal. On anything else it is silent.
type Spinner struct {
	mu      sync.Mutex
	spin    *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer) *Spinner {
	f, ok := w.(*os.File)
	enabled := ok && term.IsTerminal(int(f.Fd()))
	return &Spinner{
		spin:    spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w)),
		enabled: enabled,
	}
}

// Start begins the animation with message as suffix.
func (s *Spinner) Start(message string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spin.Suffix = " " + message
	s.spin.Start()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spin.Stop()
}

var _ ports.Progress = (*Spinner)(nil)
