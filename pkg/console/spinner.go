package console

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// Spinner shows progress on stderr while files are validated.
// It is a no-op when stderr is not a terminal.
type Spinner struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner showing message
func NewSpinner(message string) *Spinner {
	s := &Spinner{enabled: isatty.IsTerminal(os.Stderr.Fd())}
	if s.enabled {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.spinner.Suffix = " " + message
		_ = s.spinner.Color("cyan")
	}
	return s
}

// Start begins the animation
func (s *Spinner) Start() {
	if s.enabled {
		s.spinner.Start()
	}
}

// Stop stops the animation and clears the line
func (s *Spinner) Stop() {
	if s.enabled {
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the message shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	if s.enabled {
		s.spinner.Lock()
		s.spinner.Suffix = " " + message
		s.spinner.Unlock()
	}
}

// IsEnabled reports whether the spinner renders anything
func (s *Spinner) IsEnabled() bool {
	return s.enabled
}
