package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for metdbload.
type Mode int

const (
	// ModeNonInteractive is used for cron jobs, CI pipelines and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is watching the terminal.
	ModeInteractive
)

// NonInteractiveEnv forces plain log output when set to 1.
const NonInteractiveEnv = "METDBLOAD_NON_INTERACTIVE"

// DetectMode determines whether progress is drawn or logged.
//
// Returns ModeNonInteractive if:
//   - METDBLOAD_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stderr, where progress is drawn, is not a terminal
func DetectMode() Mode {
	if os.Getenv(NonInteractiveEnv) == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
