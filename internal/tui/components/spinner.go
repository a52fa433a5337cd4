// Package components holds bubbletea building blocks of the progress view.
package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner shows the current step of a running job and how long it has run.
type Spinner struct {
	spinner spinner.Model
	message string
	started time.Time
	now     func() time.Time
	done    bool
	err     error
	result  string
	styles  spinnerStyles
}

type spinnerStyles struct {
	Message lipgloss.Style
	Elapsed lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

func defaultSpinnerStyles() spinnerStyles {
	return spinnerStyles{
		Message: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Elapsed: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// NewSpinner creates a spinner with the given first message.
func NewSpinner(message string) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Spinner{
		spinner: s,
		message: message,
		started: time.Now(),
		now:     time.Now,
		styles:  defaultSpinnerStyles(),
	}
}

// Init implements tea.Model.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	switch msg := msg.(type) {
	case SpinnerDoneMsg:
		s.done = true
		s.err = msg.Err
		s.result = msg.Result
		return s, nil
	case spinner.TickMsg:
		if s.done {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

// View implements tea.Model.
func (s Spinner) View() string {
	if s.done {
		if s.err != nil {
			return s.styles.Error.Render("✗ " + s.err.Error())
		}
		return s.styles.Success.Render("✓ " + s.result)
	}
	elapsed := s.now().Sub(s.started).Round(time.Second)
	return s.spinner.View() + " " + s.styles.Message.Render(s.message) + " " + s.styles.Elapsed.Render(elapsed.String())
}

// SpinnerDoneMsg signals that the job finished.
type SpinnerDoneMsg struct {
	Result string
	Err    error
}

// SpinnerDone creates a success message.
func SpinnerDone(result string) SpinnerDoneMsg {
	return SpinnerDoneMsg{Result: result}
}

// SpinnerFailed creates a failure message.
func SpinnerFailed(err error) SpinnerDoneMsg {
	return SpinnerDoneMsg{Err: err}
}

// SetMessage updates the spinner message.
func (s *Spinner) SetMessage(msg string) {
	s.message = msg
}

// Message returns the current message.
func (s Spinner) Message() string {
	return s.message
}

// IsDone returns true if the spinner is done.
func (s Spinner) IsDone() bool {
	return s.done
}

// Err returns the error the job failed with, if any.
func (s Spinner) Err() error {
	return s.err
}
