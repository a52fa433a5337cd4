package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vvka-141/metdbload/internal/tui/components"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// Task is the work RunWithProgress drives. It must log through logger and
// stop when ctx is cancelled.
type Task func(ctx context.Context, logger metdbload.Logger) (string, error)

type logMsg struct {
	level string
	text  string
}

type doneMsg struct {
	result string
	err    error
}

// progressModel draws a spinner with the latest Info message and prints
// warnings and errors above it.
type progressModel struct {
	spinner   components.Spinner
	keys      KeyMap
	cancel    context.CancelFunc
	verbose   bool
	cancelled bool
	done      bool
	err       error
}

func newProgressModel(title string, cancel context.CancelFunc, verbose bool) progressModel {
	return progressModel{
		spinner: components.NewSpinner(title),
		keys:    DefaultKeyMap(),
		cancel:  cancel,
		verbose: verbose,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Init()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.cancelled {
			m.cancelled = true
			m.cancel()
			m.spinner.SetMessage("Cancelling, rolling back...")
		}
		return m, nil
	case logMsg:
		switch msg.level {
		case "info":
			m.spinner.SetMessage(msg.text)
			return m, nil
		case "verbose":
			if !m.verbose {
				return m, nil
			}
			return m, tea.Println(MutedStyle.Render(msg.text))
		case "warn":
			return m, tea.Println(WarningStyle.Render(SymbolWarn + " " + msg.text))
		default:
			return m, tea.Println(ErrorStyle.Render(SymbolCross + " " + msg.text))
		}
	case doneMsg:
		m.done = true
		m.err = msg.err
		if msg.err != nil {
			m.spinner, _ = m.spinner.Update(components.SpinnerFailed(msg.err))
		} else {
			m.spinner, _ = m.spinner.Update(components.SpinnerDone(msg.result))
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m progressModel) View() string {
	if m.done {
		return m.spinner.View() + "\n"
	}
	return m.spinner.View() + "\n" + HelpStyle.Render(m.keys.HelpText()) + "\n"
}

// programLogger forwards log calls into a running program.
type programLogger struct {
	send func(tea.Msg)
}

func (l programLogger) log(level, format string, args []interface{}) {
	l.send(logMsg{level: level, text: fmt.Sprintf(format, args...)})
}

func (l programLogger) Verbose(format string, args ...interface{}) { l.log("verbose", format, args) }
func (l programLogger) Info(format string, args ...interface{})    { l.log("info", format, args) }
func (l programLogger) Warn(format string, args ...interface{})    { l.log("warn", format, args) }
func (l programLogger) Error(format string, args ...interface{})   { l.log("error", format, args) }

// RunWithProgress runs task while drawing a spinner on out. Pressing ctrl+c
// cancels the task's context. The task's error is returned unchanged.
func RunWithProgress(ctx context.Context, out io.Writer, title string, verbose bool, task Task) error {
	if out == nil {
		out = os.Stderr
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, cancel, verbose), tea.WithOutput(out))

	errCh := make(chan error, 1)
	go func() {
		result, err := task(ctx, programLogger{send: p.Send})
		errCh <- err
		p.Send(doneMsg{result: result, err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errCh
		return fmt.Errorf("progress display failed: %w", err)
	}
	return <-errCh
}
