package tui

import (
	"context"
	"errors"
	"io"
	"os"

	"activitylog/store"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Run when stdout is not an interactive
// terminal.
var ErrNotTerminal = errors.New("stdout is not a terminal")

// Run shows the activity log full-screen until the user quits, ctx is
// cancelled or the store closes. Log output that would land on the terminal
// is suppressed while the program owns it.
func Run(ctx context.Context, s *store.Store) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}
	if os.Getenv("TERM") == "" {
		_ = os.Setenv("TERM", "xterm-256color")
	}

	std := log.StandardLogger()
	originalOut := std.Out
	if originalOut == os.Stderr || originalOut == os.Stdout {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(originalOut)

	m := New(s)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
