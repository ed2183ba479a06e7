package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"voice-interview/internal/client/session"
)

// Run shows the interview TUI until the user quits
func Run(ctx context.Context, controller *session.Controller, output string) error {
	p := tea.NewProgram(New(ctx, controller, output), tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks while Update runs, and Update itself triggers changes
	controller.OnChange(func(session.Session) {
		go p.Send(SessionChangedMsg{})
	})
	defer controller.OnChange(nil)

	_, err := p.Run()
	return err
}
