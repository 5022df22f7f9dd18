package session

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Drive runs cmd, and every command the session returns in response, until
// nothing is outstanding. It is a minimal event loop for callers without a
// bubbletea program: commands run on their own goroutines while results are
// applied to m on the calling goroutine, one at a time. observe, if set, is
// called after each applied message.
//
// If ctx ends first the session is closed, the remaining commands are
// drained, and ctx.Err() is returned.
func Drive(ctx context.Context, m *Machine, cmd tea.Cmd, observe func(tea.Msg)) error {
	msgs := make(chan tea.Msg)
	pending := 0
	launch := func(c tea.Cmd) {
		if c == nil {
			return
		}
		pending++
		go func() { msgs <- c() }()
	}

	launch(cmd)

	done := ctx.Done()
	for pending > 0 {
		select {
		case <-done:
			m.Close()
			done = nil
		case msg := <-msgs:
			pending--
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				for _, c := range msg {
					launch(c)
				}
			default:
				next := m.Update(msg)
				if observe != nil {
					observe(msg)
				}
				launch(next)
			}
		}
	}
	return ctx.Err()
}
