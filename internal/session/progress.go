package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the cadence at which progress steps are revealed
const DefaultInterval = 750 * time.Millisecond

// DefaultSteps are the labels revealed while an upload is outstanding
var DefaultSteps = []string{
	"Uploading file...",
	"Analyzing structure...",
	"Processing content...",
	"Finalizing... (Generating Summary)",
}

// Tracker is the simulated progress trace of one upload. It only grows
// when told to and never past the number of steps.
type Tracker struct {
	steps    []string
	revealed int
}

// NewTracker creates a tracker over a fixed step list
func NewTracker(steps []string) *Tracker {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &Tracker{steps: append([]string(nil), steps...)}
}

// Reset empties the trace
func (t *Tracker) Reset() {
	t.revealed = 0
}

// Advance reveals the next step. It returns false once every step is shown.
func (t *Tracker) Advance() bool {
	if t.revealed >= len(t.steps) {
		return false
	}
	t.revealed++
	return true
}

// Done reports whether every step has been revealed
func (t *Tracker) Done() bool {
	return t.revealed >= len(t.steps)
}

// Len is the number of revealed steps
func (t *Tracker) Len() int {
	return t.revealed
}

// Total is the number of steps
func (t *Tracker) Total() int {
	return len(t.steps)
}

// Trace returns a copy of the revealed labels
func (t *Tracker) Trace() []string {
	return append([]string(nil), t.steps[:t.revealed]...)
}

// tickCmd waits one interval and asks for the next step. Cancelling ctx
// stops the timer and delivers no message.
func tickCmd(ctx context.Context, interval time.Duration, generation uint64) tea.Cmd {
	return func() tea.Msg {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			return ProgressTickMsg{Generation: generation}
		}
	}
}
