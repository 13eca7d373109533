package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"specrun/internal/events"
	"specrun/internal/reporting"
	"specrun/pkg/logging"
)

// eventMsg carries one run event into the program.
type eventMsg struct {
	event events.Event
}

// channelClosedMsg signals that no further events will arrive.
type channelClosedMsg struct{}

// ProgramReporter forwards events to the TUI through a bounded buffer.
// When the buffer is full, informer and progress events are dropped while
// run and suite terminal events evict older ones.
type ProgramReporter struct {
	updates *reporting.BufferedChannel
}

// NewProgramReporter creates a reporter with room for size pending events.
func NewProgramReporter(size int) *ProgramReporter {
	if size <= 0 {
		size = 1024
	}
	return &ProgramReporter{updates: reporting.NewBufferedChannel(size, reporting.DefaultBufferStrategy())}
}

// Apply implements reporting.Reporter.
func (r *ProgramReporter) Apply(e events.Event) {
	if !r.updates.Send(e) && events.IsTestTerminal(e.Type()) {
		logging.Warn("TUIReporter", "TUI buffer full, dropping %s for %s", e.Type(), e.TestName())
	}
}

// Close ends the event stream.
func (r *ProgramReporter) Close() {
	r.updates.Close()
}

// Stats returns the buffer statistics.
func (r *ProgramReporter) Stats() reporting.ChannelStats {
	return r.updates.Stats()
}

// listen returns a command that waits for the next event.
func (r *ProgramReporter) listen() tea.Cmd {
	ch := r.updates.Channel()
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return eventMsg{event: e}
	}
}
