package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"specrun/internal/color"
	"specrun/internal/events"
)

// runningTest is a test that started and has no terminal event yet.
type runningTest struct {
	name    string
	started time.Time
}

type model struct {
	title    string
	reporter *ProgramReporter
	stop     func()
	spinner  spinner.Model

	runID    string
	expected int
	suite    string
	summary  events.Summary
	running  []runningTest
	recent   []string
	failures []string

	finished  events.Event
	stopping  bool
	quitting  bool
	width     int
	startedAt time.Time
}

func newModel(title string, reporter *ProgramReporter, stop func()) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(color.Default.Accent)

	return model{
		title:     title,
		reporter:  reporter,
		stop:      stop,
		spinner:   s,
		width:     80,
		startedAt: time.Now(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reporter.listen())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.stopping && m.stop != nil {
				m.stop()
			}
			m.stopping = true
			if m.finished != nil || msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m = m.apply(msg.event)
		if m.finished != nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.reporter.listen()

	case channelClosedMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// apply folds one event into the model.
func (m model) apply(e events.Event) model {
	m.summary.Add(e)

	switch ev := e.(type) {
	case *events.RunStarting:
		m.runID = ev.RunID()
		m.expected = ev.ExpectedTests
	case *events.SuiteStarting:
		m.suite = ev.SuiteName()
	case *events.SuiteAborted:
		m.log(failureStyle.Render(fmt.Sprintf("%s suite %s aborted: %s", IconAbort, ev.SuiteName(), ev.Message)))
		m.failures = append(m.failures, fmt.Sprintf("%s: %s", ev.SuiteName(), ev.Message))
	case *events.TestStarting:
		m.running = append(m.running, runningTest{name: ev.TestName(), started: ev.Timestamp()})
	case *events.TestIgnored:
		m.log(dimStyle.Render(fmt.Sprintf("%s %s", IconIgnored, ev.TestName())))
	default:
		if events.IsTestTerminal(e.Type()) {
			m.finish(e)
		}
		if events.IsRunTerminal(e.Type()) {
			m.finished = e
		}
	}
	return m
}

func (m *model) finish(e events.Event) {
	name := e.TestName()
	for i, r := range m.running {
		if r.name == name {
			m.running = append(m.running[:i:i], m.running[i+1:]...)
			break
		}
	}

	switch e.Type() {
	case events.EventTypeTestSucceeded:
		m.log(successStyle.Render(IconCheck) + " " + name)
	case events.EventTypeTestFailed:
		m.log(failureStyle.Render(IconCross+" "+name) + dimStyle.Render(" "+events.Message(e)))
		m.failures = append(m.failures, fmt.Sprintf("%s: %s", name, events.Message(e)))
	case events.EventTypeTestPending:
		m.log(warnStyle.Render(IconPending + " " + name + " (pending)"))
	case events.EventTypeTestCanceled:
		m.log(warnStyle.Render(IconCanceled + " " + name + " (canceled)"))
	}
}

func (m *model) log(line string) {
	m.recent = append(m.recent, line)
	if len(m.recent) > maxRecentLogs {
		m.recent = m.recent[len(m.recent)-maxRecentLogs:]
	}
}

// done is the number of tests that reached a terminal state.
func (m model) done() int {
	return m.summary.TotalTests() - m.summary.TestsIgnored
}
