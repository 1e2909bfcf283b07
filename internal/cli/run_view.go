package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/mirrorer/internal/cli/formatter"
	"github.com/alexanderramin/mirrorer/internal/domain"
	"github.com/alexanderramin/mirrorer/internal/simulation"
)

type runKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Rerun key.Binding
	Quit  key.Binding
}

func defaultRunKeyMap() runKeyMap {
	return runKeyMap{
		Next:  key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next user")),
		Prev:  key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "previous user")),
		Rerun: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-run")),
		Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k runKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Rerun, k.Quit}
}

func (k runKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type runStartedMsg struct {
	runID   string
	updates <-chan simulation.SlotUpdate
}

type slotSettledMsg struct {
	runID  string
	update simulation.SlotUpdate
}

// runClosedMsg is sent once every call of a run has returned.
type runClosedMsg struct {
	runID string
}

type runFailedMsg struct {
	err error
}

// runView shows the slots of the current run filling in as backends settle.
// n and p move through users, each move invalidating the in-flight run.
type runView struct {
	ctx     context.Context
	session *simulation.Session
	users   []*domain.User
	current int

	// prompt overrides the built prompt for the first run only.
	prompt string

	runID    string
	updates  <-chan simulation.SlotUpdate
	spinner  spinner.Model
	keys     runKeyMap
	help     help.Model
	err      error
	quitting bool
}

func newRunView(ctx context.Context, session *simulation.Session, users []*domain.User, current int, promptText string) runView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StyleAccent

	m := runView{
		ctx:     ctx,
		session: session,
		users:   users,
		current: current,
		prompt:  promptText,
		spinner: sp,
		keys:    defaultRunKeyMap(),
		help:    help.New(),
	}
	session.Select(users[current])
	return m
}

func (m runView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start(m.prompt))
}

// start launches a run for the selected user. Session.Start does not block.
func (m runView) start(promptText string) tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		runID, updates, err := session.Start(ctx, promptText)
		if err != nil {
			return runFailedMsg{err: err}
		}
		return runStartedMsg{runID: runID, updates: updates}
	}
}

func waitForSlot(runID string, updates <-chan simulation.SlotUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return runClosedMsg{runID: runID}
		}
		return slotSettledMsg{runID: runID, update: u}
	}
}

func (m runView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.session.Invalidate()
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m.moveTo(m.current + 1)
		case key.Matches(msg, m.keys.Prev):
			return m.moveTo(m.current - 1)
		case key.Matches(msg, m.keys.Rerun):
			m.runID = ""
			m.err = nil
			return m, m.start("")
		}
		return m, nil

	case runStartedMsg:
		m.runID = msg.runID
		m.updates = msg.updates
		return m, waitForSlot(m.runID, m.updates)

	case slotSettledMsg:
		if msg.runID != m.runID {
			return m, nil
		}
		return m, waitForSlot(m.runID, m.updates)

	case runClosedMsg:
		if msg.runID == m.runID {
			m.updates = nil
		}
		return m, nil

	case runFailedMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// moveTo selects the user at index i, wrapping around, and starts a fresh
// run with the user's built prompt.
func (m runView) moveTo(i int) (tea.Model, tea.Cmd) {
	n := len(m.users)
	m.current = ((i % n) + n) % n
	m.session.Select(m.users[m.current])
	m.runID = ""
	m.err = nil
	return m, m.start("")
}

func (m runView) View() string {
	if m.quitting {
		return ""
	}
	u := m.session.User()
	var b strings.Builder

	title := fmt.Sprintf("%s · %s (%d/%d)", domain.OrPlaceholder(u.Profile.Name), u.ID(), m.current+1, len(m.users))
	b.WriteString(formatter.Header(title))
	b.WriteString("\n")
	for i, e := range u.Exposure {
		fmt.Fprintf(&b, "  %s %s\n", formatter.StyleInfo.Render("["+domain.Label(i)+"]"), e.Title)
	}
	b.WriteString("\n")

	for _, slot := range m.session.Slots() {
		switch slot.Status {
		case simulation.SlotSettled:
			b.WriteString(formatter.FormatSlot(slot.Update, u))
		case simulation.SlotPending:
			name := formatter.RoleStyle(slot.Role).Render(fmt.Sprintf("%-12s", slot.Backend))
			fmt.Fprintf(&b, "%s %s %s\n", name, m.spinner.View(), formatter.Dim("waiting"))
		default:
			name := formatter.RoleStyle(slot.Role).Render(fmt.Sprintf("%-12s", slot.Backend))
			fmt.Fprintf(&b, "%s %s\n", name, formatter.Dim("idle"))
		}
	}

	if m.err != nil {
		b.WriteString("\n" + formatter.StyleErr.Render("Error: "+m.err.Error()) + "\n")
	}
	if summary, ok := m.session.Summary(); ok {
		b.WriteString("\n" + formatter.FormatRunSummary(summary) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}
