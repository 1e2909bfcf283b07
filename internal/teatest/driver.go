// Package teatest drives bubbletea models synchronously in tests.
//
// The Driver stands in for tea.Program: it calls Update directly and runs
// the returned Cmds itself, feeding their messages back until nothing is
// left. Cmds that block past the driver's timeout are abandoned, which is
// how timer-driven animation (cursor blink, spinner ticks) is kept out of
// tests. Models that wait on channels for background work should raise the
// timeout with WithCmdTimeout.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxSteps bounds how many messages one Send may process.
const MaxSteps = 200

// DefaultCmdTimeout is how long a Cmd may run before it is abandoned.
// Message factories return in microseconds; a cursor blink takes ~530ms.
const DefaultCmdTimeout = 10 * time.Millisecond

// Driver is a synchronous test harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once tea.Quit has been executed. The real runtime
	// intercepts tea.QuitMsg, so the driver records it here.
	Quitting bool

	cmdTimeout time.Duration
}

// Option configures the Driver during construction.
type Option func(*Driver)

// New creates a Driver for model and applies opts in order. Call DrainInit
// afterwards to run the model's Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout changes how long a Cmd may block before it is abandoned.
// An abandoned Cmd keeps running in the background and its message is
// dropped, so a model reading from a channel needs a timeout above the
// latency of the work behind it.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.cmdTimeout = timeout
	}
}

// DrainInit runs the model's Init command to completion.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init())
}

// Send dispatches msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// PressKeyType sends a special key such as tea.KeyEnter or tea.KeyCtrlC.
func (d *Driver) PressKeyType(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) View() string {
	return d.Model.View()
}

// drain runs Cmds breadth-first, flattening batches, until none are left
// or MaxSteps messages have been processed.
func (d *Driver) drain(first tea.Cmd) {
	d.T.Helper()
	queue := []tea.Cmd{first}
	for steps := 0; len(queue) > 0; {
		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}

		msg := d.exec(cmd)
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			d.Quitting = true
			d.Model, _ = d.Model.Update(msg)
			return
		}
		if isAnimation(msg) {
			continue
		}

		if steps++; steps > MaxSteps {
			d.T.Logf("teatest.Driver: stopped after %d messages", MaxSteps)
			return
		}
		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		queue = append(queue, next)
	}
}

// exec runs cmd in a goroutine and returns nil if it outlives the timeout.
func (d *Driver) exec(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(d.cmdTimeout):
		return nil
	}
}

// isAnimation reports timer-driven messages that would otherwise re-arm
// themselves forever. Cursor blink types are unexported, so they are
// matched by name.
func isAnimation(msg tea.Msg) bool {
	if _, ok := msg.(spinner.TickMsg); ok {
		return true
	}
	name := fmt.Sprintf("%T", msg)
	return strings.Contains(name, "Blink") || strings.Contains(name, "blink")
}
