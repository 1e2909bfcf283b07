package teatest

import (
	"strconv"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type addMsg int

type counter struct {
	n       int
	width   int
	spinner spinner.Model
	slow    time.Duration
}

func (c counter) Init() tea.Cmd {
	return tea.Batch(c.spinner.Tick, func() tea.Msg { return addMsg(1) })
}

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case addMsg:
		c.n += int(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "+":
			return c, func() tea.Msg { return addMsg(1) }
		case "s":
			slow := c.slow
			return c, func() tea.Msg {
				time.Sleep(slow)
				return addMsg(10)
			}
		case "q":
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c counter) View() string {
	return strconv.Itoa(c.n)
}

func TestDriver_DrainsInitAndSkipsSpinnerTicks(t *testing.T) {
	d := New(t, counter{spinner: spinner.New()}, WithSize(80, 24))
	d.DrainInit()

	assert.Equal(t, "1", d.View())
	assert.Equal(t, 80, d.Model.(counter).width)
}

func TestDriver_TypeAndQuit(t *testing.T) {
	d := New(t, counter{spinner: spinner.New()})
	d.Type("++")
	assert.Equal(t, "2", d.View())

	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.PressKey('+')
	assert.Equal(t, "2", d.View(), "keys after quit are ignored")
}

func TestDriver_CmdTimeout(t *testing.T) {
	d := New(t, counter{spinner: spinner.New(), slow: 50 * time.Millisecond})
	d.PressKey('s')
	assert.Equal(t, "0", d.View(), "slow cmd abandoned at the default timeout")

	d = New(t, counter{spinner: spinner.New(), slow: 50 * time.Millisecond}, WithCmdTimeout(time.Second))
	d.PressKey('s')
	assert.Equal(t, "10", d.View())
}
