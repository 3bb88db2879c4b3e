package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/comm-runtime/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateConfigure modelState = iota
	stateRunning
	stateDone
)

type interactiveModel struct {
	bench    *bench
	err      error
	res      result
	cfg      config
	inputs   []textinput.Model
	prog     progress.Model
	statsA   engine.Stats
	statsB   engine.Stats
	focusIdx int
	stream   bool
	state    modelState
}

type benchDoneMsg struct {
	err error
	res result
}

type statsTickMsg time.Time

func newInteractiveModel() *interactiveModel {
	msgs := textinput.New()
	msgs.Placeholder = "1000"
	msgs.Prompt = "transfers: "
	msgs.CharLimit = 9
	msgs.Focus()

	size := textinput.New()
	size.Placeholder = "4096"
	size.Prompt = "bytes each: "
	size.CharLimit = 9

	return &interactiveModel{
		inputs: []textinput.Model{msgs, size},
		prog:   progress.New(progress.WithDefaultGradient()),
		state:  stateConfigure,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) startBench() tea.Cmd {
	m.bench = newBench()
	b := m.bench
	cfg := m.cfg
	return func() tea.Msg {
		res, err := b.run(cfg)
		return benchDoneMsg{res: res, err: err}
	}
}

func statsTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateConfigure || msg.String() == "ctrl+c" {
				if m.bench != nil {
					m.bench.close()
				}
				return m, tea.Quit
			}
		case "tab":
			if m.state == stateConfigure {
				m.focusIdx = (m.focusIdx + 1) % (len(m.inputs) + 1)
				for i := range m.inputs {
					if i == m.focusIdx {
						m.inputs[i].Focus()
					} else {
						m.inputs[i].Blur()
					}
				}
				return m, nil
			}
		case " ":
			if m.state == stateConfigure && m.focusIdx == len(m.inputs) {
				m.stream = !m.stream
				return m, nil
			}
		case "enter":
			if m.state == stateConfigure {
				m.cfg = config{
					msgs:   atoiOr(m.inputs[0].Value(), 1000),
					size:   atoiOr(m.inputs[1].Value(), 4096),
					stream: m.stream,
				}
				m.state = stateRunning
				return m, tea.Batch(m.startBench(), statsTick())
			}
			if m.state == stateDone {
				return m, tea.Quit
			}
		}

	case statsTickMsg:
		if m.state == stateRunning && m.bench != nil {
			m.statsA, m.statsB = m.bench.stats()
			return m, statsTick()
		}
		return m, nil

	case benchDoneMsg:
		m.res = msg.res
		m.err = msg.err
		m.statsA, m.statsB = m.bench.stats()
		m.bench.close()
		m.bench = nil
		m.state = stateDone
		return m, nil
	}

	if m.state == stateConfigure {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	s := titleStyle.Render("commbench — loopback transfer workload") + "\n\n"

	switch m.state {
	case stateConfigure:
		for _, in := range m.inputs {
			s += in.View() + "\n"
		}
		mode := "tagged"
		if m.stream {
			mode = "stream"
		}
		cursor := "  "
		if m.focusIdx == len(m.inputs) {
			cursor = "> "
		}
		s += cursor + labelStyle.Render("mode: ") + valueStyle.Render(mode) + "\n"
		s += "\n" + helpStyle.Render("tab: next field · space: toggle mode · enter: start · ctrl+c: quit")

	case stateRunning:
		done := m.statsB.Completed + m.statsB.Failed + m.statsB.Canceled
		frac := 0.0
		if m.cfg.msgs > 0 {
			frac = float64(done) / float64(m.cfg.msgs)
		}
		s += m.prog.ViewAs(frac) + "\n\n"
		s += labelStyle.Render("issued:    ") + valueStyle.Render(fmt.Sprintf("%d", m.statsB.Issued)) + "\n"
		s += labelStyle.Render("completed: ") + valueStyle.Render(fmt.Sprintf("%d", done)) + "\n"
		s += labelStyle.Render("in flight: ") + valueStyle.Render(fmt.Sprintf("%d", m.statsA.InFlight()+m.statsB.InFlight())) + "\n"
		s += "\n" + helpStyle.Render("q: abort")

	case stateDone:
		if m.err != nil {
			s += errorStyle.Render("failed: "+m.err.Error()) + "\n"
		} else {
			s += resultStyle.Render(fmt.Sprintf("%d bytes in %s (%.1f MB/s)",
				m.res.bytes, m.res.elapsed.Round(time.Millisecond), m.res.throughputMB())) + "\n"
			if m.res.errs > 0 {
				s += errorStyle.Render(fmt.Sprintf("%d transfers failed", m.res.errs)) + "\n"
			}
		}
		s += "\n" + helpStyle.Render("enter: exit")
	}

	return s + "\n"
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel())
	_, err := p.Run()
	return err
}
