package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
)

const (
	historyCapacity = 365
	graphWidth      = 60
	graphHeight     = 8
	maxSpeed        = 64
	frameRate       = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the Bubble Tea model of a live run.
type Model struct {
	ctx      context.Context
	stepper  *sim.Stepper
	title    string
	capacity soil.Values

	history  []float64
	fill     []float64
	last     sim.DayReport
	newton   int
	fallback int

	speed    int
	running  bool
	showHelp bool
	theme    Theme
	styles   Styles
	err      error
}

// NewModel prepares a live view of st. capacity is the storage capacity of every
// member, scalar or per member.
func NewModel(ctx context.Context, st *sim.Stepper, capacity soil.Values, title string) Model {
	m := Model{
		ctx:      ctx,
		stepper:  st,
		title:    title,
		capacity: capacity,
		history:  make([]float64, 0, historyCapacity),
		speed:    1,
		running:  true,
		theme:    ThemeLoam,
		styles:   NewStyles(ThemeLoam),
	}
	m.record(st.State())
	return m
}

// WithTheme returns m drawn with t.
func (m Model) WithTheme(t Theme) Model {
	m.theme, m.styles = t, NewStyles(t)
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Err returns the error that stopped the run, if any.
func (m Model) Err() error { return m.err }

// Update handles key presses and advances the run on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.advance(1)
			}
		case "+", "=":
			m.speed = min(maxSpeed, m.speed*2)
		case "-", "_":
			m.speed = max(1, m.speed/2)
		case "t":
			m = m.WithTheme(m.theme.next())
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.speed)
		}
		if m.err != nil {
			return m, tea.Quit
		}
		if m.stepper.Done() {
			m.running = false
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

// advance steps up to n days.
func (m *Model) advance(n int) {
	for i := 0; i < n && !m.stepper.Done(); i++ {
		report, err := m.stepper.Step(m.ctx)
		if errors.Is(err, sim.ErrFinished) {
			return
		}
		if err != nil {
			m.err = err
			return
		}
		m.last = report
		m.newton += report.Newton
		m.fallback += report.Fallbacks
		m.record(m.stepper.State())
	}
}

func (m *Model) record(state []float64) {
	mean := 0.0
	if len(m.fill) != len(state) {
		m.fill = make([]float64, len(state))
	}
	for i, s := range state {
		mean += s
		m.fill[i] = s / m.capacity.At(i)
	}
	mean /= float64(len(state))

	if len(m.history) == historyCapacity {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyCapacity-1]
	}
	m.history = append(m.history, mean)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("ERROR")
	case m.stepper.Done():
		return m.styles.Paused.Render("DONE")
	case m.running:
		return m.styles.Running.Render("RUNNING")
	}
	return m.styles.Paused.Render("PAUSED")
}

// View renders the run.
func (m Model) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.Header.Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(m.status() + "\n\n")

	day, days := m.stepper.Day(), m.stepper.Days()
	progress := 0.0
	if days > 1 {
		progress = float64(day) / float64(days-1)
	}
	b.WriteString(st.ProgressBar(progress, 30) + fmt.Sprintf(" day %d/%d\n", day, days-1))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("mean storage (mm)"))
		b.WriteString(st.Graph.Render(chart) + "\n")
	}

	b.WriteString(st.Row("Fill", st.FillBars(m.fill, graphWidth)))
	if day > 0 {
		p, e := m.stepper.Forcing(day)
		b.WriteString(st.Row("Precip", fmt.Sprintf("%.2f mm", p)))
		b.WriteString(st.Row("ET demand", fmt.Sprintf("%.2f mm", e)))
	}
	b.WriteString(st.Row("Mean storage", fmt.Sprintf("%.2f mm", m.history[len(m.history)-1])))
	b.WriteString(st.Row("Newton", fmt.Sprintf("%d (total %d)", m.last.Newton, m.newton)))
	b.WriteString(st.Row("Fallbacks", fmt.Sprintf("%d (total %d)", m.last.Fallbacks, m.fallback)))
	if m.last.Unconverged > 0 {
		b.WriteString(st.Row("Unconverged", fmt.Sprintf("%d", m.last.Unconverged)))
	}
	b.WriteString(st.Row("Speed", fmt.Sprintf("%d day/tick", m.speed)))
	b.WriteString(st.Row("Theme", m.theme.Name))

	if m.err != nil {
		b.WriteString("\n" + st.Error.Render(m.err.Error()) + "\n")
	}

	b.WriteString("\n" + st.Hint.Render("SPACE pause  S step  +/- speed  T theme  ? help  Q quit"))

	view := st.Panel.Render(b.String())
	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, st.Panel.Render(helpText), view)
	}
	return view
}

const helpText = `Space  pause or resume
S      step one day while paused
+ / -  double or halve days per tick
T      cycle colour themes
?      toggle this help
Q      quit`
