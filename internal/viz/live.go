package viz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/surface"
)

const historyCapacity = 600

type TickMsg time.Time

// Model renders a flock on a braille canvas. Each TickMsg is one frame; the
// message time is the frame timestamp.
type Model struct {
	flock   *sim.Flock
	canvas  *surface.Canvas
	refresh time.Duration
	initial int

	running  bool
	start    time.Time
	started  bool
	last     sim.Frame
	fps      []float64
	pop      []float64
	spin     int
	showHelp bool
	notice   string // outcome of the last population key, empty when it succeeded
}

func NewModel(f *sim.Flock, canvas *surface.Canvas, refresh time.Duration) Model {
	return Model{
		flock:   f,
		canvas:  canvas,
		refresh: refresh,
		initial: f.Len(),
		running: true,
		fps:     make([]float64, 0, historyCapacity),
		pop:     make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				m.flock.Resume()
			}
		case "+", "=":
			m.notice = notice(m.flock.Grow(batch(m.flock.Len())))
		case "-", "_":
			m.notice = notice(m.flock.Shrink(batch(m.flock.Len())))
		case "r":
			err := m.flock.Shrink(m.flock.Len())
			if err == nil {
				err = m.flock.Grow(m.initial)
			}
			m.notice = notice(err)
			m.flock.Resume()
			m.fps = m.fps[:0]
			m.pop = m.pop[:0]
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step(time.Time(msg))
		}
		return m, m.tick()
	}
	return m, nil
}

func notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, dynamo.ErrCapacityExceeded):
		return "FULL"
	}
	return err.Error()
}

func batch(n int) int {
	if n < 10 {
		return 1
	}
	return n / 10
}

func (m *Model) step(now time.Time) {
	if !m.started {
		m.start, m.started = now, true
	}
	ts := float64(now.Sub(m.start)) / float64(time.Millisecond)
	m.last = m.flock.Tick(ts)
	m.spin++

	if m.last.FPS > 0 {
		m.fps = push(m.fps, m.last.FPS)
	}
	m.pop = push(m.pop, float64(m.last.Population))
}

func push(h []float64, v float64) []float64 {
	if len(h) >= historyCapacity {
		copy(h, h[1:])
		h = h[:len(h)-1]
	}
	return append(h, v)
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("BIRDS") + "\n")

	if m.running {
		s.WriteString(statusRunning.Render(AnimatedSpinner(m.spin)+" RUNNING") + "\n\n")
	} else {
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.fps) > 1 {
		chart := asciigraph.Plot(m.fps, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("fps"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	store := m.flock.Store()
	cfg := m.flock.Controller().Config()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Population", fmt.Sprintf("%d", store.Len()))
	if m.notice != "" {
		s.WriteString(statusPaused.Render(m.notice) + "\n")
	}
	row("Capacity", ProgressBar(float64(store.Len())/float64(store.Cap()), 20))
	row("FPS", fmt.Sprintf("%.2f", m.flock.Controller().LastFPS()))
	row("Band", fmt.Sprintf("%.1f [%.1f, %.1f]", cfg.Target, cfg.Min, cfg.Max))
	row("Window", m.flock.Controller().State().String())
	row("Backend", m.flock.Integrator().Name())
	row("Frame", fmt.Sprintf("%d", m.flock.Frames()))
	row("Advance", fmt.Sprintf("%.1fµs", float64(m.last.AdvanceNs)/1000))
	s.WriteString("\n" + SparklineChart(m.pop, 30) + "\n")

	s.WriteString(helpStyle.Render("SP:Start/Stop +/-:Birds R:Reset\nT:Theme ?:Help Q:Quit"))

	canvasView := canvasStyle.Render(m.canvas.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Start/stop animation     ║
║  + / -    - Add or remove 10% birds  ║
║  R        - Reset population         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// Run starts the live view in the alternate screen.
func Run(f *sim.Flock, canvas *surface.Canvas, refresh time.Duration) error {
	_, err := tea.NewProgram(NewModel(f, canvas, refresh), tea.WithAltScreen()).Run()
	return err
}
