package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/integrators"
	"github.com/san-kum/birdsim/internal/sim"
	"github.com/san-kum/birdsim/internal/surface"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	canvas := surface.NewCanvas(30, 8)
	opts := sim.DefaultOptions()
	opts.Capacity = 1000
	opts.Initial = 50
	f, err := sim.NewFlock(opts, integrators.NewLanes(dynamo.DefaultParams()), canvas)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(f, canvas, time.Second/60)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTicksFlock(t *testing.T) {
	m := newTestModel(t)
	t0 := time.Unix(1700000000, 0)

	m = update(t, m, TickMsg(t0))
	m = update(t, m, TickMsg(t0.Add(16*time.Millisecond)))

	if got := m.flock.Frames(); got != 2 {
		t.Fatalf("expected 2 frames, got %d", got)
	}
	if m.last.Delta != 16 {
		t.Errorf("expected delta 16ms, got %v", m.last.Delta)
	}
	if len(m.pop) != 2 {
		t.Errorf("expected 2 population samples, got %d", len(m.pop))
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t)
	t0 := time.Unix(1700000000, 0)

	m = update(t, m, TickMsg(t0))
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(t, m, TickMsg(t0.Add(time.Second)))

	if got := m.flock.Frames(); got != 1 {
		t.Errorf("paused model ticked: %d frames", got)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("view does not show paused state")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(t, m, TickMsg(t0.Add(2*time.Second)))
	if m.last.Delta != 0 {
		t.Errorf("first frame after resume integrated %vms", m.last.Delta)
	}
}

func TestModelManualPopulation(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	if got := m.flock.Len(); got != 55 {
		t.Errorf("expected 55 birds after +, got %d", got)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if got := m.flock.Len(); got != 50 {
		t.Errorf("expected 50 birds after -, got %d", got)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if got := m.flock.Len(); got != 50 {
		t.Errorf("expected reset to 50 birds, got %d", got)
	}
	if got := m.canvas.Len(); got != 50 {
		t.Errorf("canvas holds %d markers, want 50", got)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestSparklineWidth(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	if got := len([]rune(stripANSI(SparklineChart(values, 30)))); got != 30 {
		t.Errorf("sparkline has %d cells, want 30", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestModelShowsFullStore(t *testing.T) {
	canvas := surface.NewCanvas(10, 4)
	opts := sim.DefaultOptions()
	opts.Capacity = 55
	opts.Initial = 50
	f, err := sim.NewFlock(opts, integrators.NewScalar(dynamo.DefaultParams()), canvas)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(f, canvas, time.Second/60)
	plus := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}}
	minus := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}}

	m = update(t, m, plus)
	if m.notice != "" || f.Len() != 55 {
		t.Fatalf("first grow: notice %q, len %d", m.notice, f.Len())
	}

	m = update(t, m, plus)
	if m.notice != "FULL" {
		t.Errorf("expected FULL notice, got %q", m.notice)
	}
	if !strings.Contains(m.View(), "FULL") {
		t.Error("view does not show the full store")
	}

	m = update(t, m, minus)
	if m.notice != "" {
		t.Errorf("notice should clear after a successful shrink, got %q", m.notice)
	}
}
