package tui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

func newModel(t *testing.T) Model {
	t.Helper()
	scene := config.DefaultScene()
	scene.Cloth.NumWidthPoints = 6
	scene.Cloth.NumHeightPoints = 6
	scene.Cloth.Pinned = [][2]int{{0, 5}, {5, 5}}
	scene.Sim.Substeps = 4
	s, cfg, err := sim.FromScene(scene)
	if err != nil {
		t.Fatal(err)
	}
	return NewModel(s, cfg, scene.Name)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_TickAdvancesFrame(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 3; i++ {
		m = update(m, TickMsg{})
	}
	if m.frame != 3 {
		t.Errorf("expected 3 frames, got %d", m.frame)
	}
	if got := m.sim.Cloth().Steps(); got != 3*4 {
		t.Errorf("expected 12 steps, got %d", got)
	}
	if len(m.history) != 3 {
		t.Errorf("expected 3 energy samples, got %d", len(m.history))
	}
	if !strings.Contains(m.View(), "RUNNING") {
		t.Error("expected running status in view")
	}
}

func TestModel_PauseStopsStepping(t *testing.T) {
	m := newModel(t)
	m = update(m, key(" "))
	m = update(m, TickMsg{})
	if m.frame != 0 {
		t.Errorf("paused model advanced to frame %d", m.frame)
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("expected paused status in view")
	}
}

func TestModel_TuneAndReset(t *testing.T) {
	m := newModel(t)
	ks := m.sim.Params().Ks

	m = update(m, key("up"))
	if got := m.sim.Params().Ks; got <= ks {
		t.Errorf("expected ks to grow from %g, got %g", ks, got)
	}

	m = update(m, key("tab"))
	m = update(m, key("tab"))
	for i := 0; i < 100; i++ {
		m = update(m, key("up"))
	}
	if got := m.sim.Params().Damping; got > 100 {
		t.Errorf("damping exceeded 100: %g", got)
	}

	m = update(m, key("2"))
	if m.sim.Params().EnableShearing {
		t.Error("expected shearing springs toggled off")
	}

	m = update(m, TickMsg{})
	m = update(m, key("r"))
	if m.sim.Params() != m.initialParams {
		t.Error("reset did not restore parameters")
	}
	if m.frame != 0 || m.sim.Cloth().Steps() != 0 {
		t.Error("reset did not rewind the cloth")
	}
}

func TestModel_QuitCommand(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestRenderer_WritesFrame(t *testing.T) {
	m := newModel(t)
	var buf bytes.Buffer
	r := NewRenderer(&buf, "pinned2", 1000, 10, nil)
	r.OnFrame(m.sim.Cloth(), 7, 0.5)

	out := buf.String()
	if !strings.HasPrefix(out, clearScreen) {
		t.Error("expected screen clear")
	}
	if !strings.Contains(out, "6x6  frame=7") {
		t.Errorf("missing frame header in %q", out[:min(len(out), 80)])
	}
	if !strings.Contains(out, " 80%") || !strings.Contains(out, "█") {
		t.Error("expected a progress bar at 80%")
	}
}

func TestModel_PanelShowsPeakAndStretchHistory(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 5; i++ {
		m = update(m, TickMsg{})
	}
	if len(m.stretchHistory) != 5 {
		t.Errorf("expected 5 stretch samples, got %d", len(m.stretchHistory))
	}
	if m.energy.Peak() < m.energy.Value() {
		t.Errorf("peak %g below current energy %g", m.energy.Peak(), m.energy.Value())
	}
	view := m.View()
	if !strings.Contains(view, "Peak") {
		t.Error("expected peak energy row in view")
	}
	if !strings.ContainsAny(view, "▁▂▃▄▅▆▇█") {
		t.Error("expected a stretch sparkline in view")
	}

	m = update(m, key("r"))
	if len(m.stretchHistory) != 0 {
		t.Error("reset kept stretch history")
	}
}

func TestModel_RotateZ(t *testing.T) {
	m := newModel(t)
	m = update(m, key("z"))
	if m.camera.RotZ <= 0 {
		t.Errorf("expected z rotation, got %g", m.camera.RotZ)
	}
	m = update(m, key("Z"))
	if m.camera.RotZ != 0 {
		t.Errorf("expected z rotation undone, got %g", m.camera.RotZ)
	}
}
