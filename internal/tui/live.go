package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/viz"
)

const (
	canvasWidth     = 60
	canvasHeight    = 24
	historyCapacity = 300
	gifPath         = "cloth.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

// tunable is one parameter the arrow keys can scale.
type tunable struct {
	name string
	get  func(p cloth.Params) float64
	set  func(p *cloth.Params, v float64)
	max  float64
}

var tunables = []tunable{
	{"ks", func(p cloth.Params) float64 { return p.Ks }, func(p *cloth.Params, v float64) { p.Ks = v }, 1e6},
	{"density", func(p cloth.Params) float64 { return p.Density }, func(p *cloth.Params, v float64) { p.Density = v }, 1e4},
	{"damping", func(p cloth.Params) float64 { return p.Damping }, func(p *cloth.Params, v float64) { p.Damping = v }, 100},
}

// Model drives a Simulator one frame per tick and draws it.
type Model struct {
	sim           *sim.Simulator
	cfg           sim.Config
	name          string
	initialParams cloth.Params
	energy        *metrics.KineticEnergy
	stretch       *metrics.MaxStretch

	canvas   *viz.Canvas
	camera   *viz.Camera
	allKinds bool

	running        bool
	frame          int
	t              float64
	history        []float64
	stretchHistory []float64
	selected       int
	showHelp       bool
	recorder       *viz.Recorder
	status         string
	err            error
}

func NewModel(s *sim.Simulator, cfg sim.Config, name string) Model {
	cam := viz.NewCamera()
	cam.Frame(s.Cloth().Positions())
	return Model{
		sim:            s,
		cfg:            cfg,
		name:           name,
		initialParams:  s.Params(),
		energy:         metrics.NewKineticEnergy(s.Params().Density, cfg.Dt()),
		stretch:        metrics.NewMaxStretch(),
		canvas:         viz.NewCanvas(canvasWidth, canvasHeight),
		camera:         cam,
		running:        true,
		history:        make([]float64, 0, historyCapacity),
		stretchHistory: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running && m.err == nil
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.1)
		case "down", "j":
			m.adjust(1 / 1.1)
		case "1", "2", "3":
			m.toggleKind(cloth.SpringKind(msg.String()[0] - '1'))
		case "w":
			m.allKinds = !m.allKinds
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

// step advances one frame and records its kinetic energy.
func (m *Model) step() {
	if err := m.sim.Frame(m.cfg); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame++
	m.t += 1 / m.cfg.FPS

	c := m.sim.Cloth()
	m.energy.Observe(c, m.t)
	m.stretch.Observe(c, m.t)
	m.history = appendCapped(m.history, m.energy.Value())
	m.stretchHistory = appendCapped(m.stretchHistory, m.stretch.Current())
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) adjust(factor float64) {
	tn := tunables[m.selected]
	p := m.sim.Params()
	v := min(tn.get(p)*factor, tn.max)
	if v == 0 && factor > 1 {
		v = 0.1
	}
	tn.set(&p, v)
	if err := p.Validate(); err != nil {
		m.status = err.Error()
		return
	}
	m.sim.SetParams(p)
	if tn.name == "density" {
		m.energy = metrics.NewKineticEnergy(p.Density, m.cfg.Dt())
	}
	m.status = ""
}

func (m *Model) toggleKind(k cloth.SpringKind) {
	p := m.sim.Params()
	switch k {
	case cloth.Structural:
		p.EnableStructural = !p.EnableStructural
	case cloth.Shearing:
		p.EnableShearing = !p.EnableShearing
	case cloth.Bending:
		p.EnableBending = !p.EnableBending
	}
	m.sim.SetParams(p)
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = viz.NewRecorder(3)
		m.status = "recording"
		return
	}
	m.status = m.saveGIF()
	m.recorder = nil
}

func (m *Model) saveGIF() string {
	if m.recorder.Len() == 0 {
		return "nothing recorded"
	}
	f, err := os.Create(gifPath)
	if err != nil {
		return err.Error()
	}
	defer f.Close()
	if err := m.recorder.Encode(f); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), gifPath)
}

// reset restores the rest pose and the starting parameters.
func (m *Model) reset() {
	m.sim.Cloth().Reset()
	m.sim.SetParams(m.initialParams)
	m.energy = metrics.NewKineticEnergy(m.initialParams.Density, m.cfg.Dt())
	m.stretch.Reset()
	m.history = m.history[:0]
	m.stretchHistory = m.stretchHistory[:0]
	m.frame = 0
	m.t = 0
	m.err = nil
	m.running = true
}

func (m *Model) draw() {
	m.canvas.Clear()
	var kinds []cloth.SpringKind
	if m.allKinds {
		kinds = []cloth.SpringKind{cloth.Structural, cloth.Shearing, cloth.Bending}
	}
	viz.Render3D(m.canvas, viz.SceneWireframe(m.sim.Cloth(), m.sim.Colliders(), kinds...), m.camera)
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(viz.Title.Render(strings.ToUpper(m.name)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(viz.StatusRecording.Render("UNSTABLE") + "\n")
	case m.recorder != nil:
		s.WriteString(viz.StatusRecording.Render("● REC") + "\n")
	case m.running:
		s.WriteString(viz.StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(viz.StatusPaused.Render("PAUSED") + "\n")
	}

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	p := m.sim.Params()
	row := func(label, value string) {
		s.WriteString(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.t))
	row("Frame", fmt.Sprintf("%d", m.frame))
	row("Energy", fmt.Sprintf("%.4f", m.energy.Value()))
	row("Peak", fmt.Sprintf("%.4f", m.energy.Peak()))
	row("Stretch", fmt.Sprintf("%.3f", m.stretch.Current()))
	s.WriteString(viz.MetricLabel.Render("") + viz.Sparkline(m.stretchHistory, 28) + "\n")

	s.WriteString("\nPARAMETERS\n")
	for i, tn := range tunables {
		line := fmt.Sprintf("%-8s %10.2f", tn.name, tn.get(p))
		if i == m.selected {
			s.WriteString(viz.ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + viz.MetricLabel.Render(line) + "\n")
		}
	}
	s.WriteString(fmt.Sprintf("  springs  %s %s %s\n",
		onOff("S", p.EnableStructural), onOff("H", p.EnableShearing), onOff("B", p.EnableBending)))

	if m.err != nil {
		s.WriteString("\n" + viz.StatusRecording.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + viz.Subtle.Render(m.status) + "\n")
	}
	s.WriteString(viz.KeyHint.Render("\nSP:Pause R:Reset Q:Quit ?:Help\nTab/↑↓:Tune 1-3:Springs G:Record"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return viz.Panel.Render(helpText) + "\n" + main
	}
	return main
}

func onOff(label string, on bool) string {
	if on {
		return viz.StatusRunning.Render(label)
	}
	return viz.Subtle.Render(strings.ToLower(label))
}

const helpText = `KEYBOARD SHORTCUTS
  Space    pause / resume
  R        reset to rest pose and starting parameters
  Tab      select parameter
  Up/K     increase parameter 10%
  Down/J   decrease parameter 10%
  1 2 3    toggle structural, shearing, bending springs
  W        draw every spring kind
  X Y Z    rotate camera (shift reverses)
  + -      zoom
  G        start / stop GIF recording
  Q        quit`

// Run starts the full-screen live view.
func Run(s *sim.Simulator, cfg sim.Config, name string) error {
	_, err := tea.NewProgram(NewModel(s, cfg, name), tea.WithAltScreen()).Run()
	return err
}
