package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/driver"
)

// Session is everything one running script needs from the terminal side.
type Session struct {
	Script   string // display name, used for screenshots
	Driver   *driver.Driver
	Screen   *core.Screen
	Keys     *core.KeyState
	Config   core.RuntimeConfig
	DebugKey string
	Renderer *Renderer
}

// Model is the Bubble Tea model that drives one script.
type Model struct {
	script   string
	driver   *driver.Driver
	screen   *core.Screen
	keys     *core.KeyState
	config   core.RuntimeConfig
	keymap   KeyMap
	help     help.Model
	renderer *Renderer
	showHelp bool
	quitting bool
}

// NewModel creates a new Bubble Tea model for a started driver.
func NewModel(s Session) Model {
	if s.Renderer == nil {
		s.Renderer = NewRenderer(nil)
	}

	h := help.New()
	h.ShowAll = true
	h.Width = s.Config.ScreenW

	return Model{
		script:   s.Script,
		driver:   s.Driver,
		screen:   s.Screen,
		keys:     s.Keys,
		config:   s.Config,
		keymap:   DefaultKeyMap(s.DebugKey),
		help:     h,
		renderer: s.Renderer,
	}
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()

	case tea.BlurMsg:
		// no key-up will arrive for keys held while unfocused
		m.keys.ReleaseAll()
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Debug):
		m.driver.ToggleDebug()
		return m, nil
	case key.Matches(msg, m.keymap.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if k, ok := m.keymap.ScriptKey(msg); ok {
		m.keys.Press(k)
	}
	return m, nil
}

// handleResize processes window resize events.
// The canvas reads its size from the screen, so scripts see the new
// dimensions on the next frame.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.help.Width = msg.Width
	return m, nil
}

// handleTick runs one frame and schedules the next.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	m.screen.Clear()
	m.driver.Tick()

	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	dir := filepath.Join(os.Getenv("HOME"), ".scriptloop", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	name := strings.TrimSuffix(filepath.Base(m.script), filepath.Ext(m.script))
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", name, timestamp))

	//nolint:errcheck // Best-effort save, script keeps running
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	frame := m.renderer.Render(m.screen)
	if !m.showHelp {
		return frame
	}

	// help replaces the bottom rows of the frame
	helpView := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(m.help.View(m.keymap))
	rows := strings.Split(frame, "\n")
	helpRows := strings.Count(helpView, "\n") + 1
	if keep := len(rows) - helpRows; keep > 0 {
		rows = rows[:keep]
	}
	return strings.Join(rows, "\n") + "\n" + helpView
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// Run starts the Bubble Tea program for s and blocks until it exits.
func Run(s Session) error {
	p := tea.NewProgram(
		NewModel(s),
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithReportFocus(),
	)

	_, err := p.Run()
	return err
}
