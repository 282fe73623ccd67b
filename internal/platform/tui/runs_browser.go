package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/scriptloop/internal/storage"
)

// Run browser layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show the script list sidebar
	sidebarWidth       = 24
	maxRuns            = 100
)

// BrowserKeyMap defines the key bindings for the run browser.
type BrowserKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	NextScript key.Binding
	PrevScript key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextScript, k.PrevScript, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextScript, k.PrevScript, k.Quit},
	}
}

// DefaultBrowserKeyMap returns default key bindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextScript: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next script"),
		),
		PrevScript: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev script"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowserModel is the Bubble Tea model for browsing recorded runs,
// one script at a time.
type BrowserModel struct {
	scripts     []string
	cursor      int
	store       *storage.Store
	runs        []storage.RunRecord
	table       table.Model
	help        help.Model
	keys        BrowserKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewBrowserModel creates a run browser over every script in store.
func NewBrowserModel(store *storage.Store, width, height int) BrowserModel {
	m := BrowserModel{
		store:       store,
		keys:        DefaultBrowserKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}

	if store != nil {
		//nolint:errcheck // An unreadable database shows as empty
		m.scripts, _ = store.Scripts()
	}

	m.table = m.createTable()
	if len(m.scripts) > 0 {
		m.loadRuns(m.scripts[0])
	}
	return m
}

// createTable creates a new table sized to the current window.
func (m *BrowserModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Origin", Width: 12},
		{Title: "Frames", Width: 7},
		{Title: "FPS", Width: 5},
		{Title: "Update", Width: 9},
		{Title: "Draw", Width: 9},
		{Title: "Faults", Width: 6},
		{Title: "Date", Width: 12},
	}

	// Give spare width to the origin column, which holds ssh user names
	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	if extra := tableWidth - used; extra > 0 {
		columns[1].Width += min(extra, 12)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadRuns loads the recent runs of one script.
func (m *BrowserModel) loadRuns(script string) {
	m.runs = nil
	if m.store != nil {
		if runs, err := m.store.RecentRuns(script, maxRuns); err == nil {
			m.runs = runs
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the loaded runs.
func (m *BrowserModel) updateTableRows() {
	m.table.SetRows(RunRows(m.runs))
	m.table.GotoTop()
}

// RunRows formats runs as table rows, newest first as given.
func RunRows(runs []storage.RunRecord) []table.Row {
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			fmt.Sprintf("%d", r.ID),
			r.Origin,
			fmt.Sprintf("%d", r.Ticks),
			fmt.Sprintf("%.0f", r.FPS()),
			fmt.Sprintf("%.3fms", r.AvgUpdateMs),
			fmt.Sprintf("%.3fms", r.AvgDrawMs),
			fmt.Sprintf("%d", r.Faults),
			r.StartedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// Init initializes the browser model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextScript):
			if len(m.scripts) > 0 {
				m.cursor = (m.cursor + 1) % len(m.scripts)
				m.loadRuns(m.scripts[m.cursor])
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevScript):
			if len(m.scripts) > 0 {
				m.cursor--
				if m.cursor < 0 {
					m.cursor = len(m.scripts) - 1
				}
				m.loadRuns(m.scripts[m.cursor])
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Scrolling and everything else goes to the table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Script returns the script whose runs are shown, or "" if there are none.
func (m BrowserModel) Script() string {
	if len(m.scripts) == 0 {
		return ""
	}
	return m.scripts[m.cursor]
}

// View renders the browser.
func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := "RUN HISTORY"
	if s := m.Script(); s != "" {
		title = fmt.Sprintf("RUN HISTORY - %s", filepath.Base(s))
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the script list next to the table.
func (m BrowserModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Scripts\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, s := range m.scripts {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.cursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + truncate(filepath.Base(s), sidebarWidth-6)))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		"  ",
		tableStyle.Render(m.renderTableContent()),
	)
}

// renderNarrowLayout renders the current script name above the table.
func (m BrowserModel) renderNarrowLayout() string {
	var b strings.Builder

	if s := m.Script(); s != "" {
		tab := fmt.Sprintf("< %s >  %d/%d", truncate(filepath.Base(s), 20), m.cursor+1, len(m.scripts))
		b.WriteString(centerText(tab, m.width))
		b.WriteString("\n\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))
	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m BrowserModel) renderTableContent() string {
	if len(m.runs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No runs recorded yet.\nRun a script to record one!")
	}

	return m.table.View()
}

// RunBrowser runs the run history browser until the user quits.
func RunBrowser(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewBrowserModel(store, width, height),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "."
}
