package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/scriptloop/internal/core"
)

type colorPair struct {
	fg, bg core.Color
}

// Renderer converts a Screen into styled terminal output.
// Styles are cached per foreground/background pair.
type Renderer struct {
	lg     *lipgloss.Renderer
	styles map[colorPair]lipgloss.Style
}

// NewRenderer creates a renderer. A nil lg uses the default lipgloss
// renderer for stdout.
func NewRenderer(lg *lipgloss.Renderer) *Renderer {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Renderer{
		lg:     lg,
		styles: make(map[colorPair]lipgloss.Style),
	}
}

func (r *Renderer) style(fg, bg core.Color) lipgloss.Style {
	key := colorPair{fg: fg, bg: bg}
	if s, ok := r.styles[key]; ok {
		return s
	}
	s := r.lg.NewStyle().
		Foreground(lipgloss.Color(fg.Hex())).
		Background(lipgloss.Color(bg.Hex()))
	r.styles[key] = s
	return s
}

// Render converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colors to minimize ANSI escape sequences.
func (r *Renderer) Render(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same colors for efficiency
		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			// Collect consecutive cells with same colors
			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.FG != start.FG || cell.BG != start.BG {
					break
				}
				// zero runes continue the wide glyph to their left
				if cell.Rune != 0 {
					run.WriteRune(cell.Rune)
				}
				x++
			}

			sb.WriteString(r.style(start.FG, start.BG).Render(run.String()))
		}
	}
	return sb.String()
}
