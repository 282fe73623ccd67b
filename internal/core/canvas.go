package core

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Canvas is the drawing surface scripts and the overlay paint on.
// Coordinates are in script pixels with the origin at the top-left.
type Canvas interface {
	// Size returns the drawable area in pixels.
	Size() (w, h float64)

	// Clear paints the entire frame with c.
	Clear(c Color)

	// FillCircle draws a filled circle centred on (x, y).
	FillCircle(x, y, radius float64, c Color)

	// DrawText renders text with its baseline at y.
	DrawText(text string, x, y, size float64, c Color)

	// MeasureText returns the extent DrawText would cover.
	MeasureText(text string, size float64) (w, h float64)

	// FillRect draws a filled rectangle.
	FillRect(x, y, w, h float64, c Color)

	// DrawLine draws a straight line between two points.
	DrawLine(x1, y1, x2, y2, thickness float64, c Color)
}

// PixelCanvas rasterises pixel-space drawing onto a Screen.
// A cell is painted when its centre lies inside the shape, so every
// shape maps onto whole cells.
type PixelCanvas struct {
	screen *Screen
	cellW  float64
	cellH  float64
}

// NewPixelCanvas creates a canvas over screen where each cell covers
// cellW x cellH pixels.
func NewPixelCanvas(screen *Screen, cellW, cellH int) *PixelCanvas {
	return &PixelCanvas{
		screen: screen,
		cellW:  float64(Max(cellW, 1)),
		cellH:  float64(Max(cellH, 1)),
	}
}

// Screen returns the underlying cell buffer.
func (p *PixelCanvas) Screen() *Screen {
	return p.screen
}

// Size implements Canvas.
func (p *PixelCanvas) Size() (w, h float64) {
	return float64(p.screen.Width()) * p.cellW, float64(p.screen.Height()) * p.cellH
}

// Clear implements Canvas. The frame has nothing beneath it to blend with,
// so the colour's alpha is ignored and every cell is painted opaque.
func (p *PixelCanvas) Clear(c Color) {
	p.screen.Fill(Cell{Rune: ' ', FG: ColorWhite, BG: RGBA(c.R, c.G, c.B, 255)})
}

// FillCircle implements Canvas. Non-positive radii draw nothing.
// A circle smaller than a cell still marks the cell holding its centre.
func (p *PixelCanvas) FillCircle(x, y, radius float64, c Color) {
	if radius <= 0 || math.IsNaN(radius) {
		return
	}

	area := p.cellSpan(x-radius, y-radius, x+radius, y+radius)
	if area.Empty() {
		return
	}
	painted := false
	r2 := radius * radius
	for cy := area.Y; cy < area.Bottom(); cy++ {
		for cx := area.X; cx < area.Right(); cx++ {
			px, py := p.cellCentre(cx, cy)
			dx, dy := px-x, py-y
			if dx*dx+dy*dy <= r2 {
				p.paint(cx, cy, c)
				painted = true
			}
		}
	}

	if !painted {
		p.paint(p.cellAt(x), p.rowAt(y), c)
	}
}

// DrawText implements Canvas. The terminal has a single glyph size, so
// size is ignored.
func (p *PixelCanvas) DrawText(text string, x, y, size float64, c Color) {
	row := p.rowAt(y - p.cellH/2)
	col := p.cellAt(x)

	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		p.glyph(col, row, r, c)
		if w == 2 {
			p.glyph(col+1, row, 0, c)
		}
		col += w
	}
}

// MeasureText implements Canvas.
func (p *PixelCanvas) MeasureText(text string, size float64) (w, h float64) {
	return float64(runewidth.StringWidth(text)) * p.cellW, p.cellH
}

// FillRect implements Canvas.
func (p *PixelCanvas) FillRect(x, y, w, h float64, c Color) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}

	area := p.cellSpan(x, y, x+w, y+h)
	if area.Empty() {
		return
	}
	for cy := area.Y; cy < area.Bottom(); cy++ {
		for cx := area.X; cx < area.Right(); cx++ {
			px, py := p.cellCentre(cx, cy)
			if px >= x && px < x+w && py >= y && py < y+h {
				p.paint(cx, cy, c)
			}
		}
	}
}

// DrawLine implements Canvas. Lines are one cell thick.
func (p *PixelCanvas) DrawLine(x1, y1, x2, y2, thickness float64, c Color) {
	span := math.Max(math.Abs(x2-x1)/p.cellW, math.Abs(y2-y1)/p.cellH)
	if math.IsNaN(span) {
		return
	}
	limit := 2 * (p.screen.Width() + p.screen.Height())
	steps := Min(int(math.Ceil(math.Min(span, float64(limit))*2)), 2*limit) + 1
	seen := make(map[[2]int]bool, steps)

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cell := [2]int{p.cellAt(x1 + (x2-x1)*t), p.rowAt(y1 + (y2-y1)*t)}
		if seen[cell] {
			continue
		}
		seen[cell] = true
		p.paint(cell[0], cell[1], c)
	}
}

// paint composites c over the cell background. Opaque paint hides text.
func (p *PixelCanvas) paint(cx, cy int, c Color) {
	if !p.screen.inBounds(cx, cy) {
		return
	}
	cell := p.screen.GetCell(cx, cy)
	cell.BG = c.Over(cell.BG)
	if c.Opaque() {
		cell.Rune = ' '
	}
	p.screen.SetCell(cx, cy, cell)
}

func (p *PixelCanvas) glyph(cx, cy int, r rune, c Color) {
	if !p.screen.inBounds(cx, cy) {
		return
	}
	cell := p.screen.GetCell(cx, cy)
	cell.Rune = r
	cell.FG = c.Over(cell.BG)
	p.screen.SetCell(cx, cy, cell)
}

// cellSpan returns the cells touched by a pixel box, clipped to the screen.
func (p *PixelCanvas) cellSpan(x0, y0, x1, y1 float64) Rect {
	c0, r0 := p.cellAt(x0), p.rowAt(y0)
	c1, r1 := p.cellAt(x1), p.rowAt(y1)
	return NewRect(c0, r0, c1-c0+1, r1-r0+1).Intersect(p.screen.Bounds())
}

func (p *PixelCanvas) cellCentre(cx, cy int) (x, y float64) {
	return (float64(cx) + 0.5) * p.cellW, (float64(cy) + 0.5) * p.cellH
}

func (p *PixelCanvas) cellAt(x float64) int {
	return clampCoord(math.Floor(x / p.cellW))
}

func (p *PixelCanvas) rowAt(y float64) int {
	return clampCoord(math.Floor(y / p.cellH))
}

// clampCoord keeps huge or non-finite script coordinates from overflowing
// int conversion.
func clampCoord(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return int(ClampF(v, -1<<20, 1<<20))
}
