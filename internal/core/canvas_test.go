package core

import "testing"

// newTestCanvas returns a 10x4 cell canvas (80x64 pixels).
func newTestCanvas() *PixelCanvas {
	return NewPixelCanvas(NewScreen(10, 4), 8, 16)
}

func paintedCells(s *Screen, bg Color) map[[2]int]bool {
	cells := make(map[[2]int]bool)
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.GetCell(x, y).BG == bg {
				cells[[2]int{x, y}] = true
			}
		}
	}
	return cells
}

func TestPixelCanvasSize(t *testing.T) {
	c := newTestCanvas()
	w, h := c.Size()
	if w != 80 || h != 64 {
		t.Errorf("Size() = (%v, %v), expected (80, 64)", w, h)
	}
}

func TestPixelCanvasClear(t *testing.T) {
	c := newTestCanvas()
	c.Screen().Set(3, 3, 'x')

	c.Clear(RGBA(10, 20, 30, 255))

	for y := 0; y < 4; y++ {
		for x := 0; x < 10; x++ {
			cell := c.Screen().GetCell(x, y)
			if cell.BG != RGBA(10, 20, 30, 255) || cell.Rune != ' ' {
				t.Fatalf("Clear() left %+v at (%d, %d)", cell, x, y)
			}
		}
	}
}

func TestPixelCanvasClearIgnoresAlpha(t *testing.T) {
	c := newTestCanvas()
	c.Clear(RGBA(10, 20, 30, 0))

	if got := c.Screen().GetCell(5, 2).BG; got != RGBA(10, 20, 30, 255) {
		t.Errorf("Clear() with alpha 0 painted %v, expected opaque %v", got, RGBA(10, 20, 30, 255))
	}
}

func TestPixelCanvasFillRect(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 16, 16, ColorRed)

	got := paintedCells(c.Screen(), ColorRed)
	expected := map[[2]int]bool{{0, 0}: true, {1, 0}: true}
	if len(got) != len(expected) {
		t.Fatalf("FillRect painted %v, expected %v", got, expected)
	}
	for cell := range expected {
		if !got[cell] {
			t.Errorf("FillRect did not paint %v", cell)
		}
	}
}

func TestPixelCanvasFillRectNegativeSize(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(16, 16, -16, -16, ColorRed)

	if !paintedCells(c.Screen(), ColorRed)[[2]int{1, 0}] {
		t.Error("FillRect with negative size should normalise the box")
	}
}

func TestPixelCanvasFillCircle(t *testing.T) {
	c := newTestCanvas()
	c.FillCircle(40, 32, 12, ColorGreen)

	got := paintedCells(c.Screen(), ColorGreen)
	expected := [][2]int{{4, 1}, {5, 1}, {4, 2}, {5, 2}}
	if len(got) != len(expected) {
		t.Fatalf("FillCircle painted %d cells, expected %d: %v", len(got), len(expected), got)
	}
	for _, cell := range expected {
		if !got[cell] {
			t.Errorf("FillCircle did not paint %v", cell)
		}
	}
}

func TestPixelCanvasFillCircleTiny(t *testing.T) {
	c := newTestCanvas()
	c.FillCircle(3, 3, 1, ColorGreen)

	got := paintedCells(c.Screen(), ColorGreen)
	if len(got) != 1 || !got[[2]int{0, 0}] {
		t.Errorf("Tiny circle should mark its centre cell, got %v", got)
	}
}

func TestPixelCanvasFillCircleNonPositiveRadius(t *testing.T) {
	c := newTestCanvas()
	c.FillCircle(40, 32, 0, ColorGreen)
	c.FillCircle(40, 32, -5, ColorGreen)

	if got := paintedCells(c.Screen(), ColorGreen); len(got) != 0 {
		t.Errorf("Non-positive radius should draw nothing, got %v", got)
	}
}

func TestPixelCanvasDrawText(t *testing.T) {
	c := newTestCanvas()
	c.DrawText("Hi", 8, 24, 20, ColorWhite)

	s := c.Screen()
	if s.Get(1, 1) != 'H' || s.Get(2, 1) != 'i' {
		t.Errorf("DrawText placed %q, expected \"Hi\" at column 1 of row 1", s.Row(1))
	}
	if s.GetCell(1, 1).FG != ColorWhite {
		t.Errorf("DrawText FG = %v, expected %v", s.GetCell(1, 1).FG, ColorWhite)
	}
}

func TestPixelCanvasDrawTextWide(t *testing.T) {
	c := newTestCanvas()
	c.DrawText("世a", 0, 24, 20, ColorWhite)

	s := c.Screen()
	if s.Get(0, 1) != '世' || s.Get(1, 1) != 0 || s.Get(2, 1) != 'a' {
		t.Errorf("Wide glyph layout wrong: %q", s.Row(1))
	}
}

func TestPixelCanvasMeasureText(t *testing.T) {
	c := newTestCanvas()

	tests := []struct {
		text string
		w    float64
	}{
		{"", 0},
		{"Hi", 16},
		{"世", 16},
	}

	for _, tc := range tests {
		w, h := c.MeasureText(tc.text, 24)
		if w != tc.w || h != 16 {
			t.Errorf("MeasureText(%q) = (%v, %v), expected (%v, 16)", tc.text, w, h, tc.w)
		}
	}
}

func TestPixelCanvasDrawLine(t *testing.T) {
	c := newTestCanvas()
	c.DrawLine(0, 8, 79, 8, 1, ColorYellow)

	got := paintedCells(c.Screen(), ColorYellow)
	if len(got) != 10 {
		t.Errorf("Horizontal line should cover the whole row, got %d cells", len(got))
	}
	for x := 0; x < 10; x++ {
		if !got[[2]int{x, 0}] {
			t.Errorf("Line missing cell (%d, 0)", x)
		}
	}
}

func TestPixelCanvasTranslucentPaintKeepsText(t *testing.T) {
	c := newTestCanvas()
	c.DrawText("A", 0, 24, 20, ColorWhite)

	c.FillRect(0, 16, 8, 16, RGBA(255, 0, 0, 100))
	if c.Screen().Get(0, 1) != 'A' {
		t.Error("Translucent paint should keep the glyph")
	}

	c.FillRect(0, 16, 8, 16, ColorRed)
	if c.Screen().Get(0, 1) != ' ' {
		t.Error("Opaque paint should hide the glyph")
	}
}

func TestPixelCanvasOffscreenIsClipped(t *testing.T) {
	c := newTestCanvas()

	// None of these should panic
	c.FillCircle(-1e12, 1e12, 1e12, ColorRed)
	c.FillRect(-100, -100, 50, 50, ColorRed)
	c.DrawText("off", 1e9, 1e9, 20, ColorRed)
	c.DrawLine(-1e9, -1e9, 1e9, 1e9, 1, ColorRed)
}

func TestCanvasSizeMatchesPixelSize(t *testing.T) {
	cfg := DefaultConfig()
	c := NewPixelCanvas(NewScreen(cfg.ScreenW, cfg.ScreenH), cfg.CellW, cfg.CellH)

	w, h := c.Size()
	pw, ph := cfg.PixelSize()
	if int(w) != pw || int(h) != ph {
		t.Errorf("Size() = %vx%v, expected %dx%d", w, h, pw, ph)
	}
	if pw != 640 || ph != 384 {
		t.Errorf("PixelSize() = %dx%d, expected 640x384", pw, ph)
	}
}
