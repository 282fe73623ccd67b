package core

// RuntimeConfig contains the host parameters a script session runs with.
// The frame buffer is a grid of terminal cells, each standing in for a
// CellW x CellH block of script pixels.
type RuntimeConfig struct {
	ScreenW  int // Screen width in characters
	ScreenH  int // Screen height in characters
	CellW    int // Script pixels per cell, horizontally
	CellH    int // Script pixels per cell, vertically
	TickRate int // Frames per second (default 60)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		CellW:    8,
		CellH:    16,
		TickRate: 60,
	}
}

// PixelSize returns the frame buffer size in script pixels.
func (c RuntimeConfig) PixelSize() (w, h int) {
	return c.ScreenW * c.CellW, c.ScreenH * c.CellH
}
