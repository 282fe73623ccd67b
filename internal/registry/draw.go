package registry

import (
	"math"

	"github.com/dop251/goja"
)

func init() {
	Register(Capability{
		Name:    "clear_background",
		Arity:   1,
		Summary: "clear_background(color) - paint the whole frame",
		Bind:    bindClearBackground,
	})
	Register(Capability{
		Name:    "draw_circle",
		Arity:   4,
		Summary: "draw_circle(x, y, radius, color) - filled circle",
		Bind:    bindDrawCircle,
	})
	Register(Capability{
		Name:    "draw_text",
		Arity:   5,
		Summary: "draw_text(text, x, y, font_size, color) - text on a baseline",
		Bind:    bindDrawText,
	})
}

// Drawing capabilities never throw: bad arguments are logged and the call
// does nothing.

func bindClearBackground(_ *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		color, err := colorArg(call.Argument(0))
		if err != nil {
			h.logger().Warn("clear_background: invalid color", "error", err)
			return goja.Undefined()
		}

		h.logger().Debug("clear_background", "color", color)
		h.Canvas.Clear(color)
		return goja.Undefined()
	}
}

func bindDrawCircle(_ *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var xyr [3]float64
		for i := range xyr {
			n, err := numberArg(call.Argument(i))
			if err != nil {
				h.logger().Warn("draw_circle: invalid argument", "index", i, "error", err)
				return goja.Undefined()
			}
			xyr[i] = n
		}

		color, err := colorArg(call.Argument(3))
		if err != nil {
			h.logger().Warn("draw_circle: invalid color", "error", err)
			return goja.Undefined()
		}

		h.logger().Debug("draw_circle", "x", xyr[0], "y", xyr[1], "radius", xyr[2], "color", color)
		h.Canvas.FillCircle(xyr[0], xyr[1], xyr[2], color)
		return goja.Undefined()
	}
}

func bindDrawText(_ *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		text, err := stringArg(call.Argument(0))
		if err == nil && text == "" {
			err = errEmptyText
		}
		if err != nil {
			h.logger().Warn("draw_text: invalid text", "error", err)
			return goja.Undefined()
		}

		var xys [3]float64
		for i := range xys {
			n, err := numberArg(call.Argument(i + 1))
			if err != nil {
				h.logger().Warn("draw_text: invalid argument", "index", i+1, "error", err)
				return goja.Undefined()
			}
			xys[i] = n
		}
		if size := xys[2]; size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
			h.logger().Warn("draw_text: invalid font size", "error", errFontSize, "font_size", size)
			return goja.Undefined()
		}

		color, err := colorArg(call.Argument(4))
		if err != nil {
			h.logger().Warn("draw_text: invalid color", "error", err)
			return goja.Undefined()
		}

		h.logger().Debug("draw_text", "text", text, "x", xys[0], "y", xys[1], "font_size", xys[2], "color", color)
		h.Canvas.DrawText(text, xys[0], xys[1], xys[2], color)
		return goja.Undefined()
	}
}
