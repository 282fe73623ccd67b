package registry

import (
	"github.com/dop251/goja"
)

func init() {
	Register(Capability{
		Name:    "get_time",
		Arity:   0,
		Summary: "get_time() - monotonic seconds since host start",
		Bind:    bindGetTime,
	})
	Register(Capability{
		Name:    "screen_width",
		Arity:   0,
		Summary: "screen_width() - frame width in pixels",
		Bind:    bindScreenSize(0),
	})
	Register(Capability{
		Name:    "screen_height",
		Arity:   0,
		Summary: "screen_height() - frame height in pixels",
		Bind:    bindScreenSize(1),
	})
}

func bindGetTime(vm *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
	return func(goja.FunctionCall) goja.Value {
		return vm.ToValue(h.Clock.Seconds())
	}
}

// bindScreenSize reads the live canvas size so resizes show up at once.
func bindScreenSize(axis int) Binder {
	return func(vm *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
		return func(goja.FunctionCall) goja.Value {
			w, hgt := h.Canvas.Size()
			if axis == 0 {
				return vm.ToValue(w)
			}
			return vm.ToValue(hgt)
		}
	}
}
