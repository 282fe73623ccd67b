package registry

import (
	"github.com/dop251/goja"

	"github.com/vovakirdan/scriptloop/internal/core"
)

func init() {
	Register(Capability{
		Name:    "is_key_down",
		Arity:   1,
		Summary: "is_key_down(key_name) - left, right, up, down or space",
		Bind:    bindIsKeyDown,
	})
}

// bindIsKeyDown answers false for anything that is not a known key name.
func bindIsKeyDown(vm *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name, err := stringArg(call.Argument(0))
		if err != nil {
			return vm.ToValue(false)
		}
		key, ok := core.ParseKey(name)
		if !ok || h.Input == nil {
			return vm.ToValue(false)
		}
		return vm.ToValue(h.Input.IsKeyDown(key))
	}
}
