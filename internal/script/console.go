package script

import (
	"github.com/charmbracelet/log"
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
)

// consolePrinter routes console.log/warn/error into the structured logger.
type consolePrinter struct {
	logger *log.Logger
}

func (p consolePrinter) Log(s string)   { p.logger.Info(s, "source", "console") }
func (p consolePrinter) Warn(s string)  { p.logger.Warn(s, "source", "console") }
func (p consolePrinter) Error(s string) { p.logger.Error(s, "source", "console") }

func enableConsole(vm *goja.Runtime, logger *log.Logger) {
	reg := new(require.Registry)
	reg.RegisterNativeModule("console", console.RequireWithPrinter(consolePrinter{logger: logger}))
	reg.Enable(vm)
	console.Enable(vm)
}
