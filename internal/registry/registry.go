// Package registry holds the catalog of host capabilities exposed to scripts.
// Capabilities register themselves in init() functions; Install binds the
// whole catalog into a script runtime's global table against one Host.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/vovakirdan/scriptloop/internal/core"
)

// Host is the set of host-side services capabilities act on.
// Every capability call is a side effect on one of these.
type Host struct {
	Canvas core.Canvas
	Input  core.Input
	Clock  core.Clock
	Logger *log.Logger
}

func (h Host) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

// Binder builds the script-callable function for one capability.
type Binder func(vm *goja.Runtime, h Host) func(goja.FunctionCall) goja.Value

// Capability describes one host function visible to scripts.
// Name and Arity are part of the script-facing contract.
type Capability struct {
	Name    string
	Arity   int
	Summary string
	Bind    Binder
}

// Info is the printable part of a Capability.
type Info struct {
	Name    string
	Arity   int
	Summary string
}

var (
	capabilities = make(map[string]Capability)
	mu           sync.RWMutex
)

// Register adds a capability to the catalog.
// Typically called from an init() function.
// Panics if a capability with the same name is already registered.
func Register(c Capability) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := capabilities[c.Name]; exists {
		panic(fmt.Sprintf("registry: capability %q already registered", c.Name))
	}
	if c.Bind == nil {
		panic(fmt.Sprintf("registry: capability %q has no binder", c.Name))
	}

	capabilities[c.Name] = c
}

// List returns information about all registered capabilities, sorted by name.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(capabilities))
	for _, c := range capabilities {
		result = append(result, Info{
			Name:    c.Name,
			Arity:   c.Arity,
			Summary: c.Summary,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Exists checks if a capability with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := capabilities[name]
	return ok
}

// Install binds every registered capability into vm's global table.
func Install(vm *goja.Runtime, h Host) error {
	mu.RLock()
	defer mu.RUnlock()

	for name, c := range capabilities {
		if err := vm.Set(name, c.Bind(vm, h)); err != nil {
			return fmt.Errorf("registry: cannot install %q: %w", name, err)
		}
	}
	return nil
}
