package script

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/vovakirdan/scriptloop/internal/registry"
)

// ErrCallTimeout is the interrupt value used when a call overruns
// Options.CallTimeout.
var ErrCallTimeout = errors.New("script call timed out")

// DefaultMaxCallDepth bounds script recursion when Options.MaxCallDepth is unset.
const DefaultMaxCallDepth = 1024

// Options configures a Runtime.
type Options struct {
	// Host is what the capability catalog acts on.
	Host registry.Host

	// Logger receives faults and console output. Defaults to log.Default().
	Logger *log.Logger

	// CallTimeout interrupts any single evaluation or callback running
	// longer than this. Zero disables the watchdog.
	CallTimeout time.Duration

	// MaxCallDepth is the deepest script call stack allowed. Exceeding it
	// raises a *goja.StackOverflowError. Defaults to DefaultMaxCallDepth.
	MaxCallDepth int
}

// Runtime owns one script scope and the program installed into it.
// It is not safe for concurrent use.
type Runtime struct {
	vm        *goja.Runtime
	logger    *log.Logger
	timeout   time.Duration
	program   *Program
	callbacks map[Callback]goja.Callable
	state     State
}

// New creates an Unloaded runtime with the capability catalog and console
// already bound into its global scope.
func New(opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	host := opts.Host
	if host.Logger == nil {
		host.Logger = logger
	}

	depth := opts.MaxCallDepth
	if depth <= 0 {
		depth = DefaultMaxCallDepth
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(depth)
	if err := registry.Install(vm, host); err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	enableConsole(vm, logger)

	return &Runtime{
		vm:        vm,
		logger:    logger,
		timeout:   opts.CallTimeout,
		callbacks: make(map[Callback]goja.Callable),
		state:     Unloaded,
	}, nil
}

// State returns the lifecycle position.
func (r *Runtime) State() State {
	return r.state
}

// Program returns the installed program, or nil while Unloaded.
func (r *Runtime) Program() *Program {
	return r.program
}

// Load compiles source and installs it.
func (r *Runtime) Load(name, source string) error {
	p, err := Compile(name, source)
	if err != nil {
		return err
	}
	return r.Install(p)
}

// Install evaluates the program's top level once and resolves the callback
// table. On failure the runtime stays Unloaded.
func (r *Runtime) Install(p *Program) error {
	if r.state != Unloaded {
		return &Error{
			Kind:    KindState,
			Script:  p.Name(),
			Message: fmt.Sprintf("runtime already %s", r.state),
		}
	}

	err := r.guard(func() error {
		_, err := r.vm.RunProgram(p.prog)
		return err
	})
	if err != nil {
		return &Error{
			Kind:    KindEval,
			Script:  p.Name(),
			Message: err.Error(),
			Cause:   err,
		}
	}

	for _, cb := range Callbacks {
		v := r.vm.Get(cb.String())
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			continue
		}
		fn, ok := goja.AssertFunction(v)
		if !ok {
			r.logger.Warn("script global is not a function, ignoring", "script", p.Name(), "callback", cb)
			continue
		}
		r.callbacks[cb] = fn
	}

	r.program = p
	r.state = Compiled
	return nil
}

// Defined returns the callbacks the installed program provides.
func (r *Runtime) Defined() []Callback {
	var out []Callback
	for _, cb := range Callbacks {
		if _, ok := r.callbacks[cb]; ok {
			out = append(out, cb)
		}
	}
	return out
}

// Call invokes cb with args against the persistent scope. A callback the
// script does not define is skipped. Any fault is logged and returned;
// it never propagates as a panic.
func (r *Runtime) Call(cb Callback, args ...interface{}) *Fault {
	fn, ok := r.callbacks[cb]
	if !ok {
		return nil
	}

	values := make([]goja.Value, len(args))
	for i, a := range args {
		values[i] = r.vm.ToValue(a)
	}

	err := r.guard(func() error {
		_, err := fn(goja.Undefined(), values...)
		return err
	})
	if err == nil {
		return nil
	}

	fault := &Fault{Callback: cb, Message: err.Error(), Cause: err}
	r.logger.Error("script callback failed", "callback", cb, "error", fault.Message)
	return fault
}

// CallInit runs init and marks the runtime Initialized, even if init faults.
func (r *Runtime) CallInit() *Fault {
	fault := r.Call(CallbackInit)
	if r.state == Compiled {
		r.state = Initialized
	}
	return fault
}

// CallUpdate runs update with the frame delta in seconds.
func (r *Runtime) CallUpdate(delta float64) *Fault {
	return r.Call(CallbackUpdate, delta)
}

// CallDraw runs draw.
func (r *Runtime) CallDraw() *Fault {
	return r.Call(CallbackDraw)
}

// Lookup returns the exported value of a global binding, or nil if unset.
func (r *Runtime) Lookup(name string) interface{} {
	v := r.vm.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return nil
	}
	return v.Export()
}

// guard runs fn, turning Go panics from capabilities into errors and
// interrupting fn if it overruns the call timeout.
func (r *Runtime) guard(fn func() error) (err error) {
	disarm := r.arm()
	defer disarm()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return fn()
}

// arm starts the watchdog and returns the function that stops it.
// The interrupt flag is always cleared on disarm so a late timer cannot
// poison the next call.
func (r *Runtime) arm() func() {
	if r.timeout <= 0 {
		return func() {}
	}

	var (
		mu   sync.Mutex
		done bool
	)
	timer := time.AfterFunc(r.timeout, func() {
		mu.Lock()
		defer mu.Unlock()
		if !done {
			r.vm.Interrupt(ErrCallTimeout)
		}
	})

	return func() {
		mu.Lock()
		done = true
		mu.Unlock()
		timer.Stop()
		r.vm.ClearInterrupt()
	}
}
