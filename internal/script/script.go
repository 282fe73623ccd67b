// Package script hosts one JavaScript program and drives its lifecycle
// callbacks. A Runtime moves Unloaded -> Compiled -> Initialized and never
// lets a faulting callback escape into the caller.
package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// Callback names one optional lifecycle hook a script may define.
type Callback int

const (
	CallbackInit Callback = iota
	CallbackUpdate
	CallbackDraw
)

// Callbacks lists every hook in invocation order.
var Callbacks = []Callback{CallbackInit, CallbackUpdate, CallbackDraw}

var callbackNames = [...]string{
	CallbackInit:   "init",
	CallbackUpdate: "update",
	CallbackDraw:   "draw",
}

func (c Callback) String() string {
	if c < 0 || int(c) >= len(callbackNames) {
		return fmt.Sprintf("callback(%d)", int(c))
	}
	return callbackNames[c]
}

// State is the lifecycle position of a Runtime.
type State int

const (
	Unloaded State = iota
	Compiled
	Initialized
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Compiled:
		return "compiled"
	case Initialized:
		return "initialized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Kind classifies startup failures.
type Kind string

const (
	KindCompile Kind = "compile"
	KindEval    Kind = "eval"
	KindState   Kind = "state"
)

// Error is a startup failure: the script could not be compiled or its top
// level could not be evaluated. No program is installed when it is returned.
type Error struct {
	Kind    Kind
	Script  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Script != "" {
		return fmt.Sprintf("%s %s: %s", e.Script, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Fault describes a callback that raised while running.
// Side effects performed before the fault are kept.
type Fault struct {
	Callback Callback
	Message  string
	Cause    error
}

func (f *Fault) Error() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", f.Callback, f.Message)
}

func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Cause
}

// Program is a compiled script. It is immutable and may be installed into
// any number of runtimes.
type Program struct {
	name string
	prog *goja.Program
}

// Name returns the name the program was compiled under.
func (p *Program) Name() string {
	return p.name
}

// Compile parses source without running it.
func Compile(name, source string) (*Program, error) {
	prog, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, &Error{
			Kind:    KindCompile,
			Script:  name,
			Message: err.Error(),
			Cause:   err,
		}
	}
	return &Program{name: name, prog: prog}, nil
}
