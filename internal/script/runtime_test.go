package script

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/registry"
)

func newRuntime(t *testing.T, opts Options) *Runtime {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Host.Clock == nil {
		opts.Host.Clock = core.NewManualClock()
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return r
}

func load(t *testing.T, r *Runtime, src string) {
	t.Helper()
	if err := r.Load("test.js", src); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
}

func globals(r *Runtime) []string {
	keys := r.vm.GlobalObject().Keys()
	sort.Strings(keys)
	return keys
}

func TestCallbackString(t *testing.T) {
	tests := []struct {
		cb       Callback
		expected string
	}{
		{CallbackInit, "init"},
		{CallbackUpdate, "update"},
		{CallbackDraw, "draw"},
		{Callback(9), "callback(9)"},
	}

	for _, tc := range tests {
		if got := tc.cb.String(); got != tc.expected {
			t.Errorf("Callback(%d).String() = %q, expected %q", int(tc.cb), got, tc.expected)
		}
	}
}

func TestLoadSyntaxErrorStaysUnloaded(t *testing.T) {
	r := newRuntime(t, Options{})

	err := r.Load("broken.js", "function update(dt) { n += ; }")
	if err == nil {
		t.Fatal("Load() of a syntax error should fail")
	}

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("Load() error = %T, expected *Error", err)
	}
	if serr.Kind != KindCompile {
		t.Errorf("Kind = %q, expected %q", serr.Kind, KindCompile)
	}
	if serr.Script != "broken.js" {
		t.Errorf("Script = %q, expected %q", serr.Script, "broken.js")
	}
	if r.State() != Unloaded {
		t.Errorf("State() = %v, expected %v", r.State(), Unloaded)
	}
	if r.Program() != nil {
		t.Error("Program() should be nil after a failed load")
	}

	// init on an unloaded runtime must not promote it
	if f := r.CallInit(); f != nil {
		t.Errorf("CallInit() = %v, expected nil", f)
	}
	if r.State() != Unloaded {
		t.Errorf("State() after CallInit = %v, expected %v", r.State(), Unloaded)
	}
}

func TestLoadTopLevelThrowIsEvalError(t *testing.T) {
	r := newRuntime(t, Options{})

	err := r.Load("throws.js", `throw new Error("boom");`)
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindEval {
		t.Fatalf("Load() error = %v, expected eval error", err)
	}
	if !strings.Contains(serr.Message, "boom") {
		t.Errorf("Message = %q, expected it to mention boom", serr.Message)
	}
	if r.State() != Unloaded {
		t.Errorf("State() = %v, expected %v", r.State(), Unloaded)
	}
}

func TestInstallTwiceFails(t *testing.T) {
	r := newRuntime(t, Options{})
	load(t, r, "var a = 1;")

	err := r.Load("again.js", "var b = 2;")
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindState {
		t.Errorf("second Load() error = %v, expected state error", err)
	}
}

func TestLifecycle(t *testing.T) {
	r := newRuntime(t, Options{})
	if r.State() != Unloaded {
		t.Fatalf("State() = %v, expected %v", r.State(), Unloaded)
	}

	load(t, r, "var ready = false; function init() { ready = true; }")
	if r.State() != Compiled {
		t.Fatalf("State() = %v, expected %v", r.State(), Compiled)
	}

	if f := r.CallInit(); f != nil {
		t.Fatalf("CallInit() = %v", f)
	}
	if r.State() != Initialized {
		t.Errorf("State() = %v, expected %v", r.State(), Initialized)
	}
	if got := r.Lookup("ready"); got != true {
		t.Errorf("ready = %v, expected true", got)
	}
}

func TestInitFaultStillInitializes(t *testing.T) {
	r := newRuntime(t, Options{})
	load(t, r, "function init() { undefinedFunction(); }")

	f := r.CallInit()
	if f == nil {
		t.Fatal("CallInit() should report a fault")
	}
	if f.Callback != CallbackInit {
		t.Errorf("Fault.Callback = %v, expected init", f.Callback)
	}
	if r.State() != Initialized {
		t.Errorf("State() = %v, expected %v", r.State(), Initialized)
	}
}

func TestDefined(t *testing.T) {
	tests := []struct {
		src      string
		expected []Callback
	}{
		{"", nil},
		{"function draw() {}", []Callback{CallbackDraw}},
		{"function init() {} function update(dt) {}", []Callback{CallbackInit, CallbackUpdate}},
		{"var update = 5; function draw() {}", []Callback{CallbackDraw}},
		{"var init = () => {}; function update() {} function draw() {}", []Callback{CallbackInit, CallbackUpdate, CallbackDraw}},
	}

	for _, tc := range tests {
		r := newRuntime(t, Options{})
		load(t, r, tc.src)
		if got := r.Defined(); !reflect.DeepEqual(got, tc.expected) {
			t.Errorf("Defined() for %q = %v, expected %v", tc.src, got, tc.expected)
		}
	}
}

func TestMissingDrawIsNoOp(t *testing.T) {
	r := newRuntime(t, Options{})
	load(t, r, "var n = 3; function update(dt) { n++; }")

	before := globals(r)
	for i := 0; i < 3; i++ {
		if f := r.CallDraw(); f != nil {
			t.Fatalf("CallDraw() = %v, expected nil", f)
		}
	}

	if after := globals(r); !reflect.DeepEqual(before, after) {
		t.Errorf("globals changed from %v to %v", before, after)
	}
	if got := r.Lookup("n"); got != int64(3) {
		t.Errorf("n = %v, expected 3", got)
	}
}

func TestUpdateCountsTicks(t *testing.T) {
	r := newRuntime(t, Options{})
	load(t, r, "var n = 0; var last = 0; function update(dt) { n += 1; last = dt; }")
	r.CallInit()

	for i := 0; i < 10; i++ {
		if f := r.CallUpdate(0.016); f != nil {
			t.Fatalf("CallUpdate() = %v", f)
		}
	}

	if got := r.Lookup("n"); got != int64(10) {
		t.Errorf("n = %v, expected 10", got)
	}
	if got := r.Lookup("last"); got != 0.016 {
		t.Errorf("last = %v, expected 0.016", got)
	}
}

func TestFaultIsolation(t *testing.T) {
	var buf bytes.Buffer
	r := newRuntime(t, Options{Logger: log.New(&buf)})
	load(t, r, `
		var updates = 0, draws = 0;
		function update(dt) {
			updates++;
			if (updates === 1) { throw new TypeError("bad frame"); }
		}
		function draw() { draws++; }
	`)

	f := r.CallUpdate(0.016)
	if f == nil {
		t.Fatal("CallUpdate() should fault on the first tick")
	}
	if f.Callback != CallbackUpdate || !strings.Contains(f.Message, "bad frame") {
		t.Errorf("Fault = %v, expected update fault mentioning bad frame", f)
	}
	var ex *goja.Exception
	if !errors.As(f, &ex) {
		t.Errorf("Fault cause = %T, expected *goja.Exception", f.Cause)
	}
	if !strings.Contains(buf.String(), "update") {
		t.Errorf("log output %q does not name the callback", buf.String())
	}

	if f := r.CallDraw(); f != nil {
		t.Errorf("CallDraw() after faulting update = %v", f)
	}
	if f := r.CallUpdate(0.016); f != nil {
		t.Errorf("second CallUpdate() = %v", f)
	}
	if f := r.CallDraw(); f != nil {
		t.Errorf("second CallDraw() = %v", f)
	}

	if got := r.Lookup("updates"); got != int64(2) {
		t.Errorf("updates = %v, expected 2", got)
	}
	if got := r.Lookup("draws"); got != int64(2) {
		t.Errorf("draws = %v, expected 2", got)
	}
}

func TestPartialSideEffectsKept(t *testing.T) {
	r := newRuntime(t, Options{})
	load(t, r, "var steps = []; function draw() { steps.push(1); nope(); steps.push(2); }")

	if f := r.CallDraw(); f == nil {
		t.Fatal("CallDraw() should fault")
	}
	if got := r.Lookup("steps"); !reflect.DeepEqual(got, []interface{}{int64(1)}) {
		t.Errorf("steps = %v, expected [1]", got)
	}
}

func TestCapabilityPanicBecomesFault(t *testing.T) {
	// no canvas: a valid draw call dereferences nil inside the capability
	r := newRuntime(t, Options{Host: registry.Host{}})
	load(t, r, "function draw() { clear_background([0, 0, 0, 255]); }")

	if f := r.CallDraw(); f == nil {
		t.Error("CallDraw() should turn the panic into a fault")
	}
	if f := r.CallUpdate(1); f != nil {
		t.Errorf("CallUpdate() of an undefined hook = %v", f)
	}
}

func TestCallTimeout(t *testing.T) {
	r := newRuntime(t, Options{CallTimeout: 50 * time.Millisecond})
	load(t, r, "var draws = 0; function update(dt) { for (;;) {} } function draw() { draws++; }")

	f := r.CallUpdate(0.016)
	if f == nil {
		t.Fatal("CallUpdate() should be interrupted")
	}
	var ie *goja.InterruptedError
	if !errors.As(f, &ie) {
		t.Fatalf("Fault cause = %T, expected *goja.InterruptedError", f.Cause)
	}
	if ie.Value() != ErrCallTimeout {
		t.Errorf("interrupt value = %v, expected %v", ie.Value(), ErrCallTimeout)
	}

	if f := r.CallDraw(); f != nil {
		t.Errorf("CallDraw() after timeout = %v", f)
	}
	if got := r.Lookup("draws"); got != int64(1) {
		t.Errorf("draws = %v, expected 1", got)
	}
}

func TestRecursionIsFault(t *testing.T) {
	r := newRuntime(t, Options{CallTimeout: 10 * time.Second})
	load(t, r, `
		var draws = 0;
		function f() { return f() + 1; }
		function update(dt) { f(); }
		function draw() { draws++; }
	`)

	start := time.Now()
	f := r.CallUpdate(0.016)
	if f == nil {
		t.Fatal("CallUpdate() with unbounded recursion should fault")
	}
	var so *goja.StackOverflowError
	if !errors.As(f, &so) {
		t.Fatalf("Fault cause = %T (%v), expected *goja.StackOverflowError", f.Cause, f)
	}
	var ie *goja.InterruptedError
	if errors.As(f, &ie) {
		t.Errorf("Fault = %v, expected a stack overflow, not a timeout", f)
	}
	if elapsed := time.Since(start); elapsed >= 10*time.Second {
		t.Errorf("recursion took %v, expected it to stop before the watchdog", elapsed)
	}

	if f := r.CallDraw(); f != nil {
		t.Errorf("CallDraw() after overflow = %v", f)
	}
	if f := r.CallUpdate(0.016); f == nil {
		t.Error("second CallUpdate() should fault again")
	}
	if got := r.Lookup("draws"); got != int64(1) {
		t.Errorf("draws = %v, expected 1", got)
	}
}

func TestMaxCallDepth(t *testing.T) {
	tests := []struct {
		depth  int
		faults bool
		call   string
	}{
		{16, false, "recurse(4)"},
		{16, true, "recurse(64)"},
		{0, false, "recurse(500)"},
		{0, true, "recurse(5000)"},
	}

	for _, tc := range tests {
		r := newRuntime(t, Options{MaxCallDepth: tc.depth})
		load(t, r, `
			function recurse(n) { return n === 0 ? 0 : 1 + recurse(n - 1); }
			function update(dt) { `+tc.call+`; }
		`)

		f := r.CallUpdate(0.016)
		if got := f != nil; got != tc.faults {
			t.Errorf("depth %d: %s fault = %v, expected fault %v", tc.depth, tc.call, f, tc.faults)
		}
	}
}

func TestTopLevelTimeout(t *testing.T) {
	r := newRuntime(t, Options{CallTimeout: 50 * time.Millisecond})

	err := r.Load("spin.js", "while (true) {}")
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindEval {
		t.Errorf("Load() error = %v, expected eval error", err)
	}
}

func TestConsoleRoutesToLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRuntime(t, Options{Logger: log.New(&buf)})
	load(t, r, `console.log("hello from script"); console.warn("careful");`)

	out := buf.String()
	for _, want := range []string{"hello from script", "careful", "console"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestProgramSharedAcrossRuntimes(t *testing.T) {
	p, err := Compile("shared.js", "var n = 0; function update(dt) { n++; }")
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	a := newRuntime(t, Options{})
	b := newRuntime(t, Options{})
	for _, r := range []*Runtime{a, b} {
		if err := r.Install(p); err != nil {
			t.Fatalf("Install() failed: %v", err)
		}
	}

	a.CallUpdate(1)
	a.CallUpdate(1)
	b.CallUpdate(1)

	if got := a.Lookup("n"); got != int64(2) {
		t.Errorf("a: n = %v, expected 2", got)
	}
	if got := b.Lookup("n"); got != int64(1) {
		t.Errorf("b: n = %v, expected 1", got)
	}
	if a.Program() != p || b.Program() != p {
		t.Error("Program() should return the shared program")
	}
}
