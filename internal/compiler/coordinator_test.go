package compiler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"shadertune/internal/diag"
	"shadertune/internal/gpu"
	"shadertune/internal/keywords"
)

const badOutput = "program_source:12:5: error: use of undeclared identifier 'foo'\nprogram_source:18: warning: unused variable 'bar'"

type fakeLibrary struct{ size int }

func (l fakeLibrary) Backend() string { return "fake" }
func (l fakeLibrary) Size() int       { return l.size }

// fakeBackend fails sources starting with "bad", blocks sources that have a
// gate until it is closed, and blocks "hang" until ctx is done.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	gates   map[string]chan struct{}
	entered chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{gates: make(map[string]chan struct{}), entered: make(chan string, 16)}
}

func (b *fakeBackend) Name() string                { return "fake" }
func (b *fakeBackend) Language() keywords.Language { return keywords.LangMetal }
func (b *fakeBackend) Parser() *diag.Parser        { return nil }

func (b *fakeBackend) gate(src string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.gates[src] = ch
	return ch
}

func (b *fakeBackend) Compile(ctx context.Context, src string) (gpu.Library, error) {
	b.mu.Lock()
	b.calls = append(b.calls, src)
	gate := b.gates[src]
	b.mu.Unlock()
	b.entered <- src
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if src == "hang" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if strings.HasPrefix(src, "bad") {
		return nil, errors.New(badOutput)
	}
	return fakeLibrary{size: len(src)}, nil
}

func (b *fakeBackend) compiled() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) waitEntered(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-b.entered:
		if got != want {
			t.Fatalf("backend entered with %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("backend never entered for %q", want)
	}
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) after(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) armed() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}

// fireAll runs every callback ever armed, stopped ones included, the way a
// timer that already fired races Stop.
func (c *fakeClock) fireAll() {
	for _, t := range c.armed() {
		t.f()
	}
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) publish(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func newTestCoordinator(t *testing.T, b gpu.Backend, opts Options) (*Coordinator, *fakeClock, *recorder) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{}
	opts.Publish = rec.publish
	c := New(b, opts)
	c.after = clock.after
	t.Cleanup(c.Close)
	return c, clock, rec
}

func TestDebounceCompilesLastEditOnce(t *testing.T) {
	b := newFakeBackend()
	c, clock, _ := newTestCoordinator(t, b, Options{AutoCompile: true})

	for _, src := range []string{"a", "ab", "abc"} {
		c.OnEdit(src)
	}
	timers := clock.armed()
	if len(timers) != 3 {
		t.Fatalf("expected 3 timers, got %d", len(timers))
	}
	if !timers[0].stopped || !timers[1].stopped || timers[2].stopped {
		t.Fatal("only the last timer should remain armed")
	}
	if timers[2].d != DefaultDebounce {
		t.Fatalf("debounce = %v, want %v", timers[2].d, DefaultDebounce)
	}
	if !c.Pending() {
		t.Fatal("expected pending compile")
	}

	clock.fireAll()

	if got := b.compiled(); len(got) != 1 || got[0] != "abc" {
		t.Fatalf("compiled %v, want [abc]", got)
	}
	st := c.State()
	if c.Pending() || st.Compiling || st.Library == nil || len(st.Diagnostics) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestOnEditIgnoredWhenManualOrEmpty(t *testing.T) {
	b := newFakeBackend()
	c, clock, _ := newTestCoordinator(t, b, Options{AutoCompile: false})
	c.OnEdit("kernel void k() {}")
	if len(clock.armed()) != 0 {
		t.Fatal("manual mode must not arm a timer")
	}

	c.SetAutoCompile(true)
	c.OnEdit("")
	if len(clock.armed()) != 0 || c.Pending() {
		t.Fatal("empty source must not arm a timer")
	}
}

func TestSetAutoCompileOffDropsPending(t *testing.T) {
	b := newFakeBackend()
	c, clock, _ := newTestCoordinator(t, b, Options{AutoCompile: true, Debounce: 50 * time.Millisecond})
	c.OnEdit("abc")
	c.SetAutoCompile(false)
	if c.Pending() || c.AutoCompile() {
		t.Fatal("expected no pending compile")
	}
	clock.fireAll()
	if len(b.compiled()) != 0 {
		t.Fatalf("unexpected compile: %v", b.compiled())
	}
}

func TestCompileNowSupersedesPending(t *testing.T) {
	b := newFakeBackend()
	c, clock, _ := newTestCoordinator(t, b, Options{AutoCompile: true})

	c.OnEdit("typed")
	st := c.CompileNow(context.Background(), "bad now")
	clock.fireAll()

	if got := b.compiled(); len(got) != 1 || got[0] != "bad now" {
		t.Fatalf("compiled %v, want only the explicit compile", got)
	}
	if st.Compiling || st.Library != nil || len(st.Diagnostics) != 2 {
		t.Fatalf("unexpected state %+v", st)
	}
	want := diag.Parse(badOutput)
	for i := range want {
		if st.Diagnostics[i] != want[i] {
			t.Fatalf("diagnostic %d = %+v, want %+v", i, st.Diagnostics[i], want[i])
		}
	}
}

func TestCompileNowWithoutPendingCompilesOnce(t *testing.T) {
	b := newFakeBackend()
	c, _, _ := newTestCoordinator(t, b, Options{AutoCompile: false})
	c.CompileNow(context.Background(), "x")
	if got := b.compiled(); len(got) != 1 {
		t.Fatalf("compiled %v", got)
	}
}

func TestSuccessClearsPreviousDiagnostics(t *testing.T) {
	b := newFakeBackend()
	c, _, rec := newTestCoordinator(t, b, Options{})

	failed := c.CompileNow(context.Background(), "bad")
	if !failed.Diagnostics.HasErrors() || failed.Succeeded() {
		t.Fatalf("expected failure, got %+v", failed)
	}
	ok := c.CompileNow(context.Background(), "good")
	if len(ok.Diagnostics) != 0 || !ok.Succeeded() || ok.Library.Size() != 4 {
		t.Fatalf("expected success, got %+v", ok)
	}

	var last uint64
	for _, s := range rec.all() {
		if s.Version <= last {
			t.Fatalf("publications out of order: %d after %d", s.Version, last)
		}
		last = s.Version
		if s.Library != nil && len(s.Diagnostics) != 0 {
			t.Fatalf("library and diagnostics together: %+v", s)
		}
	}
	if got := len(rec.all()); got != 4 {
		t.Fatalf("expected 4 publications (start+settle twice), got %d", got)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	b := newFakeBackend()
	release := b.gate("bad old")
	c, clock, rec := newTestCoordinator(t, b, Options{AutoCompile: true})

	done := make(chan State, 1)
	go func() { done <- c.CompileNow(context.Background(), "bad old") }()
	b.waitEntered(t, "bad old")

	c.OnEdit("new")
	clock.fireAll()
	b.waitEntered(t, "new")

	close(release)
	st := <-done
	if st.Compiling || st.Seq != 2 || !st.Succeeded() || len(st.Diagnostics) != 0 {
		t.Fatalf("expected state from the newer compile, got %+v", st)
	}
	for _, s := range rec.all() {
		if len(s.Diagnostics) != 0 {
			t.Fatalf("stale diagnostics were published: %+v", s)
		}
	}
}

func TestCompilingStaysTrueUntilNewestSettles(t *testing.T) {
	b := newFakeBackend()
	gateA, gateB := b.gate("a"), b.gate("b")
	c, _, _ := newTestCoordinator(t, b, Options{})

	doneA := make(chan State, 1)
	doneB := make(chan State, 1)
	go func() { doneA <- c.CompileNow(context.Background(), "a") }()
	b.waitEntered(t, "a")
	go func() { doneB <- c.CompileNow(context.Background(), "b") }()
	b.waitEntered(t, "b")

	close(gateA)
	if st := <-doneA; !st.Compiling {
		t.Fatalf("older result must leave Compiling set, got %+v", st)
	}
	close(gateB)
	if st := <-doneB; st.Compiling || st.Seq != 2 || st.Library.Size() != 1 {
		t.Fatalf("unexpected final state %+v", st)
	}
}

func TestTimeoutBecomesDiagnostic(t *testing.T) {
	b := newFakeBackend()
	c, _, _ := newTestCoordinator(t, b, Options{Timeout: 10 * time.Millisecond})
	st := c.CompileNow(context.Background(), "hang")
	if len(st.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", st.Diagnostics)
	}
	d := st.Diagnostics[0]
	if d.Line != 1 || d.Severity != diag.SevError || d.Message != "compilation timed out after 10ms" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

// wgslBackend reports errors in naga's format and names the matching parser.
type wgslBackend struct {
	*fakeBackend
}

func (wgslBackend) Parser() *diag.Parser { return diag.MustParser(diag.NagaPattern) }

func (wgslBackend) Compile(context.Context, string) (gpu.Library, error) {
	return nil, errors.New("lowering error: 2:1: function main body: unresolved identifier: y")
}

func TestBackendParserIsTheDefault(t *testing.T) {
	c, _, _ := newTestCoordinator(t, wgslBackend{newFakeBackend()}, Options{})
	src := "@fragment\nfn main() -> @location(0) vec4<f32> { return y; }"
	st := c.CompileNow(context.Background(), src)
	want := diag.Diagnostic{Line: 2, Column: 1, Severity: diag.SevError, Message: "function main body: unresolved identifier: y"}
	if len(st.Diagnostics) != 1 || st.Diagnostics[0] != want {
		t.Fatalf("got %+v, want %+v", st.Diagnostics, want)
	}
	if st.Source != src {
		t.Fatalf("state source = %q, want the compiled text", st.Source)
	}
}

func TestCancelledCompileKeepsPreviousResult(t *testing.T) {
	b := newFakeBackend()
	c, _, rec := newTestCoordinator(t, b, Options{})
	first := c.CompileNow(context.Background(), "bad one")
	if len(first.Diagnostics) != 2 {
		t.Fatalf("expected two diagnostics, got %+v", first.Diagnostics)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() { done <- c.CompileNow(ctx, "hang") }()
	b.waitEntered(t, "bad one")
	b.waitEntered(t, "hang")
	cancel()

	st := <-done
	if st.Compiling {
		t.Fatalf("cancelled compile left compiling set: %+v", st)
	}
	if st.Seq != first.Seq || st.Source != "bad one" || len(st.Diagnostics) != 2 {
		t.Fatalf("previous result not kept: %+v", st)
	}
	for _, d := range st.Diagnostics {
		if strings.Contains(d.Message, "context canceled") {
			t.Fatalf("cancellation surfaced as a diagnostic: %+v", d)
		}
	}
	all := rec.all()
	if last := all[len(all)-1]; last.Compiling || last.Version != st.Version {
		t.Fatalf("last publication %+v, want settled %+v", last, st)
	}
}

func TestCloseStopsEverything(t *testing.T) {
	b := newFakeBackend()
	c, clock, rec := newTestCoordinator(t, b, Options{AutoCompile: true})

	done := make(chan State, 1)
	go func() { done <- c.CompileNow(context.Background(), "hang") }()
	b.waitEntered(t, "hang")
	c.OnEdit("pending")
	c.Close()

	st := <-done
	if !st.Compiling {
		t.Fatalf("cancelled compile must not settle, got %+v", st)
	}
	clock.fireAll()
	c.OnEdit("after close")
	c.CompileNow(context.Background(), "after close")
	if got := b.compiled(); len(got) != 1 {
		t.Fatalf("compiled %v after close", got)
	}
	if c.Pending() {
		t.Fatal("closed coordinator has a pending compile")
	}
	if n := len(rec.all()); n != 1 {
		t.Fatalf("expected only the start publication, got %d", n)
	}
}

func TestRealTimerDebounce(t *testing.T) {
	b := newFakeBackend()
	settled := make(chan State, 4)
	c := New(b, Options{AutoCompile: true, Debounce: 5 * time.Millisecond, Publish: func(s State) {
		if !s.Compiling {
			settled <- s
		}
	}})
	defer c.Close()

	c.OnEdit("fragment")
	select {
	case st := <-settled:
		if !st.Succeeded() {
			t.Fatalf("unexpected state %+v", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced compile never settled")
	}
}
