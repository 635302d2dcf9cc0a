// Package compiler coordinates debounced shader compilation.
//
// A Coordinator owns at most one pending compile (an armed timer) and tracks
// the newest started compile by sequence number. Every transition happens
// under one mutex; the backend runs outside it. Results from compiles that
// were overtaken by a newer one are dropped, so observers only ever see the
// outcome of the most recent request.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shadertune/internal/diag"
	"shadertune/internal/gpu"
	"shadertune/internal/observ"
)

// DefaultDebounce is the quiet period before an edit triggers a compile.
const DefaultDebounce = time.Second

// State is an observable snapshot of the coordinator. Snapshots share the
// Diagnostics slice; a compile replaces it wholesale and never mutates it.
type State struct {
	Compiling   bool
	Diagnostics diag.List
	// Library is nil unless the last settled compile succeeded.
	Library gpu.Library
	// Seq is the sequence of the compile that produced this state.
	Seq uint64
	// Source is the text the settled compile ran on. Diagnostic positions
	// refer to it, not to the current buffer.
	Source string
	// Version increases on every publication.
	Version uint64
	Elapsed time.Duration
}

// Succeeded reports whether the last settled compile produced a library.
func (s State) Succeeded() bool { return s.Library != nil }

// Options configures a Coordinator.
type Options struct {
	Debounce    time.Duration
	AutoCompile bool
	// Timeout bounds one backend call; zero means no bound.
	Timeout time.Duration
	// Parser turns backend error text into diagnostics. Defaults to the
	// backend's parser.
	Parser func(string) diag.List
	// Publish receives every new state in Version order. It runs on the
	// goroutine that caused the change and must not call CompileNow.
	Publish func(State)
	Logger  *slog.Logger
}

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper { return time.AfterFunc(d, f) }

// Coordinator debounces edits into compiles against one backend.
type Coordinator struct {
	backend gpu.Backend
	opts    Options
	log     *slog.Logger
	after   afterFunc

	baseCtx context.Context
	cancel  context.CancelFunc

	mu         sync.Mutex
	auto       bool
	closed     bool
	timer      stopper
	pendingSeq uint64
	seq        uint64
	startedSeq uint64
	state      State

	notifyMu  sync.Mutex
	delivered uint64
}

// New returns a coordinator for backend.
func New(backend gpu.Backend, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Parser == nil {
		opts.Parser = gpu.ParseFunc(backend)
	}
	logger := opts.Logger
	if logger == nil {
		logger = observ.Logger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		backend: backend,
		opts:    opts,
		log:     logger.With("backend", backend.Name()),
		after:   realAfterFunc,
		baseCtx: ctx,
		cancel:  cancel,
		auto:    opts.AutoCompile,
	}
}

// Backend returns the backend compiles run against.
func (c *Coordinator) Backend() gpu.Backend { return c.backend }

// OnEdit schedules a compile of source after the debounce period, replacing
// any pending one. It does nothing when auto-compile is off, source is empty,
// or the coordinator is closed.
func (c *Coordinator) OnEdit(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.auto || source == "" {
		return
	}
	c.stopTimerLocked()
	c.seq++
	seq := c.seq
	c.pendingSeq = seq
	c.timer = c.after(c.opts.Debounce, func() { c.fire(seq, source) })
	c.log.Debug("compile scheduled", "seq", seq, "delay", c.opts.Debounce)
}

func (c *Coordinator) fire(seq uint64, source string) {
	c.mu.Lock()
	if c.closed || c.pendingSeq != seq {
		c.mu.Unlock()
		return
	}
	c.pendingSeq = 0
	c.timer = nil
	snap := c.startLocked(seq)
	c.mu.Unlock()

	c.publish(snap)
	c.run(c.baseCtx, seq, source)
}

// CompileNow cancels any pending compile and compiles source on the calling
// goroutine. It returns the state after this compile settles, or the current
// state if the coordinator is closed.
func (c *Coordinator) CompileNow(ctx context.Context, source string) State {
	c.mu.Lock()
	if c.closed {
		st := c.state
		c.mu.Unlock()
		return st
	}
	c.stopTimerLocked()
	c.seq++
	seq := c.seq
	snap := c.startLocked(seq)
	c.mu.Unlock()

	c.publish(snap)
	merged, cancel := context.WithCancel(ctx)
	defer cancel()
	unlink := context.AfterFunc(c.baseCtx, cancel)
	defer unlink()
	return c.run(merged, seq, source)
}

func (c *Coordinator) startLocked(seq uint64) State {
	c.startedSeq = seq
	c.state.Compiling = true
	c.state.Version++
	c.log.Debug("compile started", "seq", seq)
	return c.state
}

func (c *Coordinator) run(ctx context.Context, seq uint64, source string) State {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	start := time.Now()
	lib, err := c.backend.Compile(ctx, source)
	elapsed := time.Since(start)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && c.opts.Timeout > 0 {
		err = fmt.Errorf("compilation timed out after %s", c.opts.Timeout)
	}
	cancelled := err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil

	c.mu.Lock()
	if c.closed || seq != c.startedSeq {
		st, newest, closed := c.state, c.startedSeq, c.closed
		c.mu.Unlock()
		c.log.Debug("compile result discarded", "seq", seq, "newest", newest, "closed", closed)
		return st
	}
	c.state.Compiling = false
	if cancelled {
		// the previous result stays; only the compiling flag settles
		c.state.Version++
		snap := c.state
		c.mu.Unlock()
		c.log.Debug("compile cancelled", "seq", seq)
		c.publish(snap)
		return snap
	}
	c.state.Seq = seq
	c.state.Source = source
	c.state.Elapsed = elapsed
	if err != nil {
		c.state.Library = nil
		c.state.Diagnostics = c.opts.Parser(err.Error())
	} else {
		c.state.Library = lib
		c.state.Diagnostics = nil
	}
	c.state.Version++
	snap := c.state
	c.mu.Unlock()

	c.log.Debug("compile settled", "seq", seq, "ok", err == nil, "diagnostics", len(snap.Diagnostics), "elapsed", elapsed)
	c.publish(snap)
	return snap
}

func (c *Coordinator) publish(s State) {
	if c.opts.Publish == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if s.Version <= c.delivered {
		return
	}
	c.delivered = s.Version
	c.opts.Publish(s)
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pendingSeq = 0
}

// SetAutoCompile toggles debounced compiles. Turning it off drops a pending
// compile.
func (c *Coordinator) SetAutoCompile(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auto = on
	if !on {
		c.stopTimerLocked()
	}
}

// AutoCompile reports whether edits schedule compiles.
func (c *Coordinator) AutoCompile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auto
}

// State returns the latest snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a debounced compile is armed.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingSeq != 0
}

// Close stops the pending timer and cancels in-flight compiles. Later calls
// are ignored.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}
