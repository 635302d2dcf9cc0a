// Package check compiles many shader files in parallel for the batch
// command, reporting progress as it goes.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"shadertune/internal/cache"
	"shadertune/internal/diag"
	"shadertune/internal/gpu"
	"shadertune/internal/observ"
	"shadertune/internal/workspace"
)

// Request describes one batch.
type Request struct {
	Files   []string
	Backend gpu.Backend
	// Parser defaults to the backend's parser.
	Parser func(string) diag.List
	// Jobs bounds parallel compiles; zero means GOMAXPROCS.
	Jobs int
	// Timeout bounds each compile; zero means no bound.
	Timeout  time.Duration
	Cache    *cache.DiskCache
	Progress ProgressSink
	Timer    *observ.Timer
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path        string
	Source      string
	Diagnostics diag.List
	LibrarySize int
	Cached      bool
	// Err is set when the file could not be read.
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the file could not be read or compiled with errors.
func (r FileResult) Failed() bool { return r.Err != nil || r.Diagnostics.HasErrors() }

// Result holds per-file outcomes in request order.
type Result struct {
	Files []FileResult
}

// HasErrors reports whether any file failed.
func (r Result) HasErrors() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// Counts totals diagnostics by severity across all files.
func (r Result) Counts() (errs, warnings int) {
	for _, f := range r.Files {
		errs += f.Diagnostics.Count(diag.SevError)
		warnings += f.Diagnostics.Count(diag.SevWarning)
		if f.Err != nil {
			errs++
		}
	}
	return errs, warnings
}

// Collect expands paths into shader files. Directories are scanned with
// filter; files named explicitly are kept whatever their extension.
func Collect(paths []string, filter *workspace.Filter) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &workspace.FileError{Op: "scan", Path: p, Kind: kindOf(err), Err: err}
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		nodes, err := filter.Build(p)
		if err != nil {
			return nil, err
		}
		for _, f := range workspace.Files(nodes) {
			add(f)
		}
	}
	return out, nil
}

func kindOf(err error) workspace.ErrorKind {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return workspace.KindNotFound
	case errors.Is(err, os.ErrPermission):
		return workspace.KindPermissionDenied
	}
	return workspace.KindOther
}

// Run compiles every file. Per-file failures land in the result; the error
// is non-nil only when ctx ends first.
func Run(ctx context.Context, req *Request) (Result, error) {
	if req.Backend == nil {
		return Result{}, errors.New("check: no backend")
	}
	parse := req.Parser
	if parse == nil {
		parse = gpu.ParseFunc(req.Backend)
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for _, f := range req.Files {
		emit(req.Progress, Event{File: f, Stage: StageLoad, Status: StatusQueued})
	}

	// each goroutine writes only its own index
	results := make([]FileResult, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(req.Files))))
	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := checkFile(gctx, req, parse, path)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{Files: results}, err
	}
	return Result{Files: results}, nil
}

func checkFile(ctx context.Context, req *Request, parse func(string) diag.List, path string) (FileResult, error) {
	log := observ.Logger()
	start := time.Now()
	res := FileResult{Path: path}

	emit(req.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	src, err := workspace.Load(path)
	if err != nil {
		res.Err = err
		emit(req.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return res, nil
	}
	res.Source = src

	key := cache.KeyFor(req.Backend.Name(), src)
	if req.Cache != nil {
		emit(req.Progress, Event{File: path, Stage: StageCache, Status: StatusWorking})
		entry, ok, err := req.Cache.Get(key)
		if err != nil {
			log.Warn("cache read failed", "file", path, "err", err)
		}
		if ok {
			res.Diagnostics = entry.Diagnostics
			res.LibrarySize = len(entry.Code)
			res.Cached = true
			res.Elapsed = time.Since(start)
			req.Timer.Record(path, res.Elapsed, "cached")
			emit(req.Progress, Event{File: path, Stage: StageCache, Status: statusOf(res), Elapsed: res.Elapsed})
			return res, nil
		}
	}

	emit(req.Progress, Event{File: path, Stage: StageCompile, Status: StatusWorking})
	cctx, cancel := ctx, context.CancelFunc(func() {})
	if req.Timeout > 0 {
		cctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	compileStart := time.Now()
	lib, err := req.Backend.Compile(cctx, src)
	cancel()
	compileTime := time.Since(compileStart)
	if err != nil && ctx.Err() != nil {
		return res, ctx.Err()
	}
	entry := &cache.Entry{Backend: req.Backend.Name(), Elapsed: compileTime}
	timedOut := err != nil && errors.Is(err, context.DeadlineExceeded)
	if err != nil {
		if timedOut {
			err = fmt.Errorf("compilation timed out after %s", req.Timeout)
		}
		res.Diagnostics = parse(err.Error())
		entry.Diagnostics = res.Diagnostics
	} else {
		res.LibrarySize = lib.Size()
		entry.Code = gpu.Bytes(lib)
	}
	res.Elapsed = time.Since(start)
	if req.Cache != nil && !timedOut {
		if err := req.Cache.Put(key, entry); err != nil {
			log.Warn("cache write failed", "file", path, "err", err)
		}
	}
	note := ""
	if res.Diagnostics.HasErrors() {
		note = "failed"
	}
	req.Timer.Record(path, compileTime, note)
	emit(req.Progress, Event{File: path, Stage: StageCompile, Status: statusOf(res), Elapsed: res.Elapsed})
	return res, nil
}

func statusOf(res FileResult) Status {
	if res.Failed() {
		return StatusError
	}
	return StatusDone
}
