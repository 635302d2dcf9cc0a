// Package gpu defines the shader toolchain contract used by the compile
// coordinator, and the backends that implement it.
//
// A Backend turns shader source into a Library or fails with an error whose
// text is raw compiler output. Each backend names the diagnostic parser that
// matches its tool's message format; see ParseFunc.
package gpu

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shadertune/internal/diag"
	"shadertune/internal/keywords"
)

// ErrUnavailable reports that a backend cannot run on this machine.
var ErrUnavailable = errors.New("gpu backend unavailable")

// Backend compiles shader source.
type Backend interface {
	// Name is the registry name, e.g. "naga" or "metal".
	Name() string
	// Language is the shading language the backend accepts.
	Language() keywords.Language
	// Compile blocks until the toolchain finishes or ctx is done.
	Compile(ctx context.Context, source string) (Library, error)
	// Parser matches the error text Compile returns. Nil means diag.Parse.
	Parser() *diag.Parser
}

// ParseFunc returns the diagnostic parser for b's error text.
func ParseFunc(b Backend) func(string) diag.List {
	if b != nil {
		if p := b.Parser(); p != nil {
			return p.Parse
		}
	}
	return diag.Parse
}

// Library is an opaque compiled artifact.
type Library interface {
	Backend() string
	Size() int
}

// Options configures a backend at open time.
type Options struct {
	// Command overrides the external tool command line, where one is used.
	Command string
}

type factory func(Options) (Backend, error)

var registry = map[string]factory{
	NagaName:  openNaga,
	MetalName: openMetal,
}

// Names lists the registered backends in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open returns the named backend. Unknown names and missing toolchains
// yield an error wrapping ErrUnavailable.
func Open(name string, opts Options) (Backend, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (want one of %s)", ErrUnavailable, name, strings.Join(Names(), ", "))
	}
	return f(opts)
}

// bytesLibrary is the Library used by both built-in backends.
type bytesLibrary struct {
	backend string
	code    []byte
}

func (l *bytesLibrary) Backend() string { return l.backend }
func (l *bytesLibrary) Size() int       { return len(l.code) }

// Bytes returns the compiled code held by lib, or nil when lib was not
// produced by a built-in backend.
func Bytes(lib Library) []byte {
	if b, ok := lib.(*bytesLibrary); ok {
		return b.code
	}
	return nil
}
