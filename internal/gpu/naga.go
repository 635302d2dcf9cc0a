package gpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/naga"

	"shadertune/internal/diag"
	"shadertune/internal/keywords"
)

// NagaName is the registry name of the in-process WGSL backend.
const NagaName = "naga"

// nagaCompile is swapped in tests.
var nagaCompile = naga.Compile

// Naga compiles WGSL to SPIR-V in process. It needs no toolchain and is
// available everywhere.
type Naga struct{}

func openNaga(Options) (Backend, error) { return Naga{}, nil }

var nagaParser = diag.MustParser(diag.NagaPattern)

func (Naga) Name() string                { return NagaName }
func (Naga) Language() keywords.Language { return keywords.LangWGSL }
func (Naga) Parser() *diag.Parser        { return nagaParser }

// Compile runs the naga pipeline on its own goroutine so a cancelled ctx
// returns promptly. The abandoned goroutine finishes in the background.
func (Naga) Compile(ctx context.Context, source string) (Library, error) {
	type result struct {
		code []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res = result{err: fmt.Errorf("naga: internal error: %v", r)}
			}
			done <- res
		}()
		res.code, res.err = nagaCompile(source)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		if len(res.code) == 0 {
			return nil, errors.New("naga: empty SPIR-V module")
		}
		return &bytesLibrary{backend: NagaName, code: res.code}, nil
	}
}
