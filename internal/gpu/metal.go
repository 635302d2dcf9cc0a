package gpu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"shadertune/internal/diag"
	"shadertune/internal/keywords"
)

// MetalName is the registry name of the external Metal toolchain backend.
const MetalName = "metal"

// DefaultMetalCommand compiles MSL 3.2 with fast math off, reading source
// from stdin. {out} is replaced with a temporary output path.
const DefaultMetalCommand = "xcrun -sdk macosx metal -std=metal3.2 -fno-fast-math -x metal -c - -o {out}"

const outPlaceholder = "{out}"

// Metal runs the Metal compiler as a child process.
type Metal struct {
	argv []string
}

func openMetal(opts Options) (Backend, error) {
	return NewMetal(opts.Command)
}

// NewMetal parses command (DefaultMetalCommand when empty) and checks that
// its program can be found.
func NewMetal(command string) (*Metal, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultMetalCommand
	}
	argv, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("metal command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty metal command", ErrUnavailable)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, argv[0], err)
	}
	return &Metal{argv: argv}, nil
}

var metalParser = diag.MustParser(diag.MetalPattern)

func (*Metal) Name() string                { return MetalName }
func (*Metal) Language() keywords.Language { return keywords.LangMetal }
func (*Metal) Parser() *diag.Parser        { return metalParser }

// Compile feeds source on stdin and returns the produced library. On failure
// the error text is the tool's stderr with stdin tags renamed so the
// diagnostic parser recognises them.
func (m *Metal) Compile(ctx context.Context, source string) (Library, error) {
	dir, err := os.MkdirTemp("", "shadertune-metal-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "shader.air")

	args := make([]string, len(m.argv))
	for i, a := range m.argv {
		args[i] = strings.ReplaceAll(a, outPlaceholder, out)
	}
	// #nosec G204 -- command line comes from user configuration
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = strings.NewReader(source)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(rewriteStdinTags(stderr.String()))
		if msg == "" {
			msg = fmt.Sprintf("%s: %v", filepath.Base(args[0]), err)
		}
		return nil, errors.New(msg)
	}
	code, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("metal: read library: %w", err)
	}
	return &bytesLibrary{backend: MetalName, code: code}, nil
}

func rewriteStdinTags(s string) string {
	return strings.ReplaceAll(s, "<stdin>:", "program_source:")
}
