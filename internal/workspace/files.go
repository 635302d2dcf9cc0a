// Package workspace is the plain-text file store: loading and saving shader
// sources and scanning a folder for them.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// ErrorKind classifies a file store failure.
type ErrorKind uint8

const (
	KindOther ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	// KindMalformed means the file is not valid UTF-8 text.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindMalformed:
		return "malformed"
	}
	return "other"
}

// ErrMalformed is wrapped by FileError for non-UTF-8 content.
var ErrMalformed = errors.New("file is not valid UTF-8 text")

// FileError is the error returned by every file store operation.
type FileError struct {
	Op   string // load, save or scan
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func fileError(op, path string, err error) *FileError {
	kind := KindOther
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	case errors.Is(err, ErrMalformed):
		kind = KindMalformed
	}
	return &FileError{Op: op, Path: path, Kind: kind, Err: err}
}

// Load reads path as UTF-8 text.
func Load(path string) (string, error) {
	// #nosec G304 -- path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fileError("load", path, err)
	}
	if !utf8.Valid(data) {
		return "", fileError("load", path, ErrMalformed)
	}
	return string(data), nil
}

// Save writes text to path through a temporary file in the same directory
// and a rename, so readers never observe a partial file. An existing file
// keeps its permission bits.
func Save(path, text string) error {
	dir := filepath.Dir(path)
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fileError("save", path, fmt.Errorf("is a directory"))
		}
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fileError("save", path, err)
	}
	tmp := f.Name()
	cleanup := func() { _ = os.Remove(tmp) }
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		cleanup()
		return fileError("save", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fileError("save", path, err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		cleanup()
		return fileError("save", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return fileError("save", path, err)
	}
	return nil
}

// Disk is the file store backed by the local filesystem.
type Disk struct{}

// Load reads path; see the package-level Load.
func (Disk) Load(path string) (string, error) { return Load(path) }

// Save writes path atomically; see the package-level Save.
func (Disk) Save(path, text string) error { return Save(path, text) }
