package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Node is one entry of a shader tree. Directories always contain at least
// one matching file somewhere below them.
type Node struct {
	Name string
	// Path is the entry's path as reached from the scanned root.
	Path string
	// Rel is Path relative to the root, slash separated.
	Rel      string
	IsDir    bool
	Children []Node
}

// Filter decides which entries belong to a tree.
type Filter struct {
	ext     string
	exclude []glob.Glob
}

// NewFilter accepts files with extension ext (with or without the leading
// dot, compared case-insensitively) whose root-relative path matches none of
// the exclude globs. Globs use '/' as separator; "**" crosses directories.
func NewFilter(ext string, exclude []string) (*Filter, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f := &Filter{ext: ext}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Excluded reports whether rel (slash separated) matches an exclude glob.
func (f *Filter) Excluded(rel string) bool {
	for _, g := range f.exclude {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// MatchFile reports whether a file at rel belongs in the tree.
func (f *Filter) MatchFile(rel string) bool {
	if f.ext != "" && strings.ToLower(filepath.Ext(rel)) != f.ext {
		return false
	}
	return !f.Excluded(rel)
}

func isHidden(name string) bool { return strings.HasPrefix(name, ".") }

// BuildTree scans root for files with extension ext. Hidden entries are
// skipped, directories without matching files are pruned, unreadable
// subdirectories count as empty, and each level lists directories first,
// then entries by case-insensitive name. Only an unreadable root is an error.
func BuildTree(root, ext string, exclude []string) ([]Node, error) {
	f, err := NewFilter(ext, exclude)
	if err != nil {
		return nil, err
	}
	return f.Build(root)
}

// Build scans root with the filter.
func (f *Filter) Build(root string) ([]Node, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fileError("scan", root, err)
	}
	return f.scan(root, "", entries), nil
}

func (f *Filter) scan(dir, rel string, entries []fs.DirEntry) []Node {
	var out []Node
	for _, e := range entries {
		name := e.Name()
		if isHidden(name) {
			continue
		}
		path := filepath.Join(dir, name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}
		isDir := e.IsDir()
		if e.Type()&fs.ModeSymlink != 0 {
			// symlinked directories are not followed
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
		}
		if isDir {
			if f.Excluded(childRel) {
				continue
			}
			sub, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			children := f.scan(path, childRel, sub)
			if len(children) == 0 {
				continue
			}
			out = append(out, Node{Name: name, Path: path, Rel: childRel, IsDir: true, Children: children})
			continue
		}
		if f.MatchFile(childRel) {
			out = append(out, Node{Name: name, Path: path, Rel: childRel})
		}
	}
	sortNodes(out)
	return out
}

func sortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

// Files flattens a tree into its file paths in display order.
func Files(nodes []Node) []string {
	var out []string
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			if n.IsDir {
				walk(n.Children)
				continue
			}
			out = append(out, n.Path)
		}
	}
	walk(nodes)
	return out
}

// Render draws the tree with two-space indentation, directories suffixed
// with a slash.
func Render(nodes []Node) string {
	var b strings.Builder
	var walk func([]Node, int)
	walk = func(ns []Node, depth int) {
		for _, n := range ns {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(n.Name)
			if n.IsDir {
				b.WriteByte('/')
			}
			b.WriteByte('\n')
			if n.IsDir {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(nodes, 0)
	return b.String()
}
