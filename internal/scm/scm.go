// Package scm finds the files and lines changed in a git working tree so lint
// can be restricted to them.
package scm

import (
	"path/filepath"
	"sort"
	"strings"
)

// ChangeSet is the set of changed files and lines, relative to a project
// directory. It implements lint.FileFilter.
type ChangeSet struct {
	files map[string]bool
	// lines is nil for files without line information (new or untracked
	// files), meaning every line counts as changed.
	lines map[string]map[int]bool
}

// NewChangeSet builds a change set from project-relative file paths and the
// changed line numbers per file.
func NewChangeSet(files []string, lines map[string][]int) *ChangeSet {
	cs := &ChangeSet{
		files: make(map[string]bool, len(files)),
		lines: make(map[string]map[int]bool, len(lines)),
	}
	for _, f := range files {
		cs.files[clean(f)] = true
	}
	for f, ls := range lines {
		f = clean(f)
		set := make(map[int]bool, len(ls))
		for _, l := range ls {
			set[l] = true
		}
		cs.lines[f] = set
		cs.files[f] = true
	}
	return cs
}

// Include reports whether file was changed.
func (cs *ChangeSet) Include(file string) bool {
	return cs.files[clean(file)]
}

// IncludeLine reports whether line of file was changed.
func (cs *ChangeSet) IncludeLine(file string, line int) bool {
	file = clean(file)
	if !cs.files[file] {
		return false
	}
	set, ok := cs.lines[file]
	if !ok {
		return true
	}
	return set[line]
}

// Files returns the changed files in order.
func (cs *ChangeSet) Files() []string {
	out := make([]string, 0, len(cs.files))
	for f := range cs.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Len is the number of changed files.
func (cs *ChangeSet) Len() int {
	return len(cs.files)
}

func clean(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
}
