package lint

// FileFilter restricts a run to part of the variant inputs, e.g. files
// changed in the working tree.
type FileFilter interface {
	// Include reports whether the project-relative path is analyzed.
	Include(path string) bool
	// IncludeLine reports whether findings on line of path are kept when
	// only changed lines are reported.
	IncludeLine(path string, line int) bool
}
