package lint

import (
	"strings"

	deferredregex "github.com/peterebden/go-deferred-regex"
)

var ignoreComment = deferredregex.DeferredRegex{Re: `varlint:ignore\s+([A-Za-z0-9_.,\- ]+)`}

// suppresses reports whether line carries an ignore comment naming id.
func suppresses(line, id string) bool {
	m := ignoreComment.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	for _, field := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' }) {
		if field == id || strings.EqualFold(field, "all") {
			return true
		}
	}
	return false
}
