package lint

import "sort"

// Merge combines per-variant findings into one deduplicated set. Findings
// reported by every variant carry no attribution; the others list the
// variants they were found in.
func Merge(byVariant map[string][]*Warning) []*Warning {
	variants := make([]string, 0, len(byVariant))
	for name := range byVariant {
		variants = append(variants, name)
	}
	sort.Strings(variants)

	type entry struct {
		warning  *Warning
		variants []string
	}
	seen := make(map[string]*entry)
	var order []string
	for _, name := range variants {
		// A variant reporting the same finding twice still counts once.
		local := make(map[string]bool)
		for _, w := range byVariant[name] {
			k := w.key()
			if local[k] {
				continue
			}
			local[k] = true
			if e, ok := seen[k]; ok {
				e.variants = append(e.variants, name)
				continue
			}
			seen[k] = &entry{warning: w, variants: []string{name}}
			order = append(order, k)
		}
	}

	merged := make([]*Warning, 0, len(order))
	for _, k := range order {
		e := seen[k]
		w := *e.warning
		w.Variants = nil
		if len(e.variants) < len(variants) {
			w.Variants = e.variants
		}
		merged = append(merged, &w)
	}
	SortWarnings(merged)
	return merged
}
