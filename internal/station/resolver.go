package station

import (
	"strings"
)

// Resolve maps free text to a canonical station entry.
//
// Matching is attempted in order: exact canonical name, exact alias, then
// bidirectional substring containment against canonical names. Among
// containment matches the longest canonical name wins so that
// "Anand Vihar (301), Delhi" prefers the more specific entry; equal lengths
// are broken lexicographically.
func (r *Registry) Resolve(freeText string) (Entry, error) {
	q := normalize(freeText)
	if q == "" {
		return Entry{}, ErrStationNotFound
	}

	if idx, ok := r.byName[q]; ok {
		return r.entries[idx].clone(), nil
	}

	for _, e := range r.entries {
		for _, alias := range e.Aliases {
			if normalize(alias) == q {
				return e.clone(), nil
			}
		}
	}

	folded := fold(q)
	best := -1
	for i, e := range r.entries {
		name := normalize(e.CanonicalName)
		if name == "" {
			continue
		}
		if !contains(q, name) && !contains(folded, fold(name)) {
			continue
		}
		if best < 0 || better(e.CanonicalName, r.entries[best].CanonicalName) {
			best = i
		}
	}

	if best < 0 {
		return Entry{}, ErrStationNotFound
	}
	return r.entries[best].clone(), nil
}

func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func better(candidate, current string) bool {
	if len(candidate) != len(current) {
		return len(candidate) > len(current)
	}
	return candidate < current
}

// fold treats underscores and hyphens as spaces and collapses whitespace.
func fold(s string) string {
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
