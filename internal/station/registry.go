// Package station provides the canonical monitoring station registry and
// free-text station name resolution.
package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Registry errors.
var (
	ErrStationNotFound = errors.New("station not found")
	ErrEmptyName       = errors.New("canonical station name is empty")
	ErrDuplicateName   = errors.New("duplicate canonical station name")
)

// Entry is a canonical station together with the training codes the model
// was fitted on and the raw identifiers seen in source data.
type Entry struct {
	CanonicalName string   `json:"name"`
	Codes         []int    `json:"codes"`
	Aliases       []string `json:"aliases"`
}

// Registry is an immutable, ordered table of canonical stations.
// It is safe for concurrent use once constructed.
type Registry struct {
	entries []Entry
	byName  map[string]int
}

// NewRegistry builds a registry from entries, preserving their order.
// Names must be non-empty and unique ignoring case.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		key := normalize(e.CanonicalName)
		if key == "" {
			return nil, ErrEmptyName
		}
		if _, ok := r.byName[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.CanonicalName)
		}

		r.byName[key] = len(r.entries)
		r.entries = append(r.entries, Entry{
			CanonicalName: e.CanonicalName,
			Codes:         append([]int(nil), e.Codes...),
			Aliases:       append([]string(nil), e.Aliases...),
		})
	}

	return r, nil
}

// LoadRegistry reads a JSON array of {"name","codes","aliases"} objects.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading station registry: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding station registry: %w", err)
	}

	return NewRegistry(entries)
}

// Entries returns a copy of all entries in registry order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of canonical stations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup returns the entry with the given canonical name, ignoring case.
func (r *Registry) Lookup(name string) (Entry, bool) {
	idx, ok := r.byName[normalize(name)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx].clone(), true
}

func (e Entry) clone() Entry {
	return Entry{
		CanonicalName: e.CanonicalName,
		Codes:         append([]int(nil), e.Codes...),
		Aliases:       append([]string(nil), e.Aliases...),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
