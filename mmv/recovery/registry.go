package recovery

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/regfish7/anomaly/mmv/core"
)

// Factory builds a fresh Recoverer.
type Factory func() Recoverer

// Entry is one registered recovery strategy.
type Entry struct {
	Name        string
	Description string
	New         Factory
}

// Registry maps strategy names to factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// Global holds the built-in strategies.
var Global = NewRegistry()

func init() {
	Global.Register(Entry{Name: "osga", Description: "mean squared correlation energy threshold", New: func() Recoverer { return OSGA{} }})
	Global.Register(Entry{Name: "lasso", Description: "stacked L1-penalised regression", New: func() Recoverer { return NewLasso() }})
	Global.Register(Entry{Name: "somp", Description: "simultaneous orthogonal matching pursuit", New: func() Recoverer { return SOMP{} }})
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces an entry. Names are case-insensitive.
func (r *Registry) Register(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[strings.ToLower(entry.Name)] = entry
}

// Lookup builds the strategy registered under name.
func (r *Registry) Lookup(name string) (Recoverer, error) {
	r.mu.RLock()
	entry, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	r.mu.RUnlock()

	if !ok || entry.New == nil {
		return nil, fmt.Errorf("%w: unknown recovery algorithm %q (have %s)",
			core.ErrConfiguration, name, strings.Join(r.Names(), ", "))
	}
	return entry.New(), nil
}

// Entries returns a copy of all entries sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	entries := r.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Lookup builds a built-in strategy by name.
func Lookup(name string) (Recoverer, error) {
	return Global.Lookup(name)
}

// Names lists the built-in strategies.
func Names() []string {
	return Global.Names()
}
