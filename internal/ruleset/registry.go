package ruleset

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// ErrDuplicate is returned when a provider type is registered twice.
var ErrDuplicate = errors.New("provider already registered")

// ErrAnonymous is returned for provider types without a declared name.
var ErrAnonymous = errors.New("provider type has no name")

// Entry describes one registered rule-set provider.
type Entry struct {
	// PkgPath is the import path of the package declaring the provider type.
	PkgPath string

	// TypeName is the unqualified provider type name.
	TypeName string

	// New constructs the provider. A nil New is a provider without a
	// constructor; discovery rejects it.
	New func() (RuleSet, error)
}

// Name returns the qualified provider name "<pkgpath>.<TypeName>".
func (e Entry) Name() string {
	return e.PkgPath + "." + e.TypeName
}

// Provide creates an entry for T constructed by newFn.
// T must be a concrete named type or a pointer to one.
func Provide[T RuleSet](newFn func() (T, error)) Entry {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	var e Entry
	// An interface names no concrete provider; Register rejects the
	// resulting anonymous entry.
	if typ.Kind() != reflect.Interface {
		e = Entry{PkgPath: typ.PkgPath(), TypeName: typ.Name()}
	}
	if newFn == nil {
		return e
	}
	e.New = func() (RuleSet, error) {
		v, err := newFn()
		if err != nil {
			return nil, err
		}
		if isNil(v) {
			return nil, nil
		}
		return v, nil
	}
	return e
}

// Stateless creates an entry that always yields v.
func Stateless[T RuleSet](v T) Entry {
	return Provide(func() (T, error) { return v, nil })
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Registry holds rule-set entries keyed by qualified name.
//
// Thread Safety: Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds entries. Either all entries are added or none is.
func (r *Registry) Register(entries ...Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.TypeName == "" {
			return fmt.Errorf("register %q: %w", e.PkgPath, ErrAnonymous)
		}
		name := e.Name()
		if _, ok := r.entries[name]; ok || batch[name] {
			return fmt.Errorf("register %s: %w", name, ErrDuplicate)
		}
		batch[name] = true
	}
	for _, e := range entries {
		r.entries[e.Name()] = e
	}
	return nil
}

// Entries returns the entries sorted by qualified name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that init-time registrations
// populate.
func Default() *Registry { return defaultRegistry }

// Register adds entries to the default registry.
// It panics on invalid or duplicate entries, which are programming errors.
//
//arch:allow-panic
func Register(entries ...Entry) {
	if err := defaultRegistry.Register(entries...); err != nil {
		panic("ruleset: " + err.Error())
	}
}
