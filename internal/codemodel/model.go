package codemodel

import (
	"go/token"
	"slices"
	"sort"
	"strings"
)

// Ref identifies a package-level declaration.
// Methods use "Type.Method" as their name.
type Ref struct {
	Package string `json:"package"`
	Name    string `json:"name"`
}

// String renders the ref as "<package>.<name>".
func (r Ref) String() string {
	if r.Name == "" {
		return r.Package
	}
	return r.Package + "." + r.Name
}

// Decl is a package-level declaration.
type Decl interface {
	Annotated
	DeclRef() Ref
	Position() token.Position
}

// TypeKind classifies a declared type.
type TypeKind string

const (
	KindStruct    TypeKind = "struct"
	KindInterface TypeKind = "interface"
	KindOther     TypeKind = "other"
)

// Type is a declared named type.
type Type struct {
	Ref        Ref
	Kind       TypeKind
	Fields     int // number of struct fields, embedded fields count once
	Methods    []*Func
	Pos        token.Position
	Directives []Annotation
}

func (t *Type) DeclRef() Ref { return t.Ref }
func (t *Type) Position() token.Position { return t.Pos }
func (t *Type) Annotations() []Annotation { return t.Directives }

// Name returns the unqualified type name.
func (t *Type) Name() string { return t.Ref.Name }

// Func is a declared function or method.
type Func struct {
	Ref        Ref
	Receiver   string // receiver base type name; empty for plain functions
	CallsPanic bool
	Pos        token.Position
	Directives []Annotation
}

func (f *Func) DeclRef() Ref { return f.Ref }
func (f *Func) Position() token.Position { return f.Pos }
func (f *Func) Annotations() []Annotation { return f.Directives }

// Name returns the unqualified function name, without the receiver.
func (f *Func) Name() string {
	if i := strings.LastIndexByte(f.Ref.Name, '.'); i >= 0 {
		return f.Ref.Name[i+1:]
	}
	return f.Ref.Name
}

// Value is a package-level variable or constant.
type Value struct {
	Ref        Ref
	Const      bool
	TypeName   string // package-relative type string, e.g. "error" or "*http.Client"
	Pos        token.Position
	Directives []Annotation
}

func (v *Value) DeclRef() Ref { return v.Ref }
func (v *Value) Position() token.Position { return v.Pos }
func (v *Value) Annotations() []Annotation { return v.Directives }

// Name returns the unqualified value name.
func (v *Value) Name() string { return v.Ref.Name }

// Dependency is a reference from one declaration to another.
type Dependency struct {
	From Ref
	To   Ref
	Pos  token.Position
}

// String renders the dependency edge.
func (d Dependency) String() string {
	return d.From.String() + " -> " + d.To.String()
}

// Package is a loaded Go package.
type Package struct {
	Path         string
	Name         string
	Dir          string
	Test         bool // the package contains test sources
	Imports      []string
	Types        []*Type
	Funcs        []*Func
	Values       []*Value
	Dependencies []Dependency
}

// Model is an immutable snapshot of the packages under a set of roots.
type Model struct {
	roots    []string
	packages []*Package
	byPath   map[string]*Package
	decls    map[Ref]Decl
	deps     []Dependency
}

// New builds a model from already constructed packages.
//
// Empty Ref.Package fields are filled with the owning package path and
// methods are linked to their receiver types. Dependencies are kept only when
// both ends are distinct model packages; duplicate edges are dropped. The
// packages must not be modified afterwards.
func New(roots []string, pkgs ...*Package) *Model {
	m := &Model{
		roots:  slices.Clone(roots),
		byPath: make(map[string]*Package, len(pkgs)),
		decls:  make(map[Ref]Decl),
	}

	m.packages = slices.Clone(pkgs)
	sort.Slice(m.packages, func(i, j int) bool { return m.packages[i].Path < m.packages[j].Path })

	for _, pkg := range m.packages {
		m.byPath[pkg.Path] = pkg
		types := make(map[string]*Type, len(pkg.Types))
		for _, t := range pkg.Types {
			if t.Ref.Package == "" {
				t.Ref.Package = pkg.Path
			}
			types[t.Ref.Name] = t
			m.decls[t.Ref] = t
		}
		for _, f := range pkg.Funcs {
			if f.Ref.Package == "" {
				f.Ref.Package = pkg.Path
			}
			m.decls[f.Ref] = f
			if t, ok := types[f.Receiver]; ok && !slices.Contains(t.Methods, f) {
				t.Methods = append(t.Methods, f)
			}
		}
		for _, v := range pkg.Values {
			if v.Ref.Package == "" {
				v.Ref.Package = pkg.Path
			}
			m.decls[v.Ref] = v
		}
	}

	type edge struct{ from, to Ref }
	seen := make(map[edge]bool)
	for _, pkg := range m.packages {
		for _, d := range pkg.Dependencies {
			if d.From.Package == d.To.Package {
				continue
			}
			if _, ok := m.byPath[d.To.Package]; !ok {
				continue
			}
			e := edge{d.From, d.To}
			if seen[e] {
				continue
			}
			seen[e] = true
			m.deps = append(m.deps, d)
		}
	}
	sort.SliceStable(m.deps, func(i, j int) bool {
		a, b := m.deps[i], m.deps[j]
		if a.From != b.From {
			return a.From.String() < b.From.String()
		}
		return a.To.String() < b.To.String()
	})

	return m
}

// Roots returns the import-path roots the model was imported from.
func (m *Model) Roots() []string { return slices.Clone(m.roots) }

// Packages returns the packages sorted by import path.
func (m *Model) Packages() []*Package { return slices.Clone(m.packages) }

// Package looks up a package by import path.
func (m *Model) Package(path string) (*Package, bool) {
	p, ok := m.byPath[path]
	return p, ok
}

// Contains reports whether the package path is a member of the model.
func (m *Model) Contains(pkgPath string) bool {
	_, ok := m.byPath[pkgPath]
	return ok
}

// Members returns the sorted package paths.
func (m *Model) Members() []string {
	out := make([]string, len(m.packages))
	for i, p := range m.packages {
		out[i] = p.Path
	}
	return out
}

// Decl looks up a declaration by ref.
func (m *Model) Decl(ref Ref) (Decl, bool) {
	d, ok := m.decls[ref]
	return d, ok
}

// Types returns every declared type in package order.
func (m *Model) Types() []*Type {
	var out []*Type
	for _, p := range m.packages {
		out = append(out, p.Types...)
	}
	return out
}

// Funcs returns every function and method in package order.
func (m *Model) Funcs() []*Func {
	var out []*Func
	for _, p := range m.packages {
		out = append(out, p.Funcs...)
	}
	return out
}

// Values returns every package-level variable and constant.
func (m *Model) Values() []*Value {
	var out []*Value
	for _, p := range m.packages {
		out = append(out, p.Values...)
	}
	return out
}

// Dependencies returns the cross-package dependency edges between model
// declarations, sorted by source then target.
func (m *Model) Dependencies() []Dependency { return slices.Clone(m.deps) }

// Empty reports whether the model has no packages.
func (m *Model) Empty() bool { return len(m.packages) == 0 }

// UnderRoot reports whether pkgPath equals root or lies beneath it.
// External test packages ("p_test") belong to the root of "p".
func UnderRoot(pkgPath, root string) bool {
	root = strings.TrimSuffix(root, "/")
	pkgPath = strings.TrimSuffix(pkgPath, "_test")
	return pkgPath == root || strings.HasPrefix(pkgPath, root+"/")
}
