package codemodel

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// PackagesImporter imports models with golang.org/x/tools/go/packages.
//
// Thread Safety: Safe for concurrent use; it holds no mutable state.
type PackagesImporter struct {
	// Dir is the directory the go command runs in; empty means the
	// current directory.
	Dir string

	// Env overrides the go command environment; nil inherits os.Environ.
	Env []string

	// BuildFlags are passed to the go command (e.g. "-tags=integration").
	BuildFlags []string

	// Logger receives debug output; nil discards it.
	Logger *slog.Logger
}

// NewPackagesImporter creates an importer rooted at dir.
func NewPackagesImporter(dir string, logger *slog.Logger) *PackagesImporter {
	return &PackagesImporter{Dir: dir, Logger: logger}
}

// Import loads every package under the roots and builds a model.
func (p *PackagesImporter) Import(ctx context.Context, roots []string, opts ImportOptions) (*Model, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	roots = normalizeRoots(roots)
	if len(roots) == 0 {
		return nil, &ImportError{Code: ErrCodeNoRoots, Message: "no package roots given"}
	}
	for _, glob := range opts.ExcludePackages {
		if !doublestar.ValidatePattern(glob) {
			return nil, &ImportError{
				Code:    ErrCodeInvalidPattern,
				Roots:   roots,
				Message: fmt.Sprintf("invalid exclude pattern %q", glob),
			}
		}
	}

	patterns := make([]string, len(roots))
	for i, r := range roots {
		patterns[i] = r + "/..."
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        p.Dir,
		Env:        p.Env,
		BuildFlags: p.BuildFlags,
		Tests:      !opts.ExcludeTests,
	}
	loaded, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, &ImportError{Code: ErrCodeLoadFailed, Roots: roots, Message: "go/packages load failed", Err: err}
	}

	selected := make(map[string]*packages.Package)
	for _, lp := range loaded {
		if !keepPackage(lp, roots, opts) {
			continue
		}
		// With tests enabled the loader returns the plain package and its test
		// variant under the same path; the variant with more files wins.
		if prev, ok := selected[lp.PkgPath]; ok && len(prev.GoFiles) >= len(lp.GoFiles) {
			continue
		}
		selected[lp.PkgPath] = lp
	}

	var details []string
	for _, lp := range selected {
		for _, e := range lp.Errors {
			details = append(details, fmt.Sprintf("%s: %s", lp.PkgPath, e.Error()))
		}
	}
	if len(details) > 0 {
		sort.Strings(details)
		return nil, &ImportError{
			Code:    ErrCodePackageErrors,
			Roots:   roots,
			Message: fmt.Sprintf("%d package error(s)", len(details)),
			Details: details,
		}
	}

	for _, r := range roots {
		found := false
		for path := range selected {
			if UnderRoot(path, r) {
				found = true
				break
			}
		}
		if !found {
			return nil, &ImportError{
				Code:    ErrCodeUnresolvedRoot,
				Roots:   []string{r},
				Message: "root matched no packages",
			}
		}
	}

	pkgs := make([]*Package, 0, len(selected))
	for _, lp := range selected {
		pkgs = append(pkgs, buildPackage(lp))
	}

	logger.Debug("code model imported",
		"roots", roots,
		"packages", len(pkgs),
		"exclude_tests", opts.ExcludeTests,
		"exclude_archives", opts.ExcludeArchives,
	)

	return New(roots, pkgs...), nil
}

// keepPackage applies the root, archive and exclusion filters.
func keepPackage(lp *packages.Package, roots []string, opts ImportOptions) bool {
	// The generated test main has path "p.test" and no user code.
	if strings.HasSuffix(lp.PkgPath, ".test") {
		return false
	}
	under := false
	for _, r := range roots {
		if UnderRoot(lp.PkgPath, r) {
			under = true
			break
		}
	}
	if !under {
		return false
	}
	if opts.ExcludeArchives && (lp.Module == nil || !lp.Module.Main) {
		return false
	}
	if opts.ExcludeTests && strings.HasSuffix(lp.PkgPath, "_test") {
		return false
	}
	for _, glob := range opts.ExcludePackages {
		if ok, _ := doublestar.Match(glob, lp.PkgPath); ok {
			return false
		}
	}
	return true
}

// builder converts one loaded package into model declarations.
type builder struct {
	lp  *packages.Package
	pkg *Package
}

func buildPackage(lp *packages.Package) *Package {
	pkg := &Package{
		Path: lp.PkgPath,
		Name: lp.Name,
		Test: strings.HasSuffix(lp.PkgPath, "_test"),
	}
	for _, f := range lp.GoFiles {
		if strings.HasSuffix(f, "_test.go") {
			pkg.Test = true
		}
	}
	if len(lp.GoFiles) > 0 {
		pkg.Dir = filepath.Dir(lp.GoFiles[0])
	}
	for path := range lp.Imports {
		pkg.Imports = append(pkg.Imports, path)
	}
	sort.Strings(pkg.Imports)

	b := &builder{lp: lp, pkg: pkg}
	for _, file := range lp.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				b.genDecl(d)
			case *ast.FuncDecl:
				b.funcDecl(d)
			}
		}
	}
	return pkg
}

func (b *builder) position(pos token.Pos) token.Position {
	return b.lp.Fset.Position(pos)
}

func (b *builder) ref(name string) Ref {
	return Ref{Package: b.pkg.Path, Name: name}
}

func (b *builder) genDecl(d *ast.GenDecl) {
	// A lone spec without parentheses carries its doc on the GenDecl.
	single := d.Lparen == token.NoPos

	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			doc := s.Doc
			if doc == nil && single {
				doc = d.Doc
			}
			t := &Type{
				Ref:        b.ref(s.Name.Name),
				Kind:       KindOther,
				Pos:        b.position(s.Pos()),
				Directives: ParseDirectives(doc),
			}
			switch st := s.Type.(type) {
			case *ast.StructType:
				t.Kind = KindStruct
				for _, f := range st.Fields.List {
					if len(f.Names) == 0 {
						t.Fields++
					}
					t.Fields += len(f.Names)
				}
			case *ast.InterfaceType:
				t.Kind = KindInterface
			}
			b.pkg.Types = append(b.pkg.Types, t)
			b.collectDeps(t.Ref, s)

		case *ast.ValueSpec:
			doc := s.Doc
			if doc == nil && single {
				doc = d.Doc
			}
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				v := &Value{
					Ref:        b.ref(name.Name),
					Const:      d.Tok == token.CONST,
					Pos:        b.position(name.Pos()),
					Directives: ParseDirectives(doc),
				}
				if obj := b.lp.TypesInfo.Defs[name]; obj != nil {
					v.TypeName = types.TypeString(obj.Type(), types.RelativeTo(b.lp.Types))
				}
				b.pkg.Values = append(b.pkg.Values, v)
				b.collectDeps(v.Ref, s)
			}
		}
	}
}

func (b *builder) funcDecl(d *ast.FuncDecl) {
	name := d.Name.Name
	recv := ""
	if d.Recv != nil && len(d.Recv.List) > 0 {
		recv = receiverName(d.Recv.List[0].Type)
		name = recv + "." + name
	}

	f := &Func{
		Ref:        b.ref(name),
		Receiver:   recv,
		Pos:        b.position(d.Pos()),
		Directives: ParseDirectives(d.Doc),
	}
	if d.Body != nil {
		ast.Inspect(d.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if id, ok := ast.Unparen(call.Fun).(*ast.Ident); ok {
				if bi, ok := b.lp.TypesInfo.Uses[id].(*types.Builtin); ok && bi.Name() == "panic" {
					f.CallsPanic = true
				}
			}
			return true
		})
	}
	b.pkg.Funcs = append(b.pkg.Funcs, f)
	b.collectDeps(f.Ref, d)
}

// collectDeps records every reference from node to a package-level
// declaration of another package.
func (b *builder) collectDeps(from Ref, node ast.Node) {
	ast.Inspect(node, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		obj := b.lp.TypesInfo.Uses[id]
		if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() == b.pkg.Path {
			return true
		}
		to, ok := objectRef(obj)
		if !ok {
			return true
		}
		b.pkg.Dependencies = append(b.pkg.Dependencies, Dependency{
			From: from,
			To:   to,
			Pos:  b.position(id.Pos()),
		})
		return true
	})
}

// objectRef maps a types.Object to the ref of its declaration.
func objectRef(obj types.Object) (Ref, bool) {
	pkgPath := obj.Pkg().Path()
	if fn, ok := obj.(*types.Func); ok {
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
			recv := sig.Recv().Type()
			if ptr, ok := recv.(*types.Pointer); ok {
				recv = ptr.Elem()
			}
			if named, ok := recv.(*types.Named); ok {
				return Ref{Package: pkgPath, Name: named.Obj().Name() + "." + fn.Name()}, true
			}
			return Ref{}, false
		}
	}
	if obj.Parent() != obj.Pkg().Scope() {
		return Ref{}, false
	}
	return Ref{Package: pkgPath, Name: obj.Name()}, true
}

// receiverName returns the base type name of a method receiver expression.
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}
