// Package codemodel provides the immutable, queryable code model that
// architecture checks are evaluated against.
//
// A Model is a snapshot of the Go packages found under one or more
// import-path roots. Each package exposes its package-level declarations
// (types, functions and methods, variables and constants), the imports it
// declares and the cross-package dependencies between declarations.
//
// # Annotations
//
// Go has no annotations; the model treats comment directives on a
// declaration's doc comment as annotations instead:
//
//	//nolint:unused,errcheck        -> nolint, value=[unused errcheck]
//	//lint:ignore SA1019 legacy API -> lint:ignore, value=[SA1019], reason="legacy API"
//	//arch:allow-panic             -> arch:allow-panic
//	//arch:layer name=domain        -> arch:layer, name="domain"
//
// A "Deprecated:" paragraph in the doc comment is exposed as the
// Deprecated annotation with the deprecation notice as its single-string
// value.
//
// # Importing
//
// Models are produced by an Importer. PackagesImporter loads packages with
// golang.org/x/tools/go/packages; it either returns a complete model or an
// *ImportError, never a partial model. Models are never mutated after
// construction and are safe for concurrent reads.
package codemodel
