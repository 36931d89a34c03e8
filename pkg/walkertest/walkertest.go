// Package walkertest holds canned package metadata and item-tree
// fixtures for exercising the walker without a real source parser or
// package-metadata loader — the Go equivalent of the original
// implementation's TEST_CRATE_DATA/TEST_LOCATION_METADATA fixtures.
package walkertest

import (
	"fmt"

	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/itemtree"
	"tendon.dev/pkg/pkggraph"
)

// FakePackageID is the package id tests build their fixtures against.
var FakePackageID = ident.PackageID{Name: "fake_package", Version: "0.0.0"}

// FakePackage returns minimal metadata for a root package whose
// dependencies are deps (none if deps is empty), each keyed by its
// package name.
func FakePackage(deps ...pkggraph.PackageData) pkggraph.PackageData {
	d := make(map[string]ident.PackageID, len(deps))
	for _, dep := range deps {
		d[dep.ID.Name] = dep.ID
	}
	return pkggraph.PackageData{
		ID:              FakePackageID,
		Dependencies:    d,
		EntrySourceFile: "fake_package/lib.rs",
		LanguageEdition: pkggraph.Edition2018,
	}
}

// FakeDependency builds a minimal PackageData for a package named name,
// suitable for use as one of FakePackage's deps.
func FakeDependency(name string) pkggraph.PackageData {
	return pkggraph.PackageData{
		ID:              ident.PackageID{Name: name, Version: "0.0.0"},
		Dependencies:    map[string]ident.PackageID{},
		EntrySourceFile: name + "/lib.rs",
		LanguageEdition: pkggraph.Edition2018,
	}
}

// MapLoader is a walker.FileLoader backed by an in-memory map of file
// path to contents, for tests that need to resolve a file-backed (as
// opposed to inline) module declaration.
type MapLoader map[string]*itemtree.File

func (m MapLoader) LoadModule(filePath string) (*itemtree.File, error) {
	f, ok := m[filePath]
	if !ok {
		return nil, fmt.Errorf("walkertest: no fixture file registered at %s", filePath)
	}
	return f, nil
}

// MapReparser is a macroexpand.Reparser backed by an in-memory map from
// the substituted token sequence's joined form to the item list it
// should reparse into — enough to drive a fixed test macro expansion
// without a real tokenizer/parser.
type MapReparser map[string]*itemtree.File

func (m MapReparser) Reparse(tokens []string) (*itemtree.File, error) {
	key := joinTokens(tokens)
	f, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("walkertest: no reparse fixture registered for %q", key)
	}
	return f, nil
}

func joinTokens(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

// File builds an *itemtree.File from a list of top-level items.
func File(items ...itemtree.Node) *itemtree.File {
	return &itemtree.File{Items: items}
}

// PubFn builds a minimal public, inline, no-argument function item named
// name, enough to populate the Symbol namespace in a test.
func PubFn(name string) *itemtree.Function {
	return &itemtree.Function{Name: name, PubKeyword: true}
}

// PrivFn is PubFn without the pub keyword.
func PrivFn(name string) *itemtree.Function {
	return &itemtree.Function{Name: name}
}

// InlineMod builds a public inline module item containing items.
func InlineMod(name string, items ...itemtree.Node) *itemtree.Module {
	return &itemtree.Module{Name: name, PubKeyword: true, Inline: true, Items: items}
}

// PrivInlineMod is InlineMod without the pub keyword.
func PrivInlineMod(name string, items ...itemtree.Node) *itemtree.Module {
	return &itemtree.Module{Name: name, Inline: true, Items: items}
}

// GlobImport builds a `use path::*` item.
func GlobImport(path ...string) *itemtree.Import {
	return &itemtree.Import{Path: path, Glob: true}
}

// ExplicitImport builds a `use path as rename` (or plain `use path`, when
// rename is empty) item.
func ExplicitImport(rename string, path ...string) *itemtree.Import {
	return &itemtree.Import{Path: path, Rename: rename}
}

// PubExplicitImport is ExplicitImport with the `pub use` keyword set.
func PubExplicitImport(rename string, path ...string) *itemtree.Import {
	return &itemtree.Import{Path: path, Rename: rename, PubKeyword: true}
}

// ExternCrate builds an `extern crate name [as rename];` item.
func ExternCrate(name, rename string) *itemtree.ExternDep {
	return &itemtree.ExternDep{Name: name, Rename: rename}
}

// MacroUseExternCrate builds a `#[macro_use] extern crate name;` item.
func MacroUseExternCrate(name string) *itemtree.ExternDep {
	return &itemtree.ExternDep{Name: name, MacroUse: true}
}
