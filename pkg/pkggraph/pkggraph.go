// Package pkggraph defines the read-only package-metadata interface the
// walker consumes (spec §6): the package-metadata loader's output, not
// something this module constructs itself.
package pkggraph

import (
	"tendon.dev/pkg/ident"
)

// Edition is the source language edition a package was authored against.
type Edition string

const (
	Edition2015 Edition = "2015"
	Edition2018 Edition = "2018"
)

// PackageData describes one package's metadata, as the package-metadata
// loader would produce it.
type PackageData struct {
	ID                     ident.PackageID
	Dependencies           map[string]ident.PackageID // import identifier -> dependency package id
	EntrySourceFile        string                     // absolute filesystem path
	IsProceduralMacroPkg   bool
	EnabledFeatureFlags    []string // opaque to the core
	LanguageEdition        Edition
}

// Graph is the read-only package graph the walker is handed; the core
// never constructs one itself.
type Graph interface {
	// Packages returns every package's id, in no particular order.
	Packages() []ident.PackageID
	// Lookup returns the metadata for id.
	Lookup(id ident.PackageID) (PackageData, bool)
	// TopoOrder returns package ids such that every package appears after
	// all of its dependencies — the order packages must be walked in
	// (spec §2: "Packages must be added in dependency order").
	TopoOrder() ([]ident.PackageID, error)
}

// StaticGraph is a Graph backed by an in-memory map, suitable for tests
// and for the stdlib-sources injection in internal/stdsource.
type StaticGraph struct {
	pkgs map[ident.PackageID]PackageData
}

// NewStaticGraph builds a StaticGraph from the given package data.
func NewStaticGraph(data ...PackageData) *StaticGraph {
	g := &StaticGraph{pkgs: make(map[ident.PackageID]PackageData, len(data))}
	for _, d := range data {
		g.pkgs[d.ID] = d
	}
	return g
}

func (g *StaticGraph) Packages() []ident.PackageID {
	out := make([]ident.PackageID, 0, len(g.pkgs))
	for id := range g.pkgs {
		out = append(out, id)
	}
	return out
}

func (g *StaticGraph) Lookup(id ident.PackageID) (PackageData, bool) {
	d, ok := g.pkgs[id]
	return d, ok
}

// Add inserts or replaces a package's metadata, returning the graph for
// chaining (used by internal/stdsource to merge synthetic entries in).
func (g *StaticGraph) Add(d PackageData) *StaticGraph {
	g.pkgs[d.ID] = d
	return g
}

// TopoOrder performs a depth-first topological sort over Dependencies,
// reporting a cycle if one exists.
func (g *StaticGraph) TopoOrder() ([]ident.PackageID, error) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[ident.PackageID]int, len(g.pkgs))
	var order []ident.PackageID

	var visit func(id ident.PackageID) error
	visit = func(id ident.PackageID) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			return &CycleError{Package: id}
		}
		color[id] = gray
		if d, ok := g.pkgs[id]; ok {
			deps := make([]ident.PackageID, 0, len(d.Dependencies))
			for _, dep := range d.Dependencies {
				deps = append(deps, dep)
			}
			sortPackageIDs(deps)
			for _, dep := range deps {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[id] = black
		order = append(order, id)
		return nil
	}

	ids := g.Packages()
	sortPackageIDs(ids)
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func sortPackageIDs(ids []ident.PackageID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && less(ids[j], ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func less(a, b ident.PackageID) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Version < b.Version
}

// CycleError reports a dependency cycle found during TopoOrder.
type CycleError struct {
	Package ident.PackageID
}

func (e *CycleError) Error() string {
	return "dependency cycle detected involving package " + e.Package.String()
}
