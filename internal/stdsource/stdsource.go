// Package stdsource injects the synthetic standard-library packages
// (spec §6): given a filesystem path to the standard packages' sources,
// it adds PackageData entries for core, alloc, and std with version
// "0.0.0", chained std -> alloc -> core, and Edition2018. These are then
// walked like any other package.
package stdsource

import (
	"path/filepath"

	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/pkggraph"
)

const syntheticVersion = "0.0.0"

// Names of the three synthetic packages, in dependency order (core has no
// dependencies, alloc depends on core, std depends on both).
const (
	Core  = "core"
	Alloc = "alloc"
	Std   = "std"
)

// Inject adds core, alloc, and std PackageData entries to g, rooted under
// root (the standard-library source tree's path), each one's
// EntrySourceFile pointing at root/<name>/lib.rs — the conventional entry
// point, mirroring how a real package's root source file is located.
func Inject(g *pkggraph.StaticGraph, root string) *pkggraph.StaticGraph {
	coreID := ident.PackageID{Name: Core, Version: syntheticVersion}
	allocID := ident.PackageID{Name: Alloc, Version: syntheticVersion}
	stdID := ident.PackageID{Name: Std, Version: syntheticVersion}

	g.Add(pkggraph.PackageData{
		ID:              coreID,
		Dependencies:    map[string]ident.PackageID{},
		EntrySourceFile: filepath.Join(root, Core, "lib.rs"),
		LanguageEdition: pkggraph.Edition2018,
	})
	g.Add(pkggraph.PackageData{
		ID:              allocID,
		Dependencies:    map[string]ident.PackageID{Core: coreID},
		EntrySourceFile: filepath.Join(root, Alloc, "lib.rs"),
		LanguageEdition: pkggraph.Edition2018,
	})
	g.Add(pkggraph.PackageData{
		ID: stdID,
		Dependencies: map[string]ident.PackageID{
			Core:  coreID,
			Alloc: allocID,
		},
		EntrySourceFile: filepath.Join(root, Std, "lib.rs"),
		LanguageEdition: pkggraph.Edition2018,
	})

	return g
}

// IDs returns the three synthetic package ids, in dependency order.
func IDs() []ident.PackageID {
	return []ident.PackageID{
		{Name: Core, Version: syntheticVersion},
		{Name: Alloc, Version: syntheticVersion},
		{Name: Std, Version: syntheticVersion},
	}
}
