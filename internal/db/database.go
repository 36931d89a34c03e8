// Package db is the concurrent, append-only item database (C3/C4): per
// package namespaces of items and bindings, sealed atomically, queried by
// identity or by the accessible_items visibility walk.
package db

import (
	"sort"
	"sync"

	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
)

// PackageStore is one package's scratch namespaces, owned exclusively by
// its walker until Seal, after which it is immutable.
type PackageStore struct {
	ID   ident.PackageID
	Deps map[string]ident.PackageID // import identifier -> dependency package id

	Types   *Namespace[item.Type]
	Symbols *Namespace[item.Symbol]
	Macros  *Namespace[item.Macro]
	Modules *Namespace[item.Module]

	sealed bool
}

func newPackageStore(id ident.PackageID, deps map[string]ident.PackageID) *PackageStore {
	return &PackageStore{
		ID:      id,
		Deps:    deps,
		Types:   newNamespace[item.Type](),
		Symbols: newNamespace[item.Symbol](),
		Macros:  newNamespace[item.Macro](),
		Modules: newNamespace[item.Module](),
	}
}

// Root is this package's root identity, the (package, empty-path) pair
// against which the visibility walk and prelude bindings are anchored.
func (ps *PackageStore) Root() ident.Identity {
	return ident.AbsPath{Pkg: ps.ID}
}

// Database is the concurrent map from PackageID to sealed per-package
// stores. The only writer is Seal; it inserts atomically with respect to
// readers, who see either the old (absent) or the new (complete, sealed)
// package, never a partially sealed one.
type Database struct {
	mu       sync.RWMutex
	packages map[ident.PackageID]*PackageStore
}

// New constructs an empty database.
func New() *Database {
	return &Database{packages: make(map[ident.PackageID]*PackageStore)}
}

// NewPackage creates a mutable scratch store for id, not yet visible to
// readers. deps maps the identifier a dependency is imported under to its
// package id (the extern-dependency table, §6).
func (d *Database) NewPackage(id ident.PackageID, deps map[string]ident.PackageID) *PackageStore {
	return newPackageStore(id, deps)
}

// Seal atomically inserts ps into the database. Once sealed, ps is
// read-only; sealing an id twice is an error.
func (d *Database) Seal(ps *PackageStore) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.packages[ps.ID]; ok {
		return &Error{Code: ItemAlreadyPresent, At: ps.Root(), Name: "package " + ps.ID.String()}
	}
	ps.sealed = true
	d.packages[ps.ID] = ps
	return nil
}

// Package returns the sealed store for id, if present.
func (d *Database) Package(id ident.PackageID) (*PackageStore, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ps, ok := d.packages[id]
	return ps, ok
}

// GetType, GetSymbol, GetMacro, and GetModule are the namespace-typed
// lookups of §4.1's get_item<Kind>, one per closed item kind.

func (d *Database) GetType(id ident.Identity) (*item.Type, bool) {
	ps, ok := d.Package(id.Pkg)
	if !ok {
		return nil, false
	}
	return ps.Types.GetItem(id.Rel)
}

func (d *Database) GetSymbol(id ident.Identity) (*item.Symbol, bool) {
	ps, ok := d.Package(id.Pkg)
	if !ok {
		return nil, false
	}
	return ps.Symbols.GetItem(id.Rel)
}

func (d *Database) GetMacro(id ident.Identity) (*item.Macro, bool) {
	ps, ok := d.Package(id.Pkg)
	if !ok {
		return nil, false
	}
	return ps.Macros.GetItem(id.Rel)
}

func (d *Database) GetModule(id ident.Identity) (*item.Module, bool) {
	ps, ok := d.Package(id.Pkg)
	if !ok {
		return nil, false
	}
	return ps.Modules.GetItem(id.Rel)
}

// ModulePublic reports whether every module on the path from the root of
// ps down to (and including) scope has Public visibility; InScope(root)
// counts as public. The walk starts at the root and scans segment by
// segment, so the first NonPublic makes the entire subtree inaccessible.
func ModulePublic(ps *PackageStore, scope ident.RelPath) bool {
	root := ps.Root()
	for i := 0; i <= len(scope); i++ {
		prefix := scope[:i]
		if len(prefix) == 0 {
			continue // the package root is always public
		}
		mod, ok := ps.Modules.GetItem(prefix)
		if !ok {
			// No module item at this prefix (e.g. the prefix names a
			// type, not a module) — treat as public, since only module
			// nonpublicity hides a subtree.
			continue
		}
		if !mod.Visibility.IsPublic(root) {
			return false
		}
	}
	return true
}

// AccessibleEntry is one row of accessible_items: the shortest (then
// lexicographically earliest) external relative path reaching a given
// defining absolute path.
type AccessibleEntry struct {
	RelPath  ident.RelPath
	AbsPath  ident.Identity
}

// AccessibleItems enumerates every binding in pkg's namespace selected by
// sel whose entire path chain is externally reachable — every
// intermediate module externally visible and the binding itself public —
// deduplicated so that when multiple bindings reach the same target, the
// shortest relative path wins, ties broken lexicographically, and the
// result sorted by (RelPath, AbsPath) for determinism.
func AccessibleItems[T any](d *Database, pkg ident.PackageID, sel func(*PackageStore) *Namespace[T]) ([]AccessibleEntry, error) {
	ps, ok := d.Package(pkg)
	if !ok {
		return nil, &Error{Code: NoSuchScope, Name: pkg.String()}
	}
	ns := sel(ps)
	root := ps.Root()

	best := make(map[string]AccessibleEntry) // keyed by AbsPath.String()
	ns.Each(func(rel ident.RelPath, b *Binding) {
		if !b.Visibility.IsPublic(root) {
			return
		}
		parent, hasParent := rel.Parent()
		if hasParent && !ModulePublic(ps, parent) {
			return
		}
		key := b.AbsoluteTarget.String()
		cur, exists := best[key]
		if !exists || rel.Less(cur.RelPath) {
			best[key] = AccessibleEntry{RelPath: rel, AbsPath: b.AbsoluteTarget}
		}
	})

	result := make([]AccessibleEntry, 0, len(best))
	for _, e := range best {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RelPath.Equal(result[j].RelPath) {
			return result[i].RelPath.Less(result[j].RelPath)
		}
		return result[i].AbsPath.String() < result[j].AbsPath.String()
	})
	return result, nil
}
