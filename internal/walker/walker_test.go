package walker_test

import (
	"go/token"
	"testing"

	qt "github.com/frankban/quicktest"

	"tendon.dev/internal/db"
	"tendon.dev/internal/diag"
	"tendon.dev/internal/macroexpand"
	"tendon.dev/internal/walker"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
	"tendon.dev/pkg/walkertest"
)

// fixture runs a single fake package's root file through the walker to a
// fixed point and returns the owning database alongside the sealed
// store, so tests can exercise both identity-keyed lookups and the
// accessible_items visibility walk.
func fixture(c *qt.C, root *itemtree.File, loader walker.FileLoader, reparser macroexpand.Reparser) (*db.Database, *db.PackageStore, *diag.List) {
	database := db.New()
	diags := diag.New(token.NewFileSet())
	w := walker.New(walker.Config{
		Database: database,
		Package:  walkertest.FakePackage(),
		Root:     root,
		Loader:   loader,
		Reparser: reparser,
		Diags:    diags,
	})
	store, err := w.Run()
	c.Assert(err, qt.IsNil)
	return database, store, diags
}

func symbolEntries(c *qt.C, database *db.Database) []db.AccessibleEntry {
	entries, err := db.AccessibleItems(database, walkertest.FakePackageID, func(ps *db.PackageStore) *db.Namespace[item.Symbol] {
		return ps.Symbols
	})
	c.Assert(err, qt.IsNil)
	return entries
}

func TestTrivialDefinition(t *testing.T) {
	c := qt.New(t)
	root := walkertest.File(walkertest.PubFn("f"))
	database, store, _ := fixture(c, root, nil, nil)

	b, ok := store.Symbols.GetBinding(ident.NewRelPath("f"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(b.AbsoluteTarget, qt.DeepEquals, ident.AbsPath{Pkg: walkertest.FakePackageID, Rel: ident.NewRelPath("f")})

	entries := symbolEntries(c, database)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].RelPath, qt.DeepEquals, ident.NewRelPath("f"))
}

func TestReExportCollapse(t *testing.T) {
	c := qt.New(t)
	// a private module's public function is reached only through a
	// public re-export at the root — the module itself never appears.
	root := walkertest.File(
		walkertest.PrivInlineMod("a", walkertest.PubFn("f")),
		walkertest.PubExplicitImport("", "a", "f"),
	)
	database, _, _ := fixture(c, root, nil, nil)

	entries := symbolEntries(c, database)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].RelPath, qt.DeepEquals, ident.NewRelPath("f"))
	c.Assert(entries[0].AbsPath.Rel, qt.DeepEquals, ident.NewRelPath("a", "f"))
}

func TestShortestPathTieBreak(t *testing.T) {
	c := qt.New(t)
	// a::x is reachable directly (length 2) and via a root re-export
	// (length 1); the shorter path wins and the longer one is dropped.
	root := walkertest.File(
		walkertest.InlineMod("a", walkertest.PubFn("x")),
		walkertest.PubExplicitImport("", "a", "x"),
	)
	database, _, _ := fixture(c, root, nil, nil)

	entries := symbolEntries(c, database)
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].RelPath, qt.DeepEquals, ident.NewRelPath("x"))
}

func TestGlobVsExplicitWins(t *testing.T) {
	c := qt.New(t)
	root := walkertest.File(
		walkertest.InlineMod("a", walkertest.PubFn("y"), walkertest.PubFn("z")),
		walkertest.GlobImport("a"),
		walkertest.ExplicitImport("", "a", "y"),
	)
	_, store, _ := fixture(c, root, nil, nil)

	yb, ok := store.Symbols.GetBinding(ident.NewRelPath("y"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(yb.Priority, qt.Equals, db.Explicit)

	zb, ok := store.Symbols.GetBinding(ident.NewRelPath("z"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(zb.Priority, qt.Equals, db.Glob)
}

func TestTextuallyScopedMacroExpansion(t *testing.T) {
	c := qt.New(t)
	macro := &itemtree.MacroDef{
		Name:  "m",
		Rules: []item.MacroRule{{Pattern: nil, Template: nil}},
	}
	invocation := &itemtree.MacroInvocation{Path: []string{"m"}}
	root := walkertest.File(macro, invocation)

	reparser := walkertest.MapReparser{
		"": walkertest.File(walkertest.PubFn("expanded")),
	}
	_, store, diags := fixture(c, root, nil, reparser)

	_, ok := store.Symbols.GetBinding(ident.NewRelPath("expanded"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(diags.Len(), qt.Equals, 0)
}

func TestExternRenameResolvesThroughAlias(t *testing.T) {
	c := qt.New(t)
	database := db.New()
	diags := diag.New(token.NewFileSet())

	depData := walkertest.FakeDependency("dep_pkg")
	depWalker := walker.New(walker.Config{
		Database: database,
		Package:  depData,
		Root:     walkertest.File(walkertest.PubFn("x")),
		Diags:    diags,
	})
	_, err := depWalker.Run()
	c.Assert(err, qt.IsNil)

	root := walkertest.File(
		walkertest.ExternCrate("dep_pkg", "renamed"),
		walkertest.ExplicitImport("", "renamed", "x"),
	)
	rootData := walkertest.FakePackage(depData)
	w := walker.New(walker.Config{
		Database: database,
		Package:  rootData,
		Root:     root,
		Diags:    diags,
	})
	store, err := w.Run()
	c.Assert(err, qt.IsNil)

	b, ok := store.Symbols.GetBinding(ident.NewRelPath("x"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(b.AbsoluteTarget, qt.DeepEquals, ident.AbsPath{Pkg: depData.ID, Rel: ident.NewRelPath("x")})
}

func TestMacroUseExternCratePopulatesPrelude(t *testing.T) {
	c := qt.New(t)
	database := db.New()
	diags := diag.New(token.NewFileSet())

	depData := walkertest.FakeDependency("dep_pkg")
	depMacro := &itemtree.MacroDef{
		Name:        "mac",
		MacroExport: true,
		Rules:       []item.MacroRule{{Pattern: nil, Template: nil}},
	}
	depWalker := walker.New(walker.Config{
		Database: database,
		Package:  depData,
		Root:     walkertest.File(walkertest.InlineMod("sub", depMacro)),
		Diags:    diags,
	})
	_, err := depWalker.Run()
	c.Assert(err, qt.IsNil)

	invocation := &itemtree.MacroInvocation{Path: []string{"mac"}}
	root := walkertest.File(
		walkertest.MacroUseExternCrate("dep_pkg"),
		invocation,
	)
	rootData := walkertest.FakePackage(depData)
	reparser := walkertest.MapReparser{
		"": walkertest.File(walkertest.PubFn("expanded")),
	}
	w := walker.New(walker.Config{
		Database: database,
		Package:  rootData,
		Root:     root,
		Reparser: reparser,
		Diags:    diags,
	})
	store, err := w.Run()
	c.Assert(err, qt.IsNil)

	_, ok := store.Symbols.GetBinding(ident.NewRelPath("expanded"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(diags.Len(), qt.Equals, 0)
}

func TestNonpublicIntermediateHidesSubtree(t *testing.T) {
	c := qt.New(t)
	root := walkertest.File(walkertest.PrivInlineMod("m", walkertest.PubFn("t")))
	database, store, _ := fixture(c, root, nil, nil)

	entries := symbolEntries(c, database)
	c.Assert(entries, qt.HasLen, 0)

	_, ok := store.Symbols.GetItem(ident.NewRelPath("m", "t"))
	c.Assert(ok, qt.IsTrue)
}
