package db_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"tendon.dev/internal/db"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
)

func demoPkg() ident.PackageID {
	return ident.PackageID{Name: "demo", Version: "0.1.0"}
}

func TestGlobThenExplicitWins(t *testing.T) {
	c := qt.New(t)

	d := db.New()
	ps := d.NewPackage(demoPkg(), nil)

	target := ident.AbsPath{Pkg: demoPkg(), Rel: ident.NewRelPath("b", "X")}
	c.Assert(ps.Types.InsertItem(ident.NewRelPath("b", "X"), &item.Type{Name: "X"}), qt.IsNil)
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("b", "X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	}), qt.IsNil)

	// use b::*; inserts a Glob binding for X at the importing scope.
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Glob,
	}), qt.IsNil)

	// use b::X as X (explicit) now displaces the glob.
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	}), qt.IsNil)

	got, ok := ps.Types.GetBinding(ident.NewRelPath("X"))
	c.Assert(ok, qt.IsTrue)
	c.Assert(got.Priority, qt.Equals, db.Explicit)

	// A second explicit at the same path is rejected.
	err := ps.Types.InsertBinding(ident.NewRelPath("X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	})
	c.Assert(err, qt.ErrorMatches, ".*binding already present.*")
}

func TestAccessibleItemsShortestPathTieBreak(t *testing.T) {
	c := qt.New(t)

	d := db.New()
	ps := d.NewPackage(demoPkg(), nil)
	target := ident.AbsPath{Pkg: demoPkg(), Rel: ident.NewRelPath("a", "b", "c", "X")}
	c.Assert(ps.Types.InsertItem(ident.NewRelPath("a", "b", "c", "X"), &item.Type{Name: "X"}), qt.IsNil)
	for _, m := range []ident.RelPath{ident.NewRelPath("a"), ident.NewRelPath("a", "b"), ident.NewRelPath("a", "b", "c")} {
		c.Assert(ps.Modules.InsertItem(m, &item.Module{Name: string(m[len(m)-1])}), qt.IsNil)
	}

	// pub use a::b::c::X (self-binding style deep re-export).
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("a", "b", "c", "X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	}), qt.IsNil)
	// pub use a::X (shorter re-export of the same target).
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("a", "X"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	}), qt.IsNil)
	c.Assert(d.Seal(ps), qt.IsNil)

	got, err := db.AccessibleItems(d, demoPkg(), func(ps *db.PackageStore) *db.Namespace[item.Type] { return ps.Types })
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 1)
	c.Assert(got[0].RelPath.Equal(ident.NewRelPath("a", "X")), qt.IsTrue)
}

func TestAccessibleItemsNonPublicIntermediateHidesSubtree(t *testing.T) {
	c := qt.New(t)

	d := db.New()
	ps := d.NewPackage(demoPkg(), nil)
	target := ident.AbsPath{Pkg: demoPkg(), Rel: ident.NewRelPath("m", "T")}
	c.Assert(ps.Modules.InsertItem(ident.NewRelPath("m"), &item.Module{
		Name:     "m",
		Metadata: item.Metadata{Visibility: ident.VisNonPublic},
	}), qt.IsNil)
	c.Assert(ps.Types.InsertItem(ident.NewRelPath("m", "T"), &item.Type{Name: "T"}), qt.IsNil)
	c.Assert(ps.Types.InsertBinding(ident.NewRelPath("m", "T"), &db.Binding{
		AbsoluteTarget: target, Visibility: ident.VisPublic, Priority: db.Explicit,
	}), qt.IsNil)
	c.Assert(d.Seal(ps), qt.IsNil)

	got, err := db.AccessibleItems(d, demoPkg(), func(ps *db.PackageStore) *db.Namespace[item.Type] { return ps.Types })
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.HasLen, 0)

	// the item itself is still directly gettable.
	it, ok := d.GetType(target)
	c.Assert(ok, qt.IsTrue)
	c.Assert(it.Name, qt.Equals, "T")
}
