package tendon_test

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/goleak"

	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/pkggraph"
	"tendon.dev/pkg/tendon"
	"tendon.dev/pkg/walkertest"
)

// TestRunAcrossDependencyLayers exercises two independent leaf packages
// walked concurrently in the same layer, followed by a root package that
// depends on both — the layering Run builds from the graph's topological
// order (pkg/tendon/tendon.go's layerByDependency).
func TestRunAcrossDependencyLayers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	c := qt.New(t)

	leafA := walkertest.FakeDependency("leaf_a")
	leafB := walkertest.FakeDependency("leaf_b")
	root := walkertest.FakePackage(leafA, leafB)

	loader := walkertest.MapLoader{
		leafA.EntrySourceFile: walkertest.File(walkertest.PubFn("a_fn")),
		leafB.EntrySourceFile: walkertest.File(walkertest.PubFn("b_fn")),
		root.EntrySourceFile:  walkertest.File(walkertest.PubFn("root_fn")),
	}

	graph := pkggraph.NewStaticGraph(root, leafA, leafB)

	result, err := tendon.Run(context.Background(), graph, tendon.Options{Loader: loader})
	c.Assert(err, qt.IsNil)
	c.Assert(result.Diags.Len(), qt.Equals, 0)

	for _, id := range []ident.PackageID{leafA.ID, leafB.ID, root.ID} {
		store, ok := result.Database.Package(id)
		c.Assert(ok, qt.IsTrue)
		c.Assert(store, qt.IsNotNil)
	}
}

// TestRunRejectsCyclicGraph confirms a cyclic dependency graph is reported
// as an error rather than deadlocking or panicking.
func TestRunRejectsCyclicGraph(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	c := qt.New(t)

	a := pkggraph.PackageData{
		ID:              ident.PackageID{Name: "a", Version: "0.0.0"},
		EntrySourceFile: "a/lib.rs",
		LanguageEdition: pkggraph.Edition2018,
	}
	b := pkggraph.PackageData{
		ID:              ident.PackageID{Name: "b", Version: "0.0.0"},
		EntrySourceFile: "b/lib.rs",
		LanguageEdition: pkggraph.Edition2018,
	}
	a.Dependencies = map[string]ident.PackageID{"b": b.ID}
	b.Dependencies = map[string]ident.PackageID{"a": a.ID}

	graph := pkggraph.NewStaticGraph(a, b)

	_, err := tendon.Run(context.Background(), graph, tendon.Options{Loader: walkertest.MapLoader{}})
	c.Assert(err, qt.IsNotNil)
}
