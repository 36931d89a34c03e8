package serialize_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	qt "github.com/frankban/quicktest"

	"tendon.dev/internal/db"
	"tendon.dev/internal/serialize"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
)

func TestRoundTrip(t *testing.T) {
	c := qt.New(t)

	pkgID := ident.PackageID{Name: "demo", Version: "0.1.0"}
	database := db.New()
	ps := database.NewPackage(pkgID, map[string]ident.PackageID{
		"std": {Name: "std", Version: "0.0.0"},
	})

	fn := &item.Symbol{
		Name:       "f",
		SymbolKind: item.SymbolFunc,
		Metadata:   item.Metadata{Visibility: ident.VisPublic, Doc: "adds one"},
		Signature: &item.Signature{
			Conv:   item.CallConv{Kind: item.ConvRust},
			Params: []item.Param{{Name: "y", Type: "i32"}},
			Return: "i32",
		},
	}
	c.Assert(ps.Symbols.InsertItem(ident.NewRelPath("f"), fn), qt.IsNil)
	c.Assert(ps.Symbols.InsertBinding(ident.NewRelPath("f"), &db.Binding{
		AbsoluteTarget: ident.AbsPath{Pkg: pkgID, Rel: ident.NewRelPath("f")},
		Visibility:     ident.VisPublic,
		Priority:       db.Explicit,
	}), qt.IsNil)

	dump := serialize.Dump(ps)
	raw, err := serialize.Marshal(dump)
	c.Assert(err, qt.IsNil)

	roundTripped, err := serialize.Unmarshal(raw)
	c.Assert(err, qt.IsNil)

	restoredDB := db.New()
	restored, err := serialize.Load(restoredDB, roundTripped)
	c.Assert(err, qt.IsNil)

	got, ok := restored.Symbols.GetItem(ident.NewRelPath("f"))
	c.Assert(ok, qt.IsTrue)
	if diff := cmp.Diff(fn, got); diff != "" {
		t.Fatalf("round-tripped item differs (-want +got):\n%s", diff)
	}
}
