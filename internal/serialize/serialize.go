// Package serialize is the reference implementation of the external
// serializer spec §6 delegates persistence to. It is not part of the
// core's contract — any format that round-trips items, bindings, and
// package metadata satisfies the spec — but this module needs one
// concrete implementation, and YAML is the format encr.dev's own
// configuration loading already standardizes on.
package serialize

import (
	"gopkg.in/yaml.v3"

	"tendon.dev/internal/db"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
)

// BindingEntry is one (relative path, binding) pair, flattened out of a
// Namespace for serialization since RelPath cannot be a map key.
type BindingEntry struct {
	Rel     ident.RelPath `yaml:"rel"`
	Binding db.Binding    `yaml:"binding"`
}

// TypeEntry, SymbolEntry, MacroEntry, and ModuleEntry are the
// per-namespace (relative path, item) pairs.
type TypeEntry struct {
	Rel  ident.RelPath `yaml:"rel"`
	Item item.Type     `yaml:"item"`
}

type SymbolEntry struct {
	Rel  ident.RelPath `yaml:"rel"`
	Item item.Symbol   `yaml:"item"`
}

type MacroEntry struct {
	Rel  ident.RelPath `yaml:"rel"`
	Item item.Macro    `yaml:"item"`
}

type ModuleEntry struct {
	Rel  ident.RelPath `yaml:"rel"`
	Item item.Module   `yaml:"item"`
}

// PackageDump is the flattened, serializer-friendly mirror of a
// db.PackageStore: every item and binding, across all four namespaces,
// plus package identity and the dependency-identifier table.
type PackageDump struct {
	ID   ident.PackageID          `yaml:"id"`
	Deps map[string]ident.PackageID `yaml:"deps,omitempty"`

	Types   []TypeEntry   `yaml:"types,omitempty"`
	Symbols []SymbolEntry `yaml:"symbols,omitempty"`
	Macros  []MacroEntry  `yaml:"macros,omitempty"`
	Modules []ModuleEntry `yaml:"modules,omitempty"`

	TypeBindings   []BindingEntry `yaml:"type_bindings,omitempty"`
	SymbolBindings []BindingEntry `yaml:"symbol_bindings,omitempty"`
	MacroBindings  []BindingEntry `yaml:"macro_bindings,omitempty"`
	ModuleBindings []BindingEntry `yaml:"module_bindings,omitempty"`
}

// Dump flattens a sealed (or in-progress) package store into a
// PackageDump.
func Dump(ps *db.PackageStore) PackageDump {
	d := PackageDump{ID: ps.ID, Deps: ps.Deps}

	ps.Types.EachItem(func(rel ident.RelPath, it *item.Type) {
		d.Types = append(d.Types, TypeEntry{Rel: rel, Item: *it})
	})
	ps.Symbols.EachItem(func(rel ident.RelPath, it *item.Symbol) {
		d.Symbols = append(d.Symbols, SymbolEntry{Rel: rel, Item: *it})
	})
	ps.Macros.EachItem(func(rel ident.RelPath, it *item.Macro) {
		d.Macros = append(d.Macros, MacroEntry{Rel: rel, Item: *it})
	})
	ps.Modules.EachItem(func(rel ident.RelPath, it *item.Module) {
		d.Modules = append(d.Modules, ModuleEntry{Rel: rel, Item: *it})
	})

	ps.Types.Each(func(rel ident.RelPath, b *db.Binding) {
		d.TypeBindings = append(d.TypeBindings, BindingEntry{Rel: rel, Binding: *b})
	})
	ps.Symbols.Each(func(rel ident.RelPath, b *db.Binding) {
		d.SymbolBindings = append(d.SymbolBindings, BindingEntry{Rel: rel, Binding: *b})
	})
	ps.Macros.Each(func(rel ident.RelPath, b *db.Binding) {
		d.MacroBindings = append(d.MacroBindings, BindingEntry{Rel: rel, Binding: *b})
	})
	ps.Modules.Each(func(rel ident.RelPath, b *db.Binding) {
		d.ModuleBindings = append(d.ModuleBindings, BindingEntry{Rel: rel, Binding: *b})
	})

	return d
}

// Load rebuilds an unsealed package store from a dump, suitable for
// passing to (*db.Database).Seal.
func Load(database *db.Database, d PackageDump) (*db.PackageStore, error) {
	ps := database.NewPackage(d.ID, d.Deps)

	for _, e := range d.Types {
		it := e.Item
		if err := ps.Types.InsertItem(e.Rel, &it); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Symbols {
		it := e.Item
		if err := ps.Symbols.InsertItem(e.Rel, &it); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Macros {
		it := e.Item
		if err := ps.Macros.InsertItem(e.Rel, &it); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Modules {
		it := e.Item
		if err := ps.Modules.InsertItem(e.Rel, &it); err != nil {
			return nil, err
		}
	}

	for _, e := range d.TypeBindings {
		b := e.Binding
		if err := ps.Types.InsertBinding(e.Rel, &b); err != nil {
			return nil, err
		}
	}
	for _, e := range d.SymbolBindings {
		b := e.Binding
		if err := ps.Symbols.InsertBinding(e.Rel, &b); err != nil {
			return nil, err
		}
	}
	for _, e := range d.MacroBindings {
		b := e.Binding
		if err := ps.Macros.InsertBinding(e.Rel, &b); err != nil {
			return nil, err
		}
	}
	for _, e := range d.ModuleBindings {
		b := e.Binding
		if err := ps.Modules.InsertBinding(e.Rel, &b); err != nil {
			return nil, err
		}
	}

	return ps, nil
}

// Marshal renders a dump as YAML.
func Marshal(d PackageDump) ([]byte, error) {
	return yaml.Marshal(d)
}

// Unmarshal parses YAML produced by Marshal.
func Unmarshal(data []byte) (PackageDump, error) {
	var d PackageDump
	err := yaml.Unmarshal(data, &d)
	return d, err
}
