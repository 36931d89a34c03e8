package db

import (
	"tendon.dev/pkg/ident"
)

// bindingEntry pairs a binding with the relative path it lives at, since
// RelPath (a slice) cannot itself be a map key.
type bindingEntry struct {
	rel ident.RelPath
	b   *Binding
}

// itemEntry pairs an item with its defining relative path, for the same
// reason.
type itemEntry[T any] struct {
	rel ident.RelPath
	it  *T
}

// Namespace is one of the four per-package, per-kind stores: two parallel
// maps keyed by relative path, items (the definition of record) and
// bindings (name-resolution redirects). T is the item value type for this
// namespace (item.Type, item.Symbol, item.Macro, or item.Module),
// standing in for the source's compile-time NamespaceLookup capability.
//
// A Namespace is owned exclusively by one in-progress PackageStore until
// Seal; afterwards it is read-only and safe for concurrent readers.
type Namespace[T any] struct {
	items    map[string]*itemEntry[T]
	bindings map[string]*bindingEntry
}

func newNamespace[T any]() *Namespace[T] {
	return &Namespace[T]{
		items:    make(map[string]*itemEntry[T]),
		bindings: make(map[string]*bindingEntry),
	}
}

// InsertItem records the definition of record at rel. Re-insertion at an
// already-present path is an error (§3: "An item is inserted exactly once
// at its defining identity").
func (ns *Namespace[T]) InsertItem(rel ident.RelPath, it *T) error {
	key := rel.String()
	if _, ok := ns.items[key]; ok {
		return &Error{Code: ItemAlreadyPresent, Name: key}
	}
	ns.items[key] = &itemEntry[T]{rel: rel, it: it}
	return nil
}

// GetItem looks up the definition of record at rel.
func (ns *Namespace[T]) GetItem(rel ident.RelPath) (*T, bool) {
	e, ok := ns.items[rel.String()]
	if !ok {
		return nil, false
	}
	return e.it, true
}

// InsertBinding inserts a binding at rel. An Explicit binding may displace
// an existing Glob binding at the same path; any other collision is
// BindingAlreadyPresent.
func (ns *Namespace[T]) InsertBinding(rel ident.RelPath, b *Binding) error {
	key := rel.String()
	existing, ok := ns.bindings[key]
	if !ok {
		ns.bindings[key] = &bindingEntry{rel: rel, b: b}
		return nil
	}
	if existing.b.Priority == Glob && b.Priority == Explicit {
		ns.bindings[key] = &bindingEntry{rel: rel, b: b}
		return nil
	}
	return &Error{Code: BindingAlreadyPresent, Name: key}
}

// GetBinding looks up the binding at rel, the lookup accessible_items and
// path resolution both use.
func (ns *Namespace[T]) GetBinding(rel ident.RelPath) (*Binding, bool) {
	e, ok := ns.bindings[rel.String()]
	if !ok {
		return nil, false
	}
	return e.b, true
}

// HasBinding reports whether rel already has any binding, regardless of
// priority.
func (ns *Namespace[T]) HasBinding(rel ident.RelPath) bool {
	_, ok := ns.bindings[rel.String()]
	return ok
}

// Each calls fn for every (relative path, binding) pair currently in the
// namespace, for glob-import propagation and accessible_items. Iteration
// order is unspecified; per §5 the final state does not depend on it.
func (ns *Namespace[T]) Each(fn func(rel ident.RelPath, b *Binding)) {
	for _, e := range ns.bindings {
		fn(e.rel, e.b)
	}
}

// EachItem calls fn for every (relative path, item) pair currently in the
// namespace, used by the external serializer to walk the definition
// table.
func (ns *Namespace[T]) EachItem(fn func(rel ident.RelPath, it *T)) {
	for _, e := range ns.items {
		fn(e.rel, e.it)
	}
}

// ChildBindings returns every binding whose path is a direct child of
// scope, keyed by its final segment — the set a glob import of scope
// copies into the importing scope.
func (ns *Namespace[T]) ChildBindings(scope ident.RelPath) map[string]*Binding {
	out := make(map[string]*Binding)
	for _, e := range ns.bindings {
		parent, ok := e.rel.Parent()
		if !ok || !parent.Equal(scope) {
			continue
		}
		last, ok := e.rel.Last()
		if !ok {
			continue
		}
		out[string(last)] = e.b
	}
	return out
}
