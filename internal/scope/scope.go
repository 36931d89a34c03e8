// Package scope holds the walker-local, ephemeral bookkeeping that backs
// glob-import propagation and textually-scoped macros: back links,
// reserved explicit names, and the textual macro-scope chain. All of it
// is discarded once a package is sealed (§3 "Scope in progress").
package scope

import (
	"tendon.dev/pkg/ident"
)

// BackLink records that Target glob-imports from the scope this link is
// attached to, under Visibility — so a later addition to the owning scope
// must also be offered to Target.
type BackLink struct {
	Target     ident.Identity
	Visibility ident.Visibility
}

// InProgress is the per-module scratch state the walker keeps alive only
// until the package is sealed.
type InProgress struct {
	// BackLinks lists every other scope that glob-imports from this one.
	BackLinks []BackLink
	// ReservedExplicit holds names with an explicit import at this scope,
	// resolved or not; glob imports must never overwrite them.
	ReservedExplicit map[string]bool
	// Propagated de-duplicates (target scope, name, source) triples so
	// that transitive back-link propagation terminates (§4.2).
	Propagated map[propagationKey]bool
}

type propagationKey struct {
	target ident.Identity
	name   string
	source ident.Identity
}

// New returns an empty in-progress scope.
func New() *InProgress {
	return &InProgress{
		ReservedExplicit: make(map[string]bool),
		Propagated:       make(map[propagationKey]bool),
	}
}

// AddBackLink records that target glob-imports from this scope.
func (s *InProgress) AddBackLink(target ident.Identity, vis ident.Visibility) {
	s.BackLinks = append(s.BackLinks, BackLink{Target: target, Visibility: vis})
}

// Reserve marks name as having an explicit import at this scope.
func (s *InProgress) Reserve(name string) {
	s.ReservedExplicit[name] = true
}

// IsReserved reports whether name has a reserved explicit import.
func (s *InProgress) IsReserved(name string) bool {
	return s.ReservedExplicit[name]
}

// ShouldPropagate reports whether (target, name, source) has not yet been
// propagated, and marks it propagated as a side effect. Call this exactly
// once per candidate propagation; a false result means skip it.
func (s *InProgress) ShouldPropagate(target ident.Identity, name string, source ident.Identity) bool {
	key := propagationKey{target: target, name: name, source: source}
	if s.Propagated[key] {
		return false
	}
	s.Propagated[key] = true
	return true
}

// TextualMacro is one entry in a textual scope chain: a declarative macro
// visible from the point it was defined onward in the same file.
type TextualMacro struct {
	Name  string
	Ident ident.Identity
}

// Textual is a stack-structured chain of macros defined so far in one
// source file's textual walk order. Lookups scan most-recently-defined
// first, matching "a macro defined on line N is only callable by name
// later in the same textual walk" (§3).
type Textual struct {
	chain []TextualMacro
}

// NewTextual returns an empty textual scope.
func NewTextual() *Textual {
	return &Textual{}
}

// Define appends a macro definition to the chain, making it visible to
// subsequent lookups.
func (t *Textual) Define(name string, id ident.Identity) {
	t.chain = append(t.chain, TextualMacro{Name: name, Ident: id})
}

// Lookup scans the chain most-recently-defined first.
func (t *Textual) Lookup(name string) (ident.Identity, bool) {
	for i := len(t.chain) - 1; i >= 0; i-- {
		if t.chain[i].Name == name {
			return t.chain[i].Ident, true
		}
	}
	return ident.Identity{}, false
}

// Fork returns a copy of the chain as of this call, for a nested module
// that should see everything defined textually before it but diverge
// independently afterward.
func (t *Textual) Fork() *Textual {
	out := &Textual{chain: make([]TextualMacro, len(t.chain))}
	copy(out.chain, t.chain)
	return out
}
