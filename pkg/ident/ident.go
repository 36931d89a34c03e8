// Package ident defines the canonical name types shared across the
// resolver: package ids, relative and absolute paths, and visibility.
package ident

import (
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// PackageID identifies a package by name and version, the way a Go module
// path and version identify a module.
type PackageID struct {
	Name    string
	Version string
}

// NormalizeName rewrites hyphens to underscores, the form a package name
// takes once used as an identifier segment.
func NormalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Valid reports whether the package's name is usable as an import path
// segment and its version is a syntactically valid semantic version, using
// the same escaping and version rules as Go module paths.
//
// The synthetic standard-library packages (version "0.0.0") and test
// fixtures are exempt from the module.CheckPath escaping rules, since
// their names need not be valid module paths.
func (p PackageID) Valid() bool {
	if p.Name == "" {
		return false
	}
	if p.Version == "0.0.0" || p.Version == "" {
		return true
	}
	if CheckModulePath(p.Name) != nil {
		return false
	}
	v := p.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}

// CanonicalVersion returns the canonicalized "v"-prefixed form of the
// package's version, as module.CheckPathMajor and friends expect.
func (p PackageID) CanonicalVersion() string {
	v := p.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// CheckModulePath validates name as an importable module path segment,
// surfacing the same diagnostics `go.mod` parsing would.
func CheckModulePath(name string) error {
	return module.CheckImportPath(name)
}

func (p PackageID) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// Segment is a single identifier in a path.
type Segment string

// RelPath is an ordered sequence of identifier segments relative to some
// scope; the empty sequence denotes that scope's root.
type RelPath []Segment

// NewRelPath builds a RelPath from plain strings, for convenience at call
// sites that don't otherwise need the Segment type.
func NewRelPath(segs ...string) RelPath {
	out := make(RelPath, len(segs))
	for i, s := range segs {
		out[i] = Segment(s)
	}
	return out
}

// Append returns a new path with extra segments appended; RelPath values
// are treated as immutable value types, so callers must never be handed a
// path whose backing array is shared and then mutated in place.
func (r RelPath) Append(segs ...Segment) RelPath {
	out := make(RelPath, 0, len(r)+len(segs))
	out = append(out, r...)
	out = append(out, segs...)
	return out
}

// Parent returns the path with its last segment removed, and whether the
// path had a parent (the root path has none).
func (r RelPath) Parent() (RelPath, bool) {
	if len(r) == 0 {
		return nil, false
	}
	return r[:len(r)-1], true
}

// Last returns the final segment and whether the path is non-empty.
func (r RelPath) Last() (Segment, bool) {
	if len(r) == 0 {
		return "", false
	}
	return r[len(r)-1], true
}

func (r RelPath) String() string {
	segs := make([]string, len(r))
	for i, s := range r {
		segs[i] = string(s)
	}
	return strings.Join(segs, "::")
}

// Equal reports structural, order-sensitive equality.
func (r RelPath) Equal(other RelPath) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Less orders paths first by segment count, then segment-wise
// lexicographically — the tie-break comparator accessible_items uses.
func (r RelPath) Less(other RelPath) bool {
	if len(r) != len(other) {
		return len(r) < len(other)
	}
	for i := range r {
		if r[i] != other[i] {
			return r[i] < other[i]
		}
	}
	return false
}

// AbsPath is a package id together with a path relative to that package's
// root; it is the Identity used to key every item in the database.
type AbsPath struct {
	Pkg PackageID
	Rel RelPath
}

// Identity is the key under which an item is defined in the database.
type Identity = AbsPath

func NewAbsPath(pkg PackageID, rel RelPath) AbsPath {
	return AbsPath{Pkg: pkg, Rel: rel}
}

func (a AbsPath) String() string {
	if len(a.Rel) == 0 {
		return a.Pkg.String()
	}
	return a.Pkg.String() + "::" + a.Rel.String()
}

func (a AbsPath) Equal(other AbsPath) bool {
	return a.Pkg == other.Pkg && a.Rel.Equal(other.Rel)
}

// Join appends relative segments to an absolute path's relative part.
func (a AbsPath) Join(segs ...Segment) AbsPath {
	return AbsPath{Pkg: a.Pkg, Rel: a.Rel.Append(segs...)}
}

// Parent returns the absolute path one scope up, and whether it exists;
// the package root has no parent.
func (a AbsPath) Parent() (AbsPath, bool) {
	parent, ok := a.Rel.Parent()
	if !ok {
		return AbsPath{}, false
	}
	return AbsPath{Pkg: a.Pkg, Rel: parent}, true
}

// VisibilityKind is the closed set of visibility flavors a Visibility
// value may take.
type VisibilityKind int

const (
	// Public items are reachable from anywhere the containing module is
	// reachable from.
	Public VisibilityKind = iota
	// NonPublic items are reachable only from within their own package.
	NonPublic
	// InScope restricts visibility to the subtree rooted at Scope.
	InScope
)

// Visibility is either Public, NonPublic, or InScope(identity).
type Visibility struct {
	Kind  VisibilityKind
	Scope Identity // meaningful only when Kind == InScope
}

// VisPublic and VisNonPublic are the two constant-shaped visibilities.
var (
	VisPublic    = Visibility{Kind: Public}
	VisNonPublic = Visibility{Kind: NonPublic}
)

// VisInScope builds an InScope visibility restricted to scope.
func VisInScope(scope Identity) Visibility {
	return Visibility{Kind: InScope, Scope: scope}
}

// IsPublic reports whether v counts as public for the purposes of the
// externally-visible walk in accessible_items: plain Public, or InScope
// rooted exactly at the package root (the prelude injection case).
func (v Visibility) IsPublic(pkgRoot Identity) bool {
	switch v.Kind {
	case Public:
		return true
	case InScope:
		return v.Scope.Equal(pkgRoot)
	default:
		return false
	}
}

func (v Visibility) String() string {
	switch v.Kind {
	case Public:
		return "pub"
	case NonPublic:
		return "priv"
	case InScope:
		return "pub(in " + v.Scope.String() + ")"
	default:
		return "?"
	}
}

// ReservedHead names the special path heads that restart resolution
// instead of naming a binding: "crate" at the package root, "super" at
// the parent scope, "self" at the current scope.
type ReservedHead string

const (
	HeadCrate ReservedHead = "crate"
	HeadSuper ReservedHead = "super"
	HeadSelf  ReservedHead = "self"
)

// ClassifyHead reports which reserved head, if any, seg names.
func ClassifyHead(seg Segment) (ReservedHead, bool) {
	switch ReservedHead(seg) {
	case HeadCrate, HeadSuper, HeadSelf:
		return ReservedHead(seg), true
	}
	return "", false
}
