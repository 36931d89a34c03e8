package db

import (
	"tendon.dev/pkg/ident"
)

// Priority is Explicit or Glob. An Explicit binding may displace a Glob
// binding at the same path; otherwise a second binding at an occupied
// path is an error.
type Priority int

const (
	Glob Priority = iota
	Explicit
)

func (p Priority) String() string {
	if p == Explicit {
		return "explicit"
	}
	return "glob"
}

// Binding is a name-resolution redirect: a relative path in some scope
// maps to the absolute identity of the item it ultimately names. Bindings
// are always stored collapsed (§3): AbsoluteTarget is a defining identity,
// never another binding's path.
type Binding struct {
	AbsoluteTarget ident.Identity
	Visibility     ident.Visibility
	Priority       Priority
}
