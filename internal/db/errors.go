package db

import (
	"fmt"

	"tendon.dev/pkg/ident"
)

// Code is the superset DatabaseError taxonomy: the source carried two
// parallel definitions (tendon-api's namespace-level error and
// tendon-resolve's walker-level one); this is their union.
type Code int

const (
	ItemAlreadyPresent Code = iota
	BindingAlreadyPresent
	NoSuchScope
)

func (c Code) String() string {
	switch c {
	case ItemAlreadyPresent:
		return "item already present"
	case BindingAlreadyPresent:
		return "binding already present"
	case NoSuchScope:
		return "no such scope"
	default:
		return "unknown database error"
	}
}

// Error is a database invariant violation, surfaced to the walker which
// logs it against the offending item's span and continues.
type Error struct {
	Code Code
	At   ident.AbsPath
	Name string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s (%s)", e.Code, e.At, e.Name)
}
