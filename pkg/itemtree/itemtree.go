// Package itemtree defines the abstract syntax nodes the walker consumes
// (spec'd external collaborator: the source parser). Nothing here parses
// source text; a real parser, or a test, builds these directly.
package itemtree

import (
	"tendon.dev/pkg/item"
)

// Node is any item-position syntax node a file's item list may contain.
type Node interface {
	isNode()
}

// File is one source file's top-level item list.
type File struct {
	Items []Node
}

// Module is either an inline module (Items populated) or a module
// declared by reference to another file, optionally with a #[path=...]
// override (PathOverride, the raw attribute value; neither lowering nor
// the walker validates it, so no value is rejected as malformed).
type Module struct {
	Name         string
	Attrs        []item.Attribute
	PubKeyword   bool
	Span         item.Span
	Inline       bool
	Items        []Node // meaningful when Inline
	PathOverride string // raw attribute value; "" if absent
}

func (*Module) isNode() {}

// Import is a `use a::b::c as d;` or `use a::b::*;` declaration.
type Import struct {
	Attrs      []item.Attribute
	PubKeyword bool
	Path       []string // a, b, c
	Rename     string   // "" if no `as` clause
	Glob       bool
	Span       item.Span
}

func (*Import) isNode() {}

// ExternDep is an `extern crate name [as rename];` declaration.
type ExternDep struct {
	Attrs      []item.Attribute
	PubKeyword bool
	Name       string
	Rename     string // "" if no rename
	MacroUse   bool   // #[macro_use] extern crate ...
	Span       item.Span
}

func (*ExternDep) isNode() {}

// MacroDef is a `macro_rules! name { ... }` declaration.
type MacroDef struct {
	Name        string
	Attrs       []item.Attribute
	Rules       []item.MacroRule
	MacroExport bool
	Span        item.Span
}

func (*MacroDef) isNode() {}

// MacroInvocation is a `name!(...)` at item position.
type MacroInvocation struct {
	Path   []string
	Tokens []string
	Span   item.Span
}

func (*MacroInvocation) isNode() {}

// RawParam is one unlowered function parameter.
type RawParam struct {
	Name         string
	Type         string
	IsSelf       bool
	SelfConsume  bool
	SelfRefMut   bool
	SelfLifetime string
}

// Function is an unlowered function/method item.
type Function struct {
	Name       string
	Attrs      []item.Attribute
	PubKeyword bool
	Unsafe     bool
	Async      bool
	Const      bool
	Variadic   bool
	Extern     bool
	ABI        string // "" if Extern but no literal ABI string given
	Params     []RawParam
	Return     string
	Generics   []item.GenericParam
	Span       item.Span
}

func (*Function) isNode() {}

// RawVariant is one unlowered enum variant.
type RawVariant struct {
	Name   string
	Kind   item.StructKind
	Fields []item.Field
	Attrs  []item.Attribute
	Span   item.Span
}

// TypeDecl is an unlowered struct/enum/union/trait/type-alias.
type TypeDecl struct {
	Name       string
	Attrs      []item.Attribute
	PubKeyword bool
	DeclKind   item.TypeDeclKind
	Generics   []item.GenericParam
	Kind       item.StructKind
	Fields     []item.Field
	Variants   []RawVariant
	AliasOf    string
	Span       item.Span
}

func (*TypeDecl) isNode() {}

// SymbolDecl is an unlowered const/static item.
type SymbolDecl struct {
	Name       string
	Attrs      []item.Attribute
	PubKeyword bool
	IsStatic   bool
	Type       string
	Span       item.Span
}

func (*SymbolDecl) isNode() {}

// ImplBlock, ForeignMod, and Verbatim are recognized but not lowered in
// this core (spec §9's unfinished regions): they are skipped rather than
// producing database entries.
type ImplBlock struct {
	Attrs []item.Attribute
	Span  item.Span
}

func (*ImplBlock) isNode() {}

type ForeignMod struct {
	Attrs []item.Attribute
	Span  item.Span
}

func (*ForeignMod) isNode() {}

type Verbatim struct {
	Span item.Span
}

func (*Verbatim) isNode() {}
