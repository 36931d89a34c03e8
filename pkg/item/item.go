// Package item defines the typed item entities that lowering produces and
// the database stores: types, symbols, macros, and modules, plus the
// metadata, signature, and attribute shapes they share.
package item

import (
	"go/token"

	"tendon.dev/pkg/ident"
)

// Span locates an item in its source file. The walker stamps these from
// the ItemTree node it lowered; the file set used to resolve a Span to a
// human-readable position lives with the diagnostics list that reports it.
type Span struct {
	Pos token.Pos
	End token.Pos
}

// Deprecated carries the optional deprecated(since=…, note=…) attribute.
type Deprecated struct {
	Since string
	Note  string
}

// MetaAttr is a structured attribute: a bare path, a path with a literal
// assignment (path = "literal"), or a path with an argument list
// (path(arg1, arg2)).
type MetaAttr struct {
	Path    string
	Literal string   // set when this is a path=literal attribute
	HasLit  bool
	Args    []string // set when this is a path(args...) attribute
}

// OpaqueAttr is an attribute lowering did not recognize, kept as an
// uninterpreted token bag for downstream consumers.
type OpaqueAttr struct {
	Path   string
	Tokens []string
}

// Attribute is either a MetaAttr or an OpaqueAttr.
type Attribute struct {
	Meta   *MetaAttr
	Opaque *OpaqueAttr
}

// Metadata is carried by every item kind.
type Metadata struct {
	Visibility ident.Visibility
	Doc        string // joined value of doc attributes
	MustUse    bool
	Deprecated *Deprecated
	Span       Span
	Attrs      []Attribute
}

// CallConvKind is the closed set of calling conventions a function
// signature may declare.
type CallConvKind int

const (
	ConvRust CallConvKind = iota
	ConvC
	ConvOther
)

// CallConv names a function's calling convention; Name is set only when
// Kind == ConvOther.
type CallConv struct {
	Kind CallConvKind
	Name string
}

// ReceiverKind classifies how a function takes self, if at all.
type ReceiverKind int

const (
	ReceiverNone ReceiverKind = iota
	ReceiverConsumeSelf
	ReceiverRefSelf
)

// Receiver describes a method's self parameter.
type Receiver struct {
	Kind     ReceiverKind
	Lifetime string // meaningful only for ReceiverRefSelf
	Mut      bool   // meaningful only for ReceiverRefSelf
}

// Param is one name:type argument of a function signature.
type Param struct {
	Name string
	Type string
}

// GenericParam is a single generic type/lifetime/const parameter.
type GenericParam struct {
	Name  string
	Bound string
}

// Signature is a function's full call shape.
type Signature struct {
	Conv       CallConv
	Params     []Param
	Return     string
	Receiver   Receiver
	Unsafe     bool
	Async      bool
	Const      bool
	Variadic   bool
	Generics   []GenericParam
}

// Symbol is a function, constant, or static definition.
type Symbol struct {
	Metadata
	Name      string
	SymbolKind SymbolKind
	Signature *Signature // nil for const/static
	Type      string     // the value's type, for const/static
}

type SymbolKind int

const (
	SymbolFunc SymbolKind = iota
	SymbolConst
	SymbolStatic
)

// StructKind distinguishes field shapes.
type StructKind int

const (
	KindNamed StructKind = iota
	KindTuple
	KindUnit
)

// ReprKind is the recognized subset of #[repr(...)] values.
type ReprKind int

const (
	ReprDefault ReprKind = iota
	ReprC
	ReprRust
	ReprTransparent
	ReprPacked
	ReprIntTag // enum with an explicit integer discriminant type
)

// Repr is a lowered #[repr(...)] attribute.
type Repr struct {
	Kind   ReprKind
	IntTag string // set when Kind == ReprIntTag
}

// Derive is one derive macro path lifted out of the attribute bag.
type Derive struct {
	Path string
}

// Field is a named or positional (tuple) struct/variant field.
type Field struct {
	Name string // stringified index for tuple fields
	Type string
}

// Variant is a miniature structure nested in an enum.
type Variant struct {
	Metadata
	Name   string
	Kind   StructKind
	Fields []Field
}

// TypeDeclKind distinguishes the Type namespace's closed set.
type TypeDeclKind int

const (
	TypeStruct TypeDeclKind = iota
	TypeEnum
	TypeUnion
	TypeTrait
	TypeAlias
)

// Type is a struct/enum/union/trait/type-alias definition.
type Type struct {
	Metadata
	Name     string
	DeclKind TypeDeclKind
	Generics []GenericParam
	Kind     StructKind // meaningful for struct/union
	Fields   []Field    // meaningful for struct/union
	Variants []Variant  // meaningful for enum
	Repr     Repr
	Derives  []Derive
	AliasOf  string // meaningful for TypeAlias
}

// MacroRule is one (pattern, template) rule of a declarative macro; both
// are kept as flat token sequences, matched/substituted by
// internal/macroexpand.
type MacroRule struct {
	Pattern  []string
	Template []string
}

// MacroDeclKind distinguishes declarative macros from procedural stubs.
type MacroDeclKind int

const (
	MacroDeclarative MacroDeclKind = iota
	MacroProcedural
	MacroAttribute
	MacroDerive
)

// Macro is a macro_rules!-style declarative macro or a procedural stub
// recognized but never executed.
type Macro struct {
	Metadata
	Name        string
	DeclKind    MacroDeclKind
	Rules       []MacroRule // meaningful for MacroDeclarative
	MacroExport bool
}

// Module is a scope with its own namespaces and bindings; the Database
// stores its children implicitly, via paths nested under this module's
// identity.
type Module struct {
	Metadata
	Name string
	// PathOverride holds a #[path = "..."] attribute's target, when this
	// module is file-resolved rather than inline.
	PathOverride string
}
