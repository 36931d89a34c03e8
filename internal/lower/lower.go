// Package lower is the syntax-to-item translation layer (C5): a family
// of total, fail-soft functions mapping itemtree nodes to item entities.
// A #[repr(...)] attribute with no arguments is warned about and dropped;
// other attributes are not checked. No input aborts lowering: argument
// types are carried through as given and never validated, so every node
// yields an item.
package lower

import (
	"strings"

	"tendon.dev/internal/diag"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
)

// Metadata extracts doc/must_use/deprecated out of attrs into structured
// Metadata fields, classifying the remainder as-is (they are already
// itemtree-typed meta or opaque attributes). Visibility inheritance: the
// pub keyword yields Public; its absence inherits parentVis.
func Metadata(attrs []item.Attribute, pubKeyword bool, parentVis ident.Visibility, span item.Span) item.Metadata {
	md := item.Metadata{Span: span}
	if pubKeyword {
		md.Visibility = ident.VisPublic
	} else {
		md.Visibility = parentVis
	}

	var docParts []string
	for _, a := range attrs {
		switch {
		case a.Meta != nil && a.Meta.Path == "doc" && a.Meta.HasLit:
			docParts = append(docParts, a.Meta.Literal)
		case a.Meta != nil && a.Meta.Path == "must_use":
			md.MustUse = true
		case a.Meta != nil && a.Meta.Path == "deprecated":
			md.Deprecated = deprecatedFrom(a.Meta)
		default:
			md.Attrs = append(md.Attrs, a)
		}
	}
	if len(docParts) > 0 {
		md.Doc = strings.Join(docParts, "\n")
	}
	return md
}

func deprecatedFrom(m *item.MetaAttr) *item.Deprecated {
	d := &item.Deprecated{}
	if m.HasLit {
		d.Note = m.Literal
	}
	for _, arg := range m.Args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		v = strings.Trim(v, `"`)
		switch strings.TrimSpace(k) {
		case "since":
			d.Since = v
		case "note":
			d.Note = v
		}
	}
	return d
}

// CallConv computes a function's calling convention per §4.3: Rust if no
// extern marker is present; C if extern has no explicit ABI string; C if
// the string is "C"; Rust if the string is "Rust"; Other(s) otherwise.
func CallConv(extern bool, abi string) item.CallConv {
	if !extern {
		return item.CallConv{Kind: item.ConvRust}
	}
	switch abi {
	case "", "C":
		return item.CallConv{Kind: item.ConvC}
	case "Rust":
		return item.CallConv{Kind: item.ConvRust}
	default:
		return item.CallConv{Kind: item.ConvOther, Name: abi}
	}
}

// Function lowers a parsed function to a Symbol. The receiver is
// extracted from the first argument if it is a self-receiver; variadic
// functions carry the Variadic flag without a synthetic trailing
// parameter. Flags unsafe/async/const are surface-level only, carried
// through unchanged.
func Function(f *itemtree.Function, parentVis ident.Visibility) *item.Symbol {
	sig := &item.Signature{
		Conv:     CallConv(f.Extern, f.ABI),
		Return:   f.Return,
		Unsafe:   f.Unsafe,
		Async:    f.Async,
		Const:    f.Const,
		Variadic: f.Variadic,
		Generics: f.Generics,
	}

	params := f.Params
	if len(params) > 0 && params[0].IsSelf {
		recv := item.Receiver{}
		if params[0].SelfConsume {
			recv.Kind = item.ReceiverConsumeSelf
		} else {
			recv.Kind = item.ReceiverRefSelf
			recv.Lifetime = params[0].SelfLifetime
			recv.Mut = params[0].SelfRefMut
		}
		sig.Receiver = recv
		params = params[1:]
	}
	for _, p := range params {
		sig.Params = append(sig.Params, item.Param{Name: p.Name, Type: p.Type})
	}

	return &item.Symbol{
		Metadata:   Metadata(f.Attrs, f.PubKeyword, parentVis, f.Span),
		Name:       f.Name,
		SymbolKind: item.SymbolFunc,
		Signature:  sig,
	}
}

// Symbol lowers a const/static declaration.
func Symbol(s *itemtree.SymbolDecl, parentVis ident.Visibility) *item.Symbol {
	kind := item.SymbolConst
	if s.IsStatic {
		kind = item.SymbolStatic
	}
	return &item.Symbol{
		Metadata:   Metadata(s.Attrs, s.PubKeyword, parentVis, s.Span),
		Name:       s.Name,
		SymbolKind: kind,
		Type:       s.Type,
	}
}

// reprFrom lifts a #[repr(...)] attribute out of attrs into a typed Repr,
// dropping it from the remaining attribute list it's found in. A
// malformed repr form is warned about and treated as ReprDefault (fail
// soft, per §4.3).
func reprFrom(attrs []item.Attribute, diags *diag.List, pkg string) (item.Repr, []item.Attribute) {
	var repr item.Repr
	var rest []item.Attribute
	for _, a := range attrs {
		if a.Meta == nil || a.Meta.Path != "repr" {
			rest = append(rest, a)
			continue
		}
		if len(a.Meta.Args) == 0 {
			if diags != nil {
				diags.Warnf(pkg, 0, "malformed #[repr(...)] attribute: no arguments")
			}
			continue
		}
		switch a.Meta.Args[0] {
		case "C":
			repr.Kind = item.ReprC
		case "Rust":
			repr.Kind = item.ReprRust
		case "transparent":
			repr.Kind = item.ReprTransparent
		case "packed":
			repr.Kind = item.ReprPacked
		default:
			repr.Kind = item.ReprIntTag
			repr.IntTag = a.Meta.Args[0]
		}
	}
	return repr, rest
}

// derivesFrom lifts derive(...) attributes out of attrs into typed Derive
// references, leaving the rest untouched.
func derivesFrom(attrs []item.Attribute) ([]item.Derive, []item.Attribute) {
	var derives []item.Derive
	var rest []item.Attribute
	for _, a := range attrs {
		if a.Meta != nil && a.Meta.Path == "derive" {
			for _, d := range a.Meta.Args {
				derives = append(derives, item.Derive{Path: d})
			}
			continue
		}
		rest = append(rest, a)
	}
	return derives, rest
}

// Type lowers a struct/enum/union/trait/type-alias declaration.
// Enumerations lower each variant as a miniature structure; a variant's
// visibility is always set to the enum's own (a variant's visibility can
// never exceed its enum's).
func Type(t *itemtree.TypeDecl, parentVis ident.Visibility, diags *diag.List, pkg string) *item.Type {
	attrs, rest := derivesFrom(t.Attrs)
	repr, rest := reprFrom(rest, diags, pkg)

	md := Metadata(rest, t.PubKeyword, parentVis, t.Span)

	out := &item.Type{
		Metadata: md,
		Name:     t.Name,
		DeclKind: t.DeclKind,
		Generics: t.Generics,
		Kind:     t.Kind,
		Fields:   t.Fields,
		Repr:     repr,
		Derives:  attrs,
		AliasOf:  t.AliasOf,
	}

	for _, v := range t.Variants {
		out.Variants = append(out.Variants, item.Variant{
			Metadata: Metadata(v.Attrs, false, md.Visibility, v.Span),
			Name:     v.Name,
			Kind:     v.Kind,
			Fields:   v.Fields,
		})
	}
	return out
}

// Macro lowers a macro_rules! declaration.
func Macro(m *itemtree.MacroDef, parentVis ident.Visibility) *item.Macro {
	return &item.Macro{
		Metadata:    Metadata(m.Attrs, false, parentVis, m.Span),
		Name:        m.Name,
		DeclKind:    item.MacroDeclarative,
		Rules:       m.Rules,
		MacroExport: m.MacroExport,
	}
}

// Module lowers a module declaration's own metadata (its children are
// lowered independently as the walker descends into them).
func Module(m *itemtree.Module, parentVis ident.Visibility) *item.Module {
	return &item.Module{
		Metadata:     Metadata(m.Attrs, m.PubKeyword, parentVis, m.Span),
		Name:         m.Name,
		PathOverride: m.PathOverride,
	}
}
