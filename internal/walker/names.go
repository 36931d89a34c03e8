package walker

import (
	"tendon.dev/internal/db"
	"tendon.dev/internal/lower"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
)

// processNames discovers definitions and records imports across every
// not-yet-seen pending node, recursing into inline and file-resolved
// submodules as it goes (§4.2).
func (w *Walker) processNames() {
	for len(w.pending) > 0 {
		n := w.pending[0]
		w.pending = w.pending[1:]
		w.handleNode(n.scope, n.node)
	}
}

func (w *Walker) handleNode(scope ident.RelPath, n itemtree.Node) {
	switch node := n.(type) {
	case *itemtree.Module:
		w.handleModule(scope, node)
	case *itemtree.Import:
		w.handleImport(scope, node)
	case *itemtree.ExternDep:
		w.handleExtern(scope, node)
	case *itemtree.MacroDef:
		w.handleMacroDef(scope, node)
	case *itemtree.MacroInvocation:
		w.handleMacroInvocation(scope, node)
	case *itemtree.Function:
		w.insertSymbol(scope, lower.Function(node, w.parentVisibility(scope)))
	case *itemtree.SymbolDecl:
		w.insertSymbol(scope, lower.Symbol(node, w.parentVisibility(scope)))
	case *itemtree.TypeDecl:
		w.insertType(scope, lower.Type(node, w.parentVisibility(scope), w.diags, w.pkg.String()))
	case *itemtree.ImplBlock, *itemtree.ForeignMod, *itemtree.Verbatim:
		// recognized, not lowered — spec §9's unfinished regions / non-goals.
	}
}

// parentVisibility looks up the containing module's own visibility, for
// the inheritance rule in §4.3. The package root has implicit NonPublic
// default visibility (a Rust crate root's items without `pub` are
// private outside the crate too).
func (w *Walker) parentVisibility(scope ident.RelPath) ident.Visibility {
	if len(scope) == 0 {
		return ident.VisNonPublic
	}
	mod, ok := w.store.Modules.GetItem(scope)
	if !ok {
		return ident.VisNonPublic
	}
	return mod.Visibility
}

func (w *Walker) selfIdentity(scope ident.RelPath, name string) ident.Identity {
	return ident.AbsPath{Pkg: w.pkg, Rel: scope.Append(ident.Segment(name))}
}

func (w *Walker) insertType(scope ident.RelPath, t *item.Type) {
	path := scope.Append(ident.Segment(t.Name))
	if err := w.store.Types.InsertItem(path, t); err != nil {
		w.diags.Errorf(w.pkg.String(), posOf(t.Span), "database: %v", err)
		return
	}
	w.progress = true
	b := &db.Binding{AbsoluteTarget: w.selfIdentity(scope, t.Name), Visibility: t.Visibility, Priority: db.Explicit}
	_ = w.store.Types.InsertBinding(path, b)
	w.scopeFor(scope).Reserve(t.Name)
	propagateSelfBinding(w, w.store.Types, scope, t.Name, b)
}

func (w *Walker) insertSymbol(scope ident.RelPath, s *item.Symbol) {
	path := scope.Append(ident.Segment(s.Name))
	if err := w.store.Symbols.InsertItem(path, s); err != nil {
		w.diags.Errorf(w.pkg.String(), posOf(s.Span), "database: %v", err)
		return
	}
	w.progress = true
	b := &db.Binding{AbsoluteTarget: w.selfIdentity(scope, s.Name), Visibility: s.Visibility, Priority: db.Explicit}
	_ = w.store.Symbols.InsertBinding(path, b)
	w.scopeFor(scope).Reserve(s.Name)
	propagateSelfBinding(w, w.store.Symbols, scope, s.Name, b)
}

func (w *Walker) insertMacro(scope ident.RelPath, m *item.Macro) {
	path := scope.Append(ident.Segment(m.Name))
	if err := w.store.Macros.InsertItem(path, m); err != nil {
		w.diags.Errorf(w.pkg.String(), posOf(m.Span), "database: %v", err)
		return
	}
	w.progress = true
	b := &db.Binding{AbsoluteTarget: w.selfIdentity(scope, m.Name), Visibility: m.Visibility, Priority: db.Explicit}
	_ = w.store.Macros.InsertBinding(path, b)
	w.scopeFor(scope).Reserve(m.Name)
	propagateSelfBinding(w, w.store.Macros, scope, m.Name, b)

	// #[macro_export]: also insert at the package root's macro namespace,
	// in addition to its textual definition site (supplemented feature).
	if m.MacroExport && len(scope) != 0 {
		rootPath := ident.NewRelPath(m.Name)
		rootID := ident.AbsPath{Pkg: w.pkg, Rel: rootPath}
		rb := &db.Binding{AbsoluteTarget: w.selfIdentity(scope, m.Name), Visibility: ident.VisPublic, Priority: db.Explicit}
		if err := w.store.Macros.InsertBinding(rootPath, rb); err == nil {
			w.progress = true
			propagateSelfBinding(w, w.store.Macros, ident.RelPath{}, m.Name, rb)
		}
		_ = rootID
	}
}

func (w *Walker) handleModule(scope ident.RelPath, node *itemtree.Module) {
	mod := lower.Module(node, w.parentVisibility(scope))
	path := scope.Append(ident.Segment(mod.Name))
	if err := w.store.Modules.InsertItem(path, mod); err != nil {
		w.diags.Errorf(w.pkg.String(), posOf(mod.Span), "database: %v", err)
		return
	}
	w.progress = true
	b := &db.Binding{AbsoluteTarget: w.selfIdentity(scope, mod.Name), Visibility: mod.Visibility, Priority: db.Explicit}
	_ = w.store.Modules.InsertBinding(path, b)
	w.scopeFor(scope).Reserve(mod.Name)
	propagateSelfBinding(w, w.store.Modules, scope, mod.Name, b)

	w.textual[path.String()] = w.textualFor(scope).Fork()

	if node.Inline {
		w.enqueueModuleItems(path, node.Items)
		return
	}

	if w.loader == nil {
		w.diags.Warnf(w.pkg.String(), posOf(mod.Span), "module %s: no file loader configured, skipping", mod.Name)
		return
	}
	filePath, err := moduleFilePath(mod)
	if err != nil {
		w.diags.Warnf(w.pkg.String(), posOf(mod.Span), "module %s: malformed #[path] attribute: %v", mod.Name, err)
		return
	}
	file, err := w.loader.LoadModule(filePath)
	if err != nil {
		w.diags.Warnf(w.pkg.String(), posOf(mod.Span), "module %s: not found at %s: %v", mod.Name, filePath, err)
		return
	}
	w.enqueueModuleItems(path, file.Items)
}

func moduleFilePath(mod *item.Module) (string, error) {
	if mod.PathOverride != "" {
		return mod.PathOverride, nil
	}
	return mod.Name + ".rs", nil
}

func (w *Walker) handleExtern(scope ident.RelPath, node *itemtree.ExternDep) {
	target, known := w.deps[node.Name]
	if !known {
		w.diags.Warnf(w.pkg.String(), posOf(node.Span), "extern %s: not present in the package graph, skipping", node.Name)
		return
	}

	// Supplemented feature: a root-position extern with a rename rewrites
	// the dependency-identifier table itself, not just an ordinary
	// binding, so later `rename::X` resolves through it.
	if len(scope) == 0 && node.Rename != "" {
		w.deps[node.Rename] = target
		w.progress = true
	}

	if node.MacroUse {
		if depStore, ok := w.database.Package(target); ok {
			depStore.Macros.Each(func(rel ident.RelPath, b *db.Binding) {
				if len(rel) != 1 {
					return
				}
				if !b.Visibility.IsPublic(depStore.Root()) {
					return
				}
				name := string(rel[0])
				if _, exists := w.preludeMacros[name]; !exists {
					w.preludeMacros[name] = b.AbsoluteTarget
					w.progress = true
				}
			})
		}
	}
}

func (w *Walker) handleMacroDef(scope ident.RelPath, node *itemtree.MacroDef) {
	m := lower.Macro(node, w.parentVisibility(scope))
	w.insertMacro(scope, m)
	w.textualFor(scope).Define(m.Name, w.selfIdentity(scope, m.Name))
}

func (w *Walker) handleImport(scope ident.RelPath, node *itemtree.Import) {
	if node.Glob {
		w.tryGlobImport(scope, node)
		return
	}
	name := node.Rename
	if name == "" && len(node.Path) > 0 {
		name = node.Path[len(node.Path)-1]
	}
	w.scopeFor(scope).Reserve(name)
	if w.tryExplicitImport(scope, node, name) {
		return
	}
	w.workList = append(w.workList, importJob{scope: scope, path: node.Path, glob: false, pub: node.PubKeyword, name: name, span: node.Span})
}

func (w *Walker) handleMacroInvocation(scope ident.RelPath, node *itemtree.MacroInvocation) {
	expanded, proc := w.tryExpandInvocation(scope, node)
	if expanded {
		return
	}
	w.unexpanded = append(w.unexpanded, unexpandedItem{
		scope: scope, path: node.Path, tokens: node.Tokens, span: node.Span, proc: proc,
	})
}
