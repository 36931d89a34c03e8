package walker

import (
	"tendon.dev/internal/db"
	"tendon.dev/internal/macroexpand"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
)

// resolved collects whichever namespace(s) a terminal path segment bound
// to; a plain `use` can simultaneously bring in, e.g., a type and a
// function sharing one name, since the four namespaces are disjoint.
type resolved struct {
	Type   *ident.Identity
	Symbol *ident.Identity
	Macro  *ident.Identity
	Module *ident.Identity
}

func (r resolved) any() bool {
	return r.Type != nil || r.Symbol != nil || r.Macro != nil || r.Module != nil
}

func lookupAllNamespaces(store *db.PackageStore, scope ident.RelPath, name string) resolved {
	var r resolved
	path := scope.Append(ident.Segment(name))
	if b, ok := store.Types.GetBinding(path); ok {
		t := b.AbsoluteTarget
		r.Type = &t
	}
	if b, ok := store.Symbols.GetBinding(path); ok {
		t := b.AbsoluteTarget
		r.Symbol = &t
	}
	if b, ok := store.Macros.GetBinding(path); ok {
		t := b.AbsoluteTarget
		r.Macro = &t
	}
	if b, ok := store.Modules.GetBinding(path); ok {
		t := b.AbsoluteTarget
		r.Module = &t
	}
	return r
}

// resolvePath is the lookup sequence of §4.2: crate/super/self restart
// resolution at a different root; every other intermediate segment must
// resolve as a module; the final segment is looked up in all four
// namespaces. If the path's head is unresolved locally, the package's
// macro prelude and then its declared dependency identifiers are
// consulted.
func (w *Walker) resolvePath(scope ident.RelPath, path []string) (resolved, bool) {
	if len(path) == 0 {
		return resolved{}, false
	}

	store := w.store
	cur := scope
	segs := path
	consumedHead := false

	if rh, ok := ident.ClassifyHead(ident.Segment(segs[0])); ok {
		consumedHead = true
		switch rh {
		case ident.HeadCrate:
			cur = ident.RelPath{}
			segs = segs[1:]
		case ident.HeadSuper:
			parent, ok := cur.Parent()
			if !ok {
				return resolved{}, false
			}
			cur = parent
			segs = segs[1:]
		case ident.HeadSelf:
			segs = segs[1:]
		}
		if len(segs) == 0 {
			return resolved{Module: identPtr(ident.AbsPath{Pkg: store.ID, Rel: cur})}, true
		}
	}

	for i := 0; i < len(segs)-1; i++ {
		head := segs[i]
		modID, ok := w.lookupModuleHead(store, cur, head, i == 0 && !consumedHead)
		if !ok {
			return resolved{}, false
		}
		if modID.Pkg == w.pkg {
			store = w.store
		} else if depStore, ok := w.database.Package(modID.Pkg); ok {
			store = depStore
		} else {
			return resolved{}, false
		}
		cur = modID.Rel
	}

	last := segs[len(segs)-1]
	r := lookupAllNamespaces(store, cur, last)
	if r.any() {
		return r, true
	}
	// step 5's prelude/dependency fallback applies only to a bare
	// identifier lookup: a single segment, with no crate/super/self head
	// consumed ahead of it.
	if len(segs) == 1 && !consumedHead {
		if id, ok := w.lookupPreludeOrDep(last); ok {
			return id, true
		}
	}
	return resolved{}, false
}

func identPtr(id ident.Identity) *ident.Identity { return &id }

// lookupModuleHead resolves a single path segment to a module identity,
// via the Module namespace binding at cur, falling back (only for the
// path's first segment) to the macro prelude and declared dependencies.
func (w *Walker) lookupModuleHead(store *db.PackageStore, cur ident.RelPath, head string, isFirst bool) (ident.Identity, bool) {
	if b, ok := store.Modules.GetBinding(cur.Append(ident.Segment(head))); ok {
		return b.AbsoluteTarget, true
	}
	if !isFirst {
		return ident.Identity{}, false
	}
	if r, ok := w.lookupPreludeOrDep(head); ok && r.Module != nil {
		return *r.Module, true
	}
	if depID, ok := w.deps[head]; ok {
		return ident.AbsPath{Pkg: depID}, true
	}
	return ident.Identity{}, false
}

func (w *Walker) lookupPreludeOrDep(name string) (resolved, bool) {
	var r resolved
	if id, ok := w.preludeMacros[name]; ok {
		r.Macro = &id
	}
	if depID, ok := w.deps[name]; ok {
		root := ident.AbsPath{Pkg: depID}
		r.Module = &root
	}
	return r, r.any()
}

// tryExplicitImport attempts `use path as name`. On success it inserts an
// Explicit binding per resolved namespace and propagates via back-links.
func (w *Walker) tryExplicitImport(scope ident.RelPath, node *itemtree.Import, name string) bool {
	r, ok := w.resolvePath(scope, node.Path)
	if !ok {
		return false
	}
	vis := visibilityOf(node)
	inserted := false
	if r.Type != nil {
		inserted = insertExplicitAndPropagate(w, w.store.Types, scope, name, *r.Type, vis) || inserted
	}
	if r.Symbol != nil {
		inserted = insertExplicitAndPropagate(w, w.store.Symbols, scope, name, *r.Symbol, vis) || inserted
	}
	if r.Macro != nil {
		inserted = insertExplicitAndPropagate(w, w.store.Macros, scope, name, *r.Macro, vis) || inserted
	}
	if r.Module != nil {
		inserted = insertExplicitAndPropagate(w, w.store.Modules, scope, name, *r.Module, vis) || inserted
	}
	return inserted
}

func visibilityOf(node *itemtree.Import) ident.Visibility {
	if node.PubKeyword {
		return ident.VisPublic
	}
	return ident.VisNonPublic
}

func bindExplicitPath(scope ident.RelPath, name string) ident.RelPath {
	return scope.Append(ident.Segment(name))
}

func insertExplicitAndPropagate[T any](w *Walker, ns *db.Namespace[T], scope ident.RelPath, name string, target ident.Identity, vis ident.Visibility) bool {
	b := &db.Binding{AbsoluteTarget: target, Visibility: vis, Priority: db.Explicit}
	if err := ns.InsertBinding(bindExplicitPath(scope, name), b); err != nil {
		w.diags.Errorf(w.pkg.String(), 0, "database: %v", err)
		return false
	}
	w.progress = true
	propagateSelfBinding(w, ns, scope, name, b)
	return true
}

// tryGlobImport attempts `use path::*`. On success it copies every
// currently-visible binding of the target module into scope at Glob
// priority, skipping reserved-explicit or already-bound names, and
// records a back link when the target is this same in-progress package
// (a sealed dependency will never change again, so no back link is
// needed there).
func (w *Walker) tryGlobImport(scope ident.RelPath, node *itemtree.Import) bool {
	r, ok := w.resolvePath(scope, node.Path)
	if !ok || r.Module == nil {
		w.workList = append(w.workList, importJob{scope: scope, path: node.Path, glob: true, pub: node.PubKeyword, span: node.Span})
		return false
	}
	target := *r.Module
	targetStore := w.store
	if target.Pkg != w.pkg {
		ts, ok := w.database.Package(target.Pkg)
		if !ok {
			return false
		}
		targetStore = ts
	}
	vis := visibilityOf(node)
	crossPackage := target.Pkg != w.pkg

	globCopy(w, targetStore.Types, w.store.Types, target.Rel, scope, vis, crossPackage)
	globCopy(w, targetStore.Symbols, w.store.Symbols, target.Rel, scope, vis, crossPackage)
	globCopy(w, targetStore.Macros, w.store.Macros, target.Rel, scope, vis, crossPackage)
	globCopy(w, targetStore.Modules, w.store.Modules, target.Rel, scope, vis, crossPackage)

	if !crossPackage {
		w.scopeFor(target.Rel).AddBackLink(ident.AbsPath{Pkg: w.pkg, Rel: scope}, vis)
	}
	return true
}

// globCopy copies every child binding of srcScope into destScope at Glob
// priority. A cross-package glob only ever sees Public bindings (a
// NonPublic item is, by definition, invisible outside its own package);
// a same-package glob also copies NonPublic bindings, since those are
// still reachable from anywhere within the package.
func globCopy[T any](w *Walker, src, dest *db.Namespace[T], srcScope, destScope ident.RelPath, vis ident.Visibility, crossPackage bool) {
	destScopeState := w.scopeFor(destScope)
	for name, b := range src.ChildBindings(srcScope) {
		if destScopeState.IsReserved(name) {
			continue
		}
		if crossPackage && b.Visibility.Kind != ident.Public {
			continue
		}
		newB := &db.Binding{AbsoluteTarget: b.AbsoluteTarget, Visibility: vis, Priority: db.Glob}
		path := destScope.Append(ident.Segment(name))
		if err := dest.InsertBinding(path, newB); err != nil {
			continue
		}
		w.progress = true
		propagateSelfBinding(w, dest, destScope, name, newB)
	}
}

// propagateSelfBinding offers a newly (re)bound name at scope to every
// scope that glob-imports from it, transitively, terminating via each
// scope's de-duplicated propagation set (§4.2's "(target_scope,
// propagated_name, source) triples").
func propagateSelfBinding[T any](w *Walker, ns *db.Namespace[T], scope ident.RelPath, name string, b *db.Binding) {
	source := ident.AbsPath{Pkg: w.pkg, Rel: scope}
	si := w.scopeFor(scope)
	for _, bl := range si.BackLinks {
		if bl.Target.Pkg != w.pkg {
			continue
		}
		targetRel := bl.Target.Rel
		tsi := w.scopeFor(targetRel)
		if tsi.IsReserved(name) {
			continue
		}
		if !tsi.ShouldPropagate(bl.Target, name, source) {
			continue
		}
		newB := &db.Binding{AbsoluteTarget: b.AbsoluteTarget, Visibility: bl.Visibility, Priority: db.Glob}
		if err := ns.InsertBinding(targetRel.Append(ident.Segment(name)), newB); err != nil {
			continue
		}
		w.progress = true
		propagateSelfBinding(w, ns, targetRel, name, newB)
	}
}

// processWorkList re-attempts every parked import in insertion order; any
// success is removed and may unblock further imports.
func (w *Walker) processWorkList() {
	var remaining []importJob
	for _, job := range w.workList {
		var ok bool
		if job.glob {
			ok = w.tryGlobImport(job.scope, &itemtree.Import{Path: job.path, Glob: true, PubKeyword: job.pub, Span: job.span})
		} else {
			ok = w.tryExplicitImport(job.scope, &itemtree.Import{Path: job.path, Rename: job.name, PubKeyword: job.pub, Span: job.span}, job.name)
		}
		if ok {
			w.progress = true
			continue
		}
		remaining = append(remaining, job)
	}
	w.workList = remaining
}

// expandMacros re-attempts every parked macro invocation whose reference
// now resolves to a known declarative macro.
func (w *Walker) expandMacros() {
	var remaining []unexpandedItem
	for _, u := range w.unexpanded {
		if u.proc {
			remaining = append(remaining, u)
			continue
		}
		inv := &itemtree.MacroInvocation{Path: u.path, Tokens: u.tokens, Span: u.span}
		expanded, proc := w.tryExpandInvocation(u.scope, inv)
		if expanded {
			w.progress = true
			continue
		}
		if proc && !u.proc {
			u.proc = true
			w.progress = true // resolved to its terminal classification; stop retrying
		}
		remaining = append(remaining, u)
	}
	w.unexpanded = remaining
}

// tryExpandInvocation resolves a macro invocation's name — textual scope
// first, then the macro namespace, then prelude/dependencies — and, if a
// declarative macro is found, expands it and feeds the result back into
// process_names at the originating scope. The second return value is true
// only when the invocation resolved to a procedural/attribute/derive macro:
// such a reference is recognized but never executed (§9), so it will never
// expand no matter how many more outer-loop iterations run, and the caller
// should stop retrying it.
func (w *Walker) tryExpandInvocation(scope ident.RelPath, node *itemtree.MacroInvocation) (expanded, proc bool) {
	if len(node.Path) == 0 {
		return false, false
	}
	name := node.Path[len(node.Path)-1]

	var id ident.Identity
	var found bool
	if len(node.Path) == 1 {
		if tid, ok := w.textualFor(scope).Lookup(name); ok {
			id, found = tid, true
		}
	}
	if !found {
		r, ok := w.resolvePath(scope, node.Path)
		if ok && r.Macro != nil {
			id, found = *r.Macro, true
		}
	}
	if !found {
		return false, false
	}

	m, ok := w.database.GetMacro(id)
	if !ok && id.Pkg == w.pkg {
		m, ok = w.store.Macros.GetItem(id.Rel)
	}
	if !ok {
		return false, false
	}
	if m.DeclKind != item.MacroDeclarative {
		return false, true // procedural/attribute/derive: recognized, never executed (§9)
	}
	if w.reparser == nil {
		return false, false
	}

	file, ok, err := macroexpand.Expand(m, node.Tokens, w.reparser)
	if err != nil {
		w.diags.Errorf(w.pkg.String(), posOf(node.Span), "macro expansion failed: %v", err)
		return false, false
	}
	if !ok {
		return false, false
	}
	w.enqueueModuleItems(scope, file.Items)
	return true, false
}
