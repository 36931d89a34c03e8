// Package walker is the fixed-point driver (C6): parse file -> lower ->
// insert -> resolve imports -> expand macros -> repeat, for one package.
// It owns the work list, the back-link graph, and the textual scopes, and
// seals its package store into the database when the fixed point settles.
package walker

import (
	"go/token"

	"tendon.dev/internal/db"
	"tendon.dev/internal/diag"
	"tendon.dev/internal/lower"
	"tendon.dev/internal/macroexpand"
	"tendon.dev/internal/scope"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
	"tendon.dev/pkg/pkggraph"
)

// FileLoader resolves a module-by-reference declaration to its file's
// item list — the parser's job; the walker never reads source itself
// except through this interface.
type FileLoader interface {
	LoadModule(filePath string) (*itemtree.File, error)
}

// Config configures one package's walk.
type Config struct {
	Database  *db.Database
	Package   pkggraph.PackageData
	Root      *itemtree.File
	Loader    FileLoader
	Reparser  macroexpand.Reparser
	Diags     *diag.List
	SourceDir string // directory entry_source_file lives in; not read by the walker, which asks Loader for a module file by its bare name (name.rs) or its #[path] override
}

type pendingNode struct {
	scope ident.RelPath
	node  itemtree.Node
}

type unexpandedItem struct {
	scope  ident.RelPath
	path   []string
	tokens []string
	span   item.Span
	proc   bool // true if this is a procedural/attribute/derive reference, never executed
}

type importJob struct {
	scope ident.RelPath
	path  []string
	glob  bool
	pub   bool   // node.PubKeyword, preserved across retries
	name  string // rename target; for glob imports this is unused
	span  item.Span
}

// Walker drives one package's resolution fixed point. It is
// single-threaded cooperative per §5: the outer loop is sequential over
// owned-mutably state. Multiple Walkers may run concurrently across
// packages, sharing only the Database.
type Walker struct {
	pkg       ident.PackageID
	store     *db.PackageStore
	database  *db.Database
	deps      map[string]ident.PackageID // import identifier -> dependency package id, including root-only extern renames
	diags     *diag.List
	loader    FileLoader
	reparser  macroexpand.Reparser

	pending    []pendingNode
	workList   []importJob
	unexpanded []unexpandedItem

	scopes  map[string]*scope.InProgress
	textual map[string]*scope.Textual

	preludeMacros map[string]ident.Identity

	progress bool
}

// New constructs a Walker for cfg.Package, with the root file's items
// queued at the package root scope.
func New(cfg Config) *Walker {
	deps := make(map[string]ident.PackageID, len(cfg.Package.Dependencies))
	for k, v := range cfg.Package.Dependencies {
		deps[k] = v
	}

	w := &Walker{
		pkg:           cfg.Package.ID,
		store:         cfg.Database.NewPackage(cfg.Package.ID, deps),
		database:      cfg.Database,
		deps:          deps,
		diags:         cfg.Diags,
		loader:        cfg.Loader,
		reparser:      cfg.Reparser,
		scopes:        make(map[string]*scope.InProgress),
		textual:       make(map[string]*scope.Textual),
		preludeMacros: make(map[string]ident.Identity),
	}

	w.textual[""] = scope.NewTextual()
	w.enqueueModuleItems(ident.RelPath{}, cfg.Root.Items)
	return w
}

func (w *Walker) scopeFor(rel ident.RelPath) *scope.InProgress {
	key := rel.String()
	si, ok := w.scopes[key]
	if !ok {
		si = scope.New()
		w.scopes[key] = si
	}
	return si
}

func (w *Walker) textualFor(rel ident.RelPath) *scope.Textual {
	key := rel.String()
	t, ok := w.textual[key]
	if !ok {
		t = scope.NewTextual()
		w.textual[key] = t
	}
	return t
}

func (w *Walker) enqueueModuleItems(scope ident.RelPath, items []itemtree.Node) {
	for _, n := range items {
		w.pending = append(w.pending, pendingNode{scope: scope, node: n})
	}
}

// Run executes the outer fixed point described in §4.2 and seals the
// resulting store into the database. Residual unexpanded items are
// reported as warnings, not errors, per §3/§9.
func (w *Walker) Run() (*db.PackageStore, error) {
	for {
		outerProgress := false

		w.progress = false
		w.processNames()
		outerProgress = outerProgress || w.progress

		for {
			w.progress = false
			w.processWorkList()
			if !w.progress {
				break
			}
			outerProgress = true
		}

		w.progress = false
		w.expandMacros()
		outerProgress = outerProgress || w.progress

		if !outerProgress {
			break
		}
	}

	for _, u := range w.unexpanded {
		reason := "unresolved macro invocation"
		if u.proc {
			reason = "procedural/attribute/derive macro not executed"
		}
		w.diags.Warnf(w.pkg.String(), u.span.Pos, "%s: %s", reason, joinPath(u.path))
	}

	if err := w.database.Seal(w.store); err != nil {
		return nil, err
	}
	return w.store, nil
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}

func posOf(span item.Span) token.Pos { return span.Pos }
