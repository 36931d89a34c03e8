// Package tendon is the top-level orchestrator: it walks every
// package in a graph's dependency order, running each layer's walkers
// concurrently, and returns the resulting database together with the
// diagnostics accumulated across the whole run.
package tendon

import (
	"context"
	"fmt"
	"go/token"

	"golang.org/x/sync/errgroup"

	"tendon.dev/internal/db"
	"tendon.dev/internal/diag"
	"tendon.dev/internal/macroexpand"
	"tendon.dev/internal/precheck"
	"tendon.dev/internal/telemetry"
	"tendon.dev/internal/walker"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/itemtree"
	"tendon.dev/pkg/pkggraph"
)

// Options configures a run. Loader and Reparser are the external
// collaborators spec.md §6 leaves out of scope; Precheck defaults to a
// no-op when nil.
type Options struct {
	Precheck  precheck.Checker
	Loader    walker.FileLoader
	Reparser  macroexpand.Reparser
	SourceDir string
	// MaxParallelPackages bounds how many packages are walked concurrently
	// within a single dependency layer; 0 means unbounded (errgroup's
	// default, effectively GOMAXPROCS-limited by the runtime scheduler).
	MaxParallelPackages int
}

// Result is the outcome of a full run: the sealed database plus whatever
// diagnostics the walk produced, successful or not.
type Result struct {
	Database *db.Database
	Diags    *diag.List
}

// Run resolves names and expands macros across every package in graph, in
// dependency order, sealing each into a shared Database. Packages with no
// unresolved dependency between them are walked concurrently, mirroring
// the way the teacher's db.Cluster.Setup fans a service-level operation
// out across an errgroup.
func Run(ctx context.Context, graph pkggraph.Graph, opts Options) (*Result, error) {
	checker := opts.Precheck
	if checker == nil {
		checker = precheck.AlwaysPass{}
	}
	if err := checker.Check(ctx, opts.SourceDir); err != nil {
		return nil, fmt.Errorf("precondition check failed: %w", err)
	}

	order, err := graph.TopoOrder()
	if err != nil {
		return nil, fmt.Errorf("package graph: %w", err)
	}

	database := db.New()
	diags := diag.New(token.NewFileSet())
	log := telemetry.Logger()

	layers := layerByDependency(graph, order)
	for _, layer := range layers {
		g, gctx := errgroup.WithContext(ctx)
		if opts.MaxParallelPackages > 0 {
			g.SetLimit(opts.MaxParallelPackages)
		}
		for _, id := range layer {
			id := id
			g.Go(func() error {
				return walkOne(gctx, database, graph, id, opts, diags)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	log.Info().Int("packages", len(order)).Int("diagnostics", diags.Len()).Msg("resolve run complete")
	return &Result{Database: database, Diags: diags}, nil
}

// walkOne loads a package's root file through opts.Loader, drives its
// Walker to a fixed point, and seals the result. A package-granularity
// bailout (diag.Bailout) is caught here and reported as a diagnostic
// rather than failing the whole run, per spec §7.
func walkOne(ctx context.Context, database *db.Database, graph pkggraph.Graph, id ident.PackageID, opts Options, diags *diag.List) (err error) {
	log := telemetry.NewWalkLogger(id.String())
	log.Debug().Msg("walk starting")

	defer func() {
		if r := recover(); r != nil {
			if pkg, ok := diag.CatchBailout(r); ok {
				diags.Errorf(pkg, token.NoPos, "package walk aborted")
				log.Warn().Msg("walk aborted")
				err = nil // a bailout stops this package only, never the whole run (§7)
				return
			}
		}
	}()

	data, ok := graph.Lookup(id)
	if !ok {
		return fmt.Errorf("package %s: not present in graph", id)
	}

	var root *itemtree.File
	if opts.Loader != nil {
		root, err = opts.Loader.LoadModule(data.EntrySourceFile)
		if err != nil {
			diags.Errorf(id.String(), token.NoPos, "failed to load entry file %s: %v", data.EntrySourceFile, err)
			diags.Bailout(id.String())
		}
	} else {
		root = &itemtree.File{}
	}

	w := walker.New(walker.Config{
		Database:  database,
		Package:   data,
		Root:      root,
		Loader:    opts.Loader,
		Reparser:  opts.Reparser,
		Diags:     diags,
		SourceDir: opts.SourceDir,
	})

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, err := w.Run(); err != nil {
		return fmt.Errorf("package %s: %w", id, err)
	}
	log.Debug().Msg("walk complete")
	return nil
}

// layerByDependency groups order (already a valid topological ordering)
// into layers where every package in a layer depends only on packages in
// earlier layers, so each layer's walkers may run concurrently without
// racing on an unsealed dependency.
func layerByDependency(graph pkggraph.Graph, order []ident.PackageID) [][]ident.PackageID {
	depth := make(map[ident.PackageID]int, len(order))
	for _, id := range order {
		data, ok := graph.Lookup(id)
		if !ok {
			depth[id] = 0
			continue
		}
		max := 0
		for _, dep := range data.Dependencies {
			if d, ok := depth[dep]; ok && d+1 > max {
				max = d + 1
			}
		}
		depth[id] = max
	}

	var layers [][]ident.PackageID
	for _, id := range order {
		d := depth[id]
		for len(layers) <= d {
			layers = append(layers, nil)
		}
		layers[d] = append(layers[d], id)
	}
	return layers
}
