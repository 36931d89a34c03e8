package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tendon.dev/internal/precheck"
	"tendon.dev/internal/serialize"
	"tendon.dev/internal/stdsource"
	"tendon.dev/pkg/ident"
	"tendon.dev/pkg/pkggraph"
	"tendon.dev/pkg/tendon"
)

type resolveParams struct {
	ConfigPath   string
	SourceDir    string
	PackageName  string
	PackageVer   string
	StdlibSource string
	DumpPath     string
	PrecheckCmd  string
	PrecheckArgs []string
}

func init() {
	p := resolveParams{}
	cmd := &cobra.Command{
		Use:   "resolve SOURCE_DIR",
		Short: "resolve names and expand macros across a single root package",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			p.SourceDir = args[0]
			runResolve(p)
		},
	}
	cmd.Flags().StringVar(&p.ConfigPath, "config", "tendon.toml", "path to an optional tendon.toml")
	cmd.Flags().StringVar(&p.PackageName, "package", "root", "name of the root package")
	cmd.Flags().StringVar(&p.PackageVer, "package-version", "0.1.0", "version of the root package")
	cmd.Flags().StringVar(&p.StdlibSource, "stdlib-source", "", "path to inject core/alloc/std from, if set")
	cmd.Flags().StringVar(&p.DumpPath, "dump", "", "write the resolved root package as YAML to this path")
	cmd.Flags().StringVar(&p.PrecheckCmd, "precheck-cmd", "", "external command that verifies the source tree builds; empty disables the precondition check")
	cmd.Flags().StringSliceVar(&p.PrecheckArgs, "precheck-arg", nil, "extra argument to pass to --precheck-cmd (repeatable)")
	rootCmd.AddCommand(cmd)
}

// runResolve assembles a single-package graph rooted at p.SourceDir and
// runs the fixed point over it. There is no source parser or bindings
// generator wired into this binary — those are the external
// collaborators of spec.md §6 — so this command only exercises the core
// with whatever FileLoader/Reparser a caller of pkg/tendon.Run supplies
// in-process; from the command line it seals an empty root package (and
// empty core/alloc/std packages when stdlib injection is on), prints the
// run's diagnostics, and exits non-zero if the precondition check fails.
func runResolve(p resolveParams) {
	cfg := loadConfig(p.ConfigPath)
	if p.StdlibSource == "" {
		p.StdlibSource = cfg.StdlibSource
	}

	root := pkggraph.PackageData{
		ID:              ident.PackageID{Name: p.PackageName, Version: p.PackageVer},
		Dependencies:    map[string]ident.PackageID{},
		EntrySourceFile: filepath.Join(p.SourceDir, "lib.rs"),
		LanguageEdition: pkggraph.Edition2018,
	}
	if p.StdlibSource != "" {
		root.Dependencies[stdsource.Std] = ident.PackageID{Name: stdsource.Std, Version: "0.0.0"}
	}

	graph := pkggraph.NewStaticGraph(root)
	if p.StdlibSource != "" {
		stdsource.Inject(graph, p.StdlibSource)
	}

	checker := precheck.Checker(precheck.AlwaysPass{})
	if !cfg.SkipPrecheck && p.PrecheckCmd != "" {
		checker = precheck.Exec{Command: p.PrecheckCmd, Args: p.PrecheckArgs}
	}

	result, err := tendon.Run(context.Background(), graph, tendon.Options{
		Precheck:            checker,
		SourceDir:           p.SourceDir,
		MaxParallelPackages: cfg.MaxParallelPackages,
	})
	if err != nil {
		fatalf("tendon: %v", err)
	}

	for _, e := range result.Diags.Entries() {
		fmt.Fprintln(os.Stderr, e.Error())
	}

	if p.DumpPath != "" {
		ps, ok := result.Database.Package(root.ID)
		if !ok {
			fatalf("tendon: root package was not sealed")
		}
		data, err := serialize.Marshal(serialize.Dump(ps))
		if err != nil {
			fatalf("tendon: %v", err)
		}
		if err := os.WriteFile(p.DumpPath, data, 0o644); err != nil {
			fatalf("tendon: %v", err)
		}
	}
}
