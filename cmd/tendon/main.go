// Command tendon drives one resolve run from the command line: load
// config, assemble a package graph for a single root package, run the
// fixed point, and report diagnostics — mirroring the thin
// cobra-over-library shape of encr.dev/cli/cmd/encore.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tendon.dev/internal/config"
	"tendon.dev/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "tendon",
	Short: "tendon resolves names and expands macros across a package tree",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("tendon: %v", err)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		telemetry.SetLevel(lvl)
	}
	return cfg
}

