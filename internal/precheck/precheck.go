// Package precheck wraps the external build-tool precondition check
// (spec §6): before walking, an external tool is invoked to verify the
// source tree builds. Its exit status gates the walker; the only
// contract is "exited successfully" or "failed with a diagnostic
// string".
package precheck

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/cockroachdb/errors"
)

// Checker runs the source-tree precondition check.
type Checker interface {
	Check(ctx context.Context, sourceRoot string) error
}

// Exec invokes an external command as the precondition check; Args is run
// with sourceRoot appended as its final argument.
type Exec struct {
	Command string
	Args    []string
}

// Check runs the configured command against sourceRoot, returning an
// error carrying the command's combined output when it exits non-zero.
func (e Exec) Check(ctx context.Context, sourceRoot string) error {
	args := append(append([]string{}, e.Args...), sourceRoot)
	cmd := exec.CommandContext(ctx, e.Command, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "precondition check failed: %s", out.String())
	}
	return nil
}

// AlwaysPass is a Checker that never fails, for tests and for
// config.SkipPrecheck.
type AlwaysPass struct{}

func (AlwaysPass) Check(context.Context, string) error { return nil }
