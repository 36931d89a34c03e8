// Package diag is the concurrency-safe diagnostics list errors and
// warnings are reported through (spec §7): item-granularity errors are
// logged against the item's span and not propagated; package-granularity
// errors stop that package's walk via a Bailout panic, caught by the
// caller one level up.
package diag

import (
	"fmt"
	"go/token"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Severity distinguishes a warning (informational) from an error
// (something was dropped or failed). Neither stops a walk by itself; only
// Bailout does.
type Severity int

const (
	SevWarning Severity = iota
	SevError
)

func (s Severity) String() string {
	if s == SevError {
		return "error"
	}
	return "warning"
}

// Entry is one reported diagnostic.
type Entry struct {
	Severity Severity
	Pos      token.Position
	Package  string
	Msg      string
	Cause    error
}

func (e *Entry) Error() string {
	var b strings.Builder
	if e.Pos.IsValid() || e.Pos.Filename != "" {
		fmt.Fprintf(&b, "%s: ", e.Pos)
	}
	fmt.Fprintf(&b, "%s: %s", e.Severity, e.Msg)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// List is a diagnostics sink shared across one walk run; packages walked
// in parallel each hold a reference to the same List.
type List struct {
	fset *token.FileSet

	mu      sync.Mutex
	entries []*Entry
}

// New constructs a List. fset resolves token.Pos values passed to Warnf,
// Errorf, and Wrap into human-readable positions.
func New(fset *token.FileSet) *List {
	return &List{fset: fset}
}

// Warnf records a warning at pos for package pkg; warnings never bailout.
func (l *List) Warnf(pkg string, pos token.Pos, format string, args ...any) {
	l.add(&Entry{Severity: SevWarning, Package: pkg, Pos: l.position(pos), Msg: fmt.Sprintf(format, args...)})
}

// Errorf records an error at pos for package pkg without bailing out —
// used for item-granularity errors the walker logs and skips (§7).
func (l *List) Errorf(pkg string, pos token.Pos, format string, args ...any) {
	l.add(&Entry{Severity: SevError, Package: pkg, Pos: l.position(pos), Msg: fmt.Sprintf(format, args...)})
}

// Wrap records an error with a causal chain: cause is wrapped with
// cockroachdb/errors and kept as the entry's Cause, so formatting that
// Cause with %+v prints the full chain.
func (l *List) Wrap(pkg string, pos token.Pos, cause error, msg string) {
	l.add(&Entry{
		Severity: SevError,
		Package:  pkg,
		Pos:      l.position(pos),
		Msg:      msg,
		Cause:    errors.Wrap(cause, msg),
	})
}

func (l *List) position(pos token.Pos) token.Position {
	if l.fset == nil || pos == token.NoPos {
		return token.Position{}
	}
	return l.fset.Position(pos)
}

func (l *List) add(e *Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// Entries returns a snapshot of every diagnostic recorded so far.
func (l *List) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of diagnostics recorded.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// FormatErrors renders every diagnostic, one per line.
func (l *List) FormatErrors() string {
	entries := l.Entries()
	if len(entries) == 0 {
		return "no diagnostics"
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// bailout is the panic value a package-granularity Bailout raises; it
// carries the package name so the recovering caller knows which walker
// was abandoned (spec §7: "Errors at package granularity ... stop the
// package but not the database").
type bailout struct {
	pkg string
}

// Bailout aborts the current package's walk. It must be called from
// within a deferred recover in the walker's per-package driver.
func (l *List) Bailout(pkg string) {
	panic(bailout{pkg: pkg})
}

// CatchBailout recovers a Bailout panic, reporting the package name that
// was abandoned. Any other recovered value is re-panicked, matching §9:
// "panics are reserved for invariant violations the walker itself cannot
// introduce".
func CatchBailout(recovered any) (pkg string, ok bool) {
	if recovered == nil {
		return "", false
	}
	if b, ok := recovered.(bailout); ok {
		return b.pkg, true
	}
	panic(recovered)
}
