// Package macroexpand implements declarative (macro_rules!-style) macro
// application (C7/§4.4): pattern matching against an invocation's token
// sequence, capture substitution respecting repetition, and handing the
// substituted tokens back to a Reparser to become a fresh item list.
package macroexpand

import (
	"strings"

	"tendon.dev/pkg/item"
	"tendon.dev/pkg/itemtree"
)

// Reparser re-parses a substituted token sequence using the same grammar
// a source file's item list uses. It is supplied by the (external)
// source parser; this package only produces the token sequence.
type Reparser interface {
	Reparse(tokens []string) (*itemtree.File, error)
}

// capture-repetition tokens are written "$name..." in a pattern or
// template, matching "zero or more" the way macro_rules! uses $(...)* —
// flattened here to a single repeated placeholder since patterns are flat
// token sequences rather than nested token trees.
const repetitionSuffix = "..."

// Match attempts to match invocation against pattern, binding named
// captures. A plain "$name" captures exactly one token; "$name..."
// captures every token up to the next literal token in the pattern (or to
// the end), giving that capture a repetition depth of len(captures[name]).
func Match(pattern, invocation []string) (map[string][]string, bool) {
	captures := make(map[string][]string)
	pi, ii := 0, 0
	for pi < len(pattern) {
		tok := pattern[pi]
		if !strings.HasPrefix(tok, "$") {
			if ii >= len(invocation) || invocation[ii] != tok {
				return nil, false
			}
			pi++
			ii++
			continue
		}

		name := strings.TrimPrefix(tok, "$")
		if strings.HasSuffix(name, repetitionSuffix) {
			name = strings.TrimSuffix(name, repetitionSuffix)
			var stop string
			if pi+1 < len(pattern) {
				stop = pattern[pi+1]
			}
			for ii < len(invocation) && (stop == "" || invocation[ii] != stop) {
				captures[name] = append(captures[name], invocation[ii])
				ii++
			}
		} else {
			if ii >= len(invocation) {
				return nil, false
			}
			captures[name] = append(captures[name], invocation[ii])
			ii++
		}
		pi++
	}
	if ii != len(invocation) {
		return nil, false
	}
	return captures, true
}

// Substitute expands template against previously bound captures. An
// unresolved non-repetition placeholder is left as-is (fail-soft, rather
// than aborting the whole expansion).
func Substitute(template []string, captures map[string][]string) []string {
	out := make([]string, 0, len(template))
	for _, tok := range template {
		if !strings.HasPrefix(tok, "$") {
			out = append(out, tok)
			continue
		}
		name := strings.TrimPrefix(tok, "$")
		if strings.HasSuffix(name, repetitionSuffix) {
			name = strings.TrimSuffix(name, repetitionSuffix)
			out = append(out, captures[name]...)
			continue
		}
		if vals, ok := captures[name]; ok && len(vals) > 0 {
			out = append(out, vals[0])
		} else {
			out = append(out, tok)
		}
	}
	return out
}

// Apply picks the first rule of m whose pattern matches invocation,
// substitutes captures into its template, and returns the resulting
// token sequence. Reports false if no rule matches.
func Apply(m *item.Macro, invocation []string) ([]string, bool) {
	for _, rule := range m.Rules {
		if captures, ok := Match(rule.Pattern, invocation); ok {
			return Substitute(rule.Template, captures), true
		}
	}
	return nil, false
}

// Expand applies m to invocation and reparses the result into an item
// list via r, the full step described in §4.4.
func Expand(m *item.Macro, invocation []string, r Reparser) (*itemtree.File, bool, error) {
	tokens, ok := Apply(m, invocation)
	if !ok {
		return nil, false, nil
	}
	file, err := r.Reparse(tokens)
	if err != nil {
		return nil, false, err
	}
	return file, true, nil
}
