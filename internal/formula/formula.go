// Package formula evaluates the small arithmetic language used by template
// mappings. Formulas are parsed once into a tree and evaluated with the
// measurement value bound, so no user text is ever re-parsed at quote time.
package formula

import (
	"regexp"
	"strings"
)

var safeExpression = regexp.MustCompile(`^[0-9+\-*/().\s]*$`)

// Evaluate parses and evaluates a plain arithmetic expression made of
// numbers, + - * /, parentheses and whitespace.
func Evaluate(expression string) (float64, error) {
	if !safeExpression.MatchString(expression) {
		return 0, newError(expression, "expression contains unsupported characters")
	}
	root, err := parse(expression, false)
	if err != nil {
		return 0, err
	}
	return root.eval(0)
}

// Formula is a compiled mapping formula referencing the measurement variable.
type Formula struct {
	root   node
	source string
}

// Compile parses a mapping formula. It fails on invalid syntax and on
// formulas that never reference the measurement variable.
func Compile(source string) (*Formula, error) {
	trimmed := strings.TrimSpace(source)
	root, err := parse(trimmed, true)
	if err != nil {
		return nil, err
	}
	if !root.usesVariable() {
		return nil, newError(trimmed, "formula must reference %q", Variable)
	}
	return &Formula{root: root, source: trimmed}, nil
}

// Eval evaluates the formula with the measurement variable bound to m.
func (f *Formula) Eval(m float64) (float64, error) {
	return f.root.eval(m)
}

// String returns the normalized formula source.
func (f *Formula) String() string {
	return f.source
}
