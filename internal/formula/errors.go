package formula

import (
	"errors"
	"fmt"
)

// ErrEvaluation is matched by every error the evaluator returns.
var ErrEvaluation = errors.New("formula evaluation failed")

// EvaluationError describes why an expression could not be parsed or evaluated.
type EvaluationError struct {
	Expression string
	Reason     string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %s (expression %q)", ErrEvaluation, e.Reason, e.Expression)
}

// Unwrap lets errors.Is(err, ErrEvaluation) match.
func (e *EvaluationError) Unwrap() error {
	return ErrEvaluation
}

func newError(expr, format string, args ...interface{}) error {
	return &EvaluationError{Expression: expr, Reason: fmt.Sprintf(format, args...)}
}
