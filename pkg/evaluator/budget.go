package evaluator

import (
	"fmt"

	"github.com/thomasrohde/biglisp/go/pkg/diagnostics"
)

const (
	// DefaultMaxDepth bounds nested evaluation frames when Budget.MaxDepth is unset.
	DefaultMaxDepth = 10000
	// DefaultWhileLimit bounds while loops when Budget.MaxIterations is unset.
	DefaultWhileLimit = 1_000_000
)

// Budget holds the resource limits for an evaluation.
// Zero fields fall back to defaults: MaxDepth to DefaultMaxDepth,
// MaxIterations to unlimited (except while) and TimeMs to no deadline.
type Budget struct {
	MaxDepth      int
	MaxIterations int64
	TimeMs        int64
}

// Stats records resource consumption during execution.
type Stats struct {
	Calls      int64 `json:"calls"`
	Iterations int64 `json:"iterations"`
	MaxDepth   int   `json:"maxDepth"`
}

func (b Budget) maxDepth() int {
	if b.MaxDepth > 0 {
		return b.MaxDepth
	}
	return DefaultMaxDepth
}

func (ev *evaluator) checkIterationBudget(form string, loopCount int64) *EvalError {
	if ev.budget.MaxIterations > 0 {
		if ev.stats.Iterations >= ev.budget.MaxIterations {
			return &EvalError{
				Code:    diagnostics.EBudget,
				Message: fmt.Sprintf("iteration budget exceeded (max %d)", ev.budget.MaxIterations),
			}
		}
		return nil
	}
	if form == "while" && loopCount >= DefaultWhileLimit {
		return &EvalError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("while exceeded %d iterations", DefaultWhileLimit),
		}
	}
	return nil
}
