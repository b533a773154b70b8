package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
)

// EvaluateGate runs the per-turn fitness check. The evaluator fails
// closed, so the decision that lands here is always valid.
func EvaluateGate(ctx context.Context, st *GraphState, gate contractx.GateEvaluator) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	st.Gate = gate.Evaluate(ctx, st.Card, st.Session.Memory, st.Session.Dialogue, st.Session.Memory.HistorySummary)
	return st, nil
}
