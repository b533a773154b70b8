package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
)

// ReplanStrategy replaces the active card after an ESCALATE_TO_META
// decision. The engine never fails, so the turn always continues with a
// card whose stage matches post-merge memory.
func ReplanStrategy(ctx context.Context, st *GraphState, engine contractx.StrategyEngine) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	card := engine.Regenerate(ctx, st.Session.Memory, st.Gate, st.Session.Dialogue, st.Session.Memory.HistorySummary)
	st.Session.Strategy = &card
	st.Card = card
	st.MetaFired = true
	return st, nil
}
