package orchestratornode

import (
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
)

// EnsureStrategy guarantees a valid, stage-aligned card is active before
// the gate runs. First contact and stale cards both land on the catalog.
func EnsureStrategy(st *GraphState, engine contractx.StrategyEngine) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	if st.Session.Strategy != nil {
		st.OldStrategyID = st.Session.Strategy.StrategyID
	}

	card := engine.EnsureCard(st.Session.Memory, st.Session.Strategy)
	st.Session.Strategy = &card
	st.Card = card
	return st, nil
}
