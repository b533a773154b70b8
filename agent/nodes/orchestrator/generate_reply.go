package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
)

// GenerateReply asks the executor for the turn's single outbound message.
// The executor degrades to the fallback sentinel instead of erroring, so
// the dialogue log always grows by exactly one assistant turn.
func GenerateReply(ctx context.Context, st *GraphState, gen contractx.ResponseGenerator) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	st.Reply = gen.Generate(ctx, st.Card, st.Session.Memory, st.Session.Dialogue, st.Gate.MicroEdits, st.Session.Memory.HistorySummary)
	st.ExecutorFailed = st.Reply == contractx.FallbackReply
	return st, nil
}
