package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	"github.com/rs/zerolog/log"
)

// NotifyHandoff publishes the HANDOFF signal to the routing collaborator.
// Delivery is advisory: a failed publish is logged and the turn finishes
// normally, because the customer already has a reply pending.
func NotifyHandoff(ctx context.Context, st *GraphState, notifier contractx.HandoffNotifier) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	if st.Gate.Decision != contractx.DecisionHandoff {
		return st, nil
	}

	st.HandoffSignaled = true
	ev := contractx.HandoffEvent{
		CustomerID: st.CustomerID,
		Stage:      string(st.Session.Memory.Stage),
		Reason:     st.Gate.DecisionReason,
		RiskFlags:  append([]string(nil), st.Gate.RiskFlags...),
		At:         st.Now,
	}
	if err := notifier.NotifyHandoff(ctx, ev); err != nil {
		log.Warn().Err(err).Str("customer_id", st.CustomerID).Msg("handoff notification failed")
	}
	return st, nil
}
