package orchestratornode

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	contractx "github.com/kritsada-w/collectra/agent/contract"
	sessionx "github.com/kritsada-w/collectra/agent/session"
	statex "github.com/kritsada-w/collectra/agent/state"
)

// RecordTurn appends the assistant reply, stamps the turn telemetry onto
// the session, and bumps the version guard.
func RecordTurn(st *GraphState) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	st.Session.AppendTurn(statex.RoleAssistant, st.Reply)

	gate := st.Gate
	st.Session.LastGate = &gate

	st.Telemetry = contractx.TurnTelemetry{
		TurnID:          uuid.NewString(),
		CustomerID:      st.CustomerID,
		Decision:        st.Gate.Decision,
		MetaFired:       st.MetaFired,
		StageBefore:     string(st.StageBefore),
		StageAfter:      string(st.Session.Memory.Stage),
		OldStrategyID:   st.OldStrategyID,
		NewStrategyID:   st.Card.StrategyID,
		StrategyChanged: st.OldStrategyID != st.Card.StrategyID,
		HandoffSignaled: st.HandoffSignaled,
		ExecutorFailed:  st.ExecutorFailed,
		At:              st.Now,
	}
	tel := st.Telemetry
	st.Session.LastTelemetry = &tel

	st.Session.Version++
	st.Session.Touch(st.Now)
	return st, nil
}

// SaveSession persists the completed turn.
func SaveSession(ctx context.Context, st *GraphState, store sessionx.Store) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	if err := store.Save(ctx, st.Session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// FinalizeTurn shapes the graph output.
func FinalizeTurn(st *GraphState) (GraphOutput, error) {
	if st == nil || st.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply:     st.Reply,
		Decision:  st.Gate.Decision,
		Telemetry: st.Telemetry,
	}, nil
}
