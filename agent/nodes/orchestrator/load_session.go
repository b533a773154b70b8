package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	sessionx "github.com/kritsada-w/collectra/agent/session"
	statex "github.com/kritsada-w/collectra/agent/state"
	"github.com/rs/zerolog/log"
)

// LoadOrCreateSession resolves the customer's durable session, appends the
// inbound user turn, and snapshots the pre-merge stage. Every later stage
// comparison in the turn is made against StageBefore.
func LoadOrCreateSession(ctx context.Context, st *GraphState, store sessionx.Store, w statex.Weights) (*GraphState, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, st.CustomerID)
	switch {
	case errors.Is(err, sessionx.ErrNotFound):
		sess, err = sessionx.New(st.CustomerID, st.Now)
		if err != nil {
			return nil, err
		}
		log.Info().Str("customer_id", st.CustomerID).Msg("starting new negotiation session")
	case err != nil:
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess.Memory.RefreshDerived(w)
	sess.AppendTurn(statex.RoleUser, st.Text)

	st.Session = sess
	st.StageBefore = sess.Memory.Stage
	return st, nil
}
