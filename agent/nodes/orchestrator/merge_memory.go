package orchestratornode

import (
	"fmt"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
	"github.com/rs/zerolog/log"
)

// MergeMemory folds the gate's extracted facts into durable memory and
// recomputes the stage. A stage shift caused by the merge forces a
// strategy replan this same turn, overriding whatever the gate decided,
// so the active card can never lag the stage the customer is actually in.
func MergeMemory(st *GraphState, w statex.Weights) (*GraphState, error) {
	if st == nil || st.Session == nil {
		return nil, fmt.Errorf("%w: turn state is incomplete", contractx.ErrValidation)
	}

	mem := statex.Merge(st.Session.Memory, st.Gate.MemoryWrite)
	mem.RefreshDerived(w)
	st.Session.Memory = mem

	if mem.Stage != st.StageBefore {
		log.Info().
			Str("customer_id", st.CustomerID).
			Str("stage_before", string(st.StageBefore)).
			Str("stage_after", string(mem.Stage)).
			Msg("stage shifted mid-turn, forcing strategy replan")
		st.Gate.Decision = contractx.DecisionEscalateToMeta
		if !st.Gate.HasReasonCode(contractx.ReasonStageShiftRealign) {
			st.Gate.ReasonCodes = append(st.Gate.ReasonCodes, contractx.ReasonStageShiftRealign)
		}
	}
	return st, nil
}
