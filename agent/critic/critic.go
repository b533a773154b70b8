// Package critic implements the per-turn strategy-fit gate. It is the only
// component allowed to write facts into customer memory, and it never
// fails: any oracle or schema problem collapses into a conservative
// escalate-to-meta decision.
package critic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
	"github.com/kritsada-w/collectra/pkg/jsonx"
	"github.com/rs/zerolog/log"
)

type Critic struct {
	oracle       contractx.PolicyOracle
	systemPrompt string
}

var _ contractx.GateEvaluator = (*Critic)(nil)

func New(oracle contractx.PolicyOracle, systemPrompt string) (*Critic, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: policy oracle is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: critic prompt", contractx.ErrPromptMissing)
	}
	return &Critic{oracle: oracle, systemPrompt: strings.TrimSpace(systemPrompt)}, nil
}

type gatePayload struct {
	StrategyCard   statex.StrategyCard   `json:"strategy_card"`
	MemoryState    statex.MemoryState    `json:"memory_state"`
	HistorySummary string                `json:"history_summary"`
	RecentDialogue []statex.DialogueTurn `json:"recent_dialogue"`
}

// Evaluate gates one turn. It always returns a usable decision; on any
// failure it fails closed toward replanning with reason_codes containing
// critic_failed and an empty extraction.
func (c *Critic) Evaluate(
	ctx context.Context,
	card statex.StrategyCard,
	mem statex.MemoryState,
	dialogue []statex.DialogueTurn,
	historySummary string,
) contractx.GateDecision {
	payload, err := json.Marshal(gatePayload{
		StrategyCard:   card,
		MemoryState:    mem,
		HistorySummary: historySummary,
		RecentDialogue: statex.TailTurns(dialogue),
	})
	if err != nil {
		return failClosed(fmt.Sprintf("marshal gate payload: %v", err))
	}

	raw, err := c.oracle.GenerateStructured(ctx, c.systemPrompt, string(payload))
	if err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("critic oracle call failed, failing closed")
		return failClosed(truncateReason(err.Error()))
	}

	var decision contractx.GateDecision
	if err := jsonx.DecodeObject(raw, &decision); err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("critic output unparseable, failing closed")
		return failClosed(truncateReason(err.Error()))
	}

	normalize(&decision)
	enforceCounterWrites(&decision, mem)
	return decision
}

// failClosed is the non-throwing failure path: conservative replanning
// under a fresh strategy beats silently continuing under a stale one.
func failClosed(reason string) contractx.GateDecision {
	return contractx.GateDecision{
		Decision:       contractx.DecisionEscalateToMeta,
		DecisionReason: "critic_failed: " + reason,
		ReasonCodes:    []string{contractx.ReasonCriticFailed},
		MicroEdits:     contractx.DefaultMicroEdits(),
	}
}

func normalize(d *contractx.GateDecision) {
	if !d.Decision.Valid() {
		d.Decision = contractx.DecisionEscalateToMeta
		d.ReasonCodes = append(d.ReasonCodes, contractx.ReasonCriticFailed)
		if d.DecisionReason == "" {
			d.DecisionReason = "critic_failed: unknown decision value"
		}
	}

	defaults := contractx.DefaultMicroEdits()
	if d.MicroEdits.AskStyle == "" {
		d.MicroEdits.AskStyle = defaults.AskStyle
	}
	if d.MicroEdits.ConfirmationFormat == "" {
		d.MicroEdits.ConfirmationFormat = defaults.ConfirmationFormat
	}
	if d.MicroEdits.Tone == "" {
		d.MicroEdits.Tone = defaults.Tone
	}
	if d.MicroEdits.Language == "" {
		d.MicroEdits.Language = defaults.Language
	}
}

// enforceCounterWrites backs the prompt's counter obligations with code:
// a dead-loop or broken-promise reason code must move its counter even when
// the model forgot to put the new value into memory_write. Values below the
// current counter are dropped here; merge would clamp them anyway.
func enforceCounterWrites(d *contractx.GateDecision, mem statex.MemoryState) {
	if d.HasReasonCode(contractx.ReasonDeadLoopDetected) {
		if d.MemoryWrite.PaymentRefusals == nil || *d.MemoryWrite.PaymentRefusals <= mem.PaymentRefusals {
			v := mem.PaymentRefusals + 1
			d.MemoryWrite.PaymentRefusals = &v
		}
	}
	if d.HasReasonCode(contractx.ReasonPromiseBroken) {
		if d.MemoryWrite.BrokenPromises == nil || *d.MemoryWrite.BrokenPromises <= mem.BrokenPromises {
			v := mem.BrokenPromises + 1
			d.MemoryWrite.BrokenPromises = &v
		}
	}
}

func truncateReason(s string) string {
	const maxLen = 150
	if len(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
