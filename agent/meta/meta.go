package meta

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

// Engine regenerates strategy cards when the gate escalates a turn. Any
// failure along the oracle path degrades to the stage catalog so a turn
// always leaves with a usable card.
type Engine struct {
	oracle       contractx.PolicyOracle
	systemPrompt string
}

func New(oracle contractx.PolicyOracle, systemPrompt string) (*Engine, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: meta engine requires an oracle", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: meta system prompt is empty", contractx.ErrPromptMissing)
	}
	return &Engine{oracle: oracle, systemPrompt: systemPrompt}, nil
}

type replanPayload struct {
	MemoryState    statex.MemoryState     `json:"memory_state"`
	GateDecision   contractx.GateDecision `json:"gate_decision"`
	HistorySummary string                 `json:"history_summary,omitempty"`
	RecentDialogue []statex.DialogueTurn  `json:"recent_dialogue"`
}

// Regenerate produces a fresh strategy card for the memory's current
// stage. The returned card is always aligned to mem.Stage: a model that
// answers with a different stage gets overridden and the override is
// recorded in the card notes.
func (e *Engine) Regenerate(ctx context.Context, mem statex.MemoryState, gate contractx.GateDecision, dialogue []statex.DialogueTurn, historySummary string) statex.StrategyCard {
	payload := replanPayload{
		MemoryState:    mem,
		GateDecision:   gate,
		HistorySummary: historySummary,
		RecentDialogue: statex.TailTurns(dialogue),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("meta: payload marshal failed, using catalog card")
		return CatalogCard(mem)
	}

	out, err := e.oracle.GenerateStructured(ctx, e.systemPrompt, string(raw))
	if err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("meta: oracle invoke failed, using catalog card")
		return CatalogCard(mem)
	}

	var card statex.StrategyCard
	if err := jsonx.DecodeObject(out, &card); err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("meta: card decode failed, using catalog card")
		return CatalogCard(mem)
	}
	if err := card.Validate(); err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Str("strategy_id", card.StrategyID).Msg("meta: card rejected, using catalog card")
		return CatalogCard(mem)
	}
	return alignStage(card, mem.Stage)
}

// EnsureCard returns the prior card when it is still valid for the
// memory's stage, otherwise a catalog card for that stage.
func (e *Engine) EnsureCard(mem statex.MemoryState, prior *statex.StrategyCard) statex.StrategyCard {
	if prior != nil && prior.Validate() == nil && prior.Stage == mem.Stage {
		return prior.Clone()
	}
	return CatalogCard(mem)
}

func alignStage(card statex.StrategyCard, want statex.Stage) statex.StrategyCard {
	if card.Stage == want {
		return card
	}
	marker := fmt.Sprintf("stage forced %s -> %s to match memory", card.Stage, want)
	card.Stage = want
	if card.Notes == "" {
		card.Notes = marker
	} else {
		card.Notes = card.Notes + " | " + marker
	}
	return card
}
