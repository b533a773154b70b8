package contract

import (
	"context"

	statex "github.com/kritsada-w/collectra/agent/state"
)

// PolicyOracle is the only boundary the core crosses to reach a
// text-generation backend. Model and temperature are bound at construction;
// the core never sees provider configuration.
type PolicyOracle interface {
	// GenerateStructured returns raw model output expected to contain one
	// JSON object. Callers repair and validate it.
	GenerateStructured(ctx context.Context, systemPrompt, userPayload string) (string, error)
	// GenerateText returns one free-form message.
	GenerateText(ctx context.Context, systemPrompt, userPayload string) (string, error)
}

// GateEvaluator decides once per turn whether the active strategy remains
// fit and extracts newly observed facts. Implementations never fail: on any
// oracle or schema problem they fail closed toward replanning.
type GateEvaluator interface {
	Evaluate(ctx context.Context, card statex.StrategyCard, mem statex.MemoryState, dialogue []statex.DialogueTurn, historySummary string) GateDecision
}

// StrategyEngine produces a replacement StrategyCard. Implementations never
// fail: on any oracle or schema problem they fall back to the static
// stage-indexed catalog.
type StrategyEngine interface {
	Regenerate(ctx context.Context, mem statex.MemoryState, gate GateDecision, dialogue []statex.DialogueTurn, historySummary string) statex.StrategyCard
	// EnsureCard bootstraps or repairs the active card so its stage always
	// matches memory before the gate runs.
	EnsureCard(mem statex.MemoryState, prior *statex.StrategyCard) statex.StrategyCard
}

// FallbackReply is the sentinel assistant message used when reply
// generation fails. The turn still appends exactly one assistant message.
const FallbackReply = "Sorry, we hit a temporary issue on our side. Could you repeat that in a moment?"

// ResponseGenerator produces exactly one outbound message. Stateless; on
// oracle failure it returns a sentinel reply instead of an error so the
// dialogue-length invariant holds.
type ResponseGenerator interface {
	Generate(ctx context.Context, card statex.StrategyCard, mem statex.MemoryState, dialogue []statex.DialogueTurn, micro MicroEdits, historySummary string) string
}

// HistoryIngestor turns raw prior-period records into a bootstrap digest.
// Failures degrade to an empty digest and never block session start.
type HistoryIngestor interface {
	Summarize(ctx context.Context, raw string) HistoryDigest
}

// HandoffNotifier receives the terminal HANDOFF signal. Advisory: errors
// are logged by the orchestrator and never affect the turn.
type HandoffNotifier interface {
	NotifyHandoff(ctx context.Context, ev HandoffEvent) error
}
