package contract

import (
	"time"

	statex "github.com/kritsada-w/collectra/agent/state"
)

type AgentRole string

const (
	RoleCritic    AgentRole = "critic"
	RoleMeta      AgentRole = "meta"
	RoleExecutor  AgentRole = "executor"
	RoleHistorian AgentRole = "historian"
)

// Decision is the gate verdict for one turn.
type Decision string

const (
	DecisionContinue       Decision = "CONTINUE"
	DecisionAdaptInPlace   Decision = "ADAPT_WITHIN_STRATEGY"
	DecisionEscalateToMeta Decision = "ESCALATE_TO_META"
	DecisionHandoff        Decision = "HANDOFF"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionContinue, DecisionAdaptInPlace, DecisionEscalateToMeta, DecisionHandoff:
		return true
	}
	return false
}

// Reason codes the critic is expected to emit. The wrapper in agent/critic
// keys counter enforcement off these values.
const (
	ReasonCriticFailed      = "critic_failed"
	ReasonDeadLoopDetected  = "dead_loop_detected"
	ReasonIntentShift       = "intent_shift_detected"
	ReasonPromiseBroken     = "promise_broken_time_passed"
	ReasonGoalUnachievable  = "strategy_goal_unachievable"
	ReasonStageShiftRealign = "stage_shift_realign"
	ReasonComplianceHandoff = "compliance_handoff"
)

type AskStyle string

const (
	AskOpen         AskStyle = "open"
	AskForcedChoice AskStyle = "forced_choice"
	AskBinary       AskStyle = "binary"
)

type ConfirmationFormat string

const (
	ConfirmNone            ConfirmationFormat = "none"
	ConfirmAmountTimeToday ConfirmationFormat = "amount_time_today"
	ConfirmReplyYesNo      ConfirmationFormat = "reply_yes_no"
)

// MicroEdits are phrasing hints the critic hands the executor without
// triggering a strategy rewrite.
type MicroEdits struct {
	AskStyle           AskStyle             `json:"ask_style,omitempty"`
	ConfirmationFormat ConfirmationFormat   `json:"confirmation_format,omitempty"`
	Tone               statex.PressureLevel `json:"tone,omitempty"`
	Language           string               `json:"language,omitempty"`
}

// DefaultMicroEdits mirrors the schema defaults applied when the critic
// omits the block or fails outright.
func DefaultMicroEdits() MicroEdits {
	return MicroEdits{
		AskStyle:           AskOpen,
		ConfirmationFormat: ConfirmNone,
		Tone:               statex.PressurePolite,
		Language:           "en",
	}
}

// GateDecision is the structured output of one critic evaluation. It is
// ephemeral: only the latest value is kept on the session.
type GateDecision struct {
	Decision       Decision           `json:"decision"`
	DecisionReason string             `json:"decision_reason"`
	ReasonCodes    []string           `json:"reason_codes,omitempty"`
	ProgressEvents []string           `json:"progress_events,omitempty"`
	MissingSlots   []string           `json:"missing_slots,omitempty"`
	MicroEdits     MicroEdits         `json:"micro_edits_for_executor"`
	MemoryWrite    statex.MemoryPatch `json:"memory_write"`
	RiskFlags      []string           `json:"risk_flags,omitempty"`
}

func (g GateDecision) HasReasonCode(code string) bool {
	for _, c := range g.ReasonCodes {
		if c == code {
			return true
		}
	}
	return false
}

// HistoryDigest is the one-shot bootstrap summary of prior-period records.
type HistoryDigest struct {
	Summary        string `json:"summary"`
	BrokenPromises int    `json:"broken_promises"`
	ReasonCategory string `json:"reason_category,omitempty"`
	AbilityScore   string `json:"ability_score,omitempty"`
	ReasonDetail   string `json:"reason_detail,omitempty"`
}

// TurnTelemetry is the advisory per-turn trace. It never feeds back into
// later turns.
type TurnTelemetry struct {
	TurnID          string    `json:"turn_id"`
	CustomerID      string    `json:"customer_id"`
	Decision        Decision  `json:"decision"`
	MetaFired       bool      `json:"meta_fired"`
	StageBefore     string    `json:"stage_before"`
	StageAfter      string    `json:"stage_after"`
	OldStrategyID   string    `json:"old_strategy_id,omitempty"`
	NewStrategyID   string    `json:"new_strategy_id,omitempty"`
	StrategyChanged bool      `json:"strategy_changed"`
	HandoffSignaled bool      `json:"handoff_signaled"`
	ExecutorFailed  bool      `json:"executor_failed"`
	At              time.Time `json:"at"`
}

// HandoffEvent is published to the external routing collaborator when the
// gate decides HANDOFF. Automated messaging for the customer should stop
// until a human picks it up.
type HandoffEvent struct {
	CustomerID string    `json:"customer_id"`
	Stage      string    `json:"stage"`
	Reason     string    `json:"reason"`
	RiskFlags  []string  `json:"risk_flags,omitempty"`
	At         time.Time `json:"at"`
}
