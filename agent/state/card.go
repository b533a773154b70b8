package state

import "strings"

// PressureLevel is the card's overall firmness. It rises monotonically with
// stage severity.
type PressureLevel string

const (
	PressurePolite     PressureLevel = "polite"
	PressurePoliteFirm PressureLevel = "polite_firm"
	PressureFirm       PressureLevel = "firm"
)

func (p PressureLevel) Valid() bool {
	switch p {
	case PressurePolite, PressurePoliteFirm, PressureFirm:
		return true
	}
	return false
}

// StrategyCard is the active negotiation plan for one customer at a point
// in time. The strategy engine replaces it wholesale; nothing patches it in
// place. Its stage must equal the memory stage at the end of every turn.
type StrategyCard struct {
	StrategyID               string          `json:"strategy_id"`
	Stage                    Stage           `json:"stage"`
	TodayKPI                 []string        `json:"today_kpi"`
	PressureLevel            PressureLevel   `json:"pressure_level"`
	AllowedActions           []string        `json:"allowed_actions"`
	Guardrails               []string        `json:"guardrails"`
	EscalationActionsAllowed map[string]bool `json:"escalation_actions_allowed,omitempty"`
	Params                   map[string]any  `json:"params,omitempty"`
	Notes                    string          `json:"notes,omitempty"`
}

// Validate reports whether the card is usable as an active strategy.
func (c StrategyCard) Validate() error {
	if strings.TrimSpace(c.StrategyID) == "" {
		return ErrCardInvalid
	}
	if !c.Stage.Valid() {
		return ErrCardInvalid
	}
	if !c.PressureLevel.Valid() {
		return ErrCardInvalid
	}
	if len(c.TodayKPI) == 0 {
		return ErrCardInvalid
	}
	return nil
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (c StrategyCard) Clone() StrategyCard {
	out := c
	out.TodayKPI = append([]string(nil), c.TodayKPI...)
	out.AllowedActions = append([]string(nil), c.AllowedActions...)
	out.Guardrails = append([]string(nil), c.Guardrails...)
	if c.EscalationActionsAllowed != nil {
		out.EscalationActionsAllowed = make(map[string]bool, len(c.EscalationActionsAllowed))
		for k, v := range c.EscalationActionsAllowed {
			out.EscalationActionsAllowed[k] = v
		}
	}
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return out
}
