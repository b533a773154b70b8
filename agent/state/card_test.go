package state

import (
	"errors"
	"testing"
)

func validCard() StrategyCard {
	return StrategyCard{
		StrategyID:     "stage2_light_pressure",
		Stage:          Stage2,
		TodayKPI:       []string{"step1_ask_full_payment_today_firmly"},
		PressureLevel:  PressurePoliteFirm,
		AllowedActions: []string{"ask_pay_today"},
	}
}

func TestStrategyCardValidate(t *testing.T) {
	t.Parallel()

	if err := validCard().Validate(); err != nil {
		t.Fatalf("valid card rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*StrategyCard)
	}{
		{name: "missing id", mutate: func(c *StrategyCard) { c.StrategyID = " " }},
		{name: "bad stage", mutate: func(c *StrategyCard) { c.Stage = "Stage9" }},
		{name: "bad pressure", mutate: func(c *StrategyCard) { c.PressureLevel = "brutal" }},
		{name: "no kpi", mutate: func(c *StrategyCard) { c.TodayKPI = nil }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := validCard()
			tc.mutate(&card)
			if err := card.Validate(); !errors.Is(err, ErrCardInvalid) {
				t.Fatalf("expected ErrCardInvalid, got %v", err)
			}
		})
	}
}

func TestStrategyCardCloneIsDeep(t *testing.T) {
	t.Parallel()

	card := validCard()
	card.Guardrails = []string{"no_threats"}
	card.EscalationActionsAllowed = map[string]bool{"contact_emergency": false}
	card.Params = map[string]any{"allow_partial": true}

	cp := card.Clone()
	cp.TodayKPI[0] = "mutated"
	cp.Guardrails[0] = "mutated"
	cp.EscalationActionsAllowed["contact_emergency"] = true
	cp.Params["allow_partial"] = false

	if card.TodayKPI[0] != "step1_ask_full_payment_today_firmly" {
		t.Fatalf("kpi aliased: %v", card.TodayKPI)
	}
	if card.Guardrails[0] != "no_threats" {
		t.Fatalf("guardrails aliased: %v", card.Guardrails)
	}
	if card.EscalationActionsAllowed["contact_emergency"] {
		t.Fatal("escalation map aliased")
	}
	if card.Params["allow_partial"] != true {
		t.Fatalf("params aliased: %v", card.Params)
	}
}
