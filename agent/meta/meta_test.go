package meta

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
)

type fakeOracle struct {
	out   string
	err   error
	calls int
}

func (f *fakeOracle) GenerateStructured(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeOracle) GenerateText(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return f.GenerateStructured(ctx, systemPrompt, userPayload)
}

func memoryAtStage(t *testing.T, stage statex.Stage) statex.MemoryState {
	t.Helper()
	mem := statex.NewMemoryState("cust-1", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	switch stage {
	case statex.Stage0:
		mem.DPD = -2
	case statex.Stage1:
		mem.DPD = 0
	case statex.Stage2:
		mem.DPD = 1
	case statex.Stage3:
		mem.DPD = 3
	case statex.Stage4:
		mem.DPD = 7
	}
	mem.RefreshDerived(statex.DefaultWeights())
	if mem.Stage != stage {
		t.Fatalf("fixture stage = %s, want %s", mem.Stage, stage)
	}
	return mem
}

func TestCatalogCoversEveryStage(t *testing.T) {
	t.Parallel()

	for _, stage := range []statex.Stage{statex.Stage0, statex.Stage1, statex.Stage2, statex.Stage3, statex.Stage4} {
		mem := memoryAtStage(t, stage)
		card := CatalogCard(mem)
		if err := card.Validate(); err != nil {
			t.Fatalf("stage %s catalog card invalid: %v", stage, err)
		}
		if card.Stage != stage {
			t.Fatalf("stage %s catalog card carries stage %s", stage, card.Stage)
		}
	}
}

func TestCatalogPressureRisesWithStage(t *testing.T) {
	t.Parallel()

	rank := map[statex.PressureLevel]int{
		statex.PressurePolite:     1,
		statex.PressurePoliteFirm: 2,
		statex.PressureFirm:       3,
	}

	prev := 0
	for _, stage := range []statex.Stage{statex.Stage0, statex.Stage1, statex.Stage2, statex.Stage3, statex.Stage4} {
		card := CatalogCard(memoryAtStage(t, stage))
		cur, ok := rank[card.PressureLevel]
		if !ok {
			t.Fatalf("stage %s has unknown pressure %q", stage, card.PressureLevel)
		}
		if cur < prev {
			t.Fatalf("pressure dropped at stage %s", stage)
		}
		prev = cur
	}
}

func TestCatalogStage4GatesNamedEscalation(t *testing.T) {
	t.Parallel()

	mem := memoryAtStage(t, statex.Stage4)
	mem.BrokenPromises = 2
	mem.RefreshDerived(statex.DefaultWeights())
	if !mem.SOPTriggerNamedEscalation {
		t.Fatal("fixture should trip the escalation SOP")
	}

	withApproval := mem
	withApproval.ApprovalID = "APR-001"
	card := CatalogCard(withApproval)
	if !card.EscalationActionsAllowed["contact_workplace"] {
		t.Fatal("approved account should allow workplace contact")
	}

	noApproval := mem
	noApproval.ApprovalID = ""
	card = CatalogCard(noApproval)
	if card.EscalationActionsAllowed["contact_workplace"] {
		t.Fatal("workplace contact allowed without approval on file")
	}
}

func TestEnsureCardUsesPriorWhenFit(t *testing.T) {
	t.Parallel()

	engine, err := New(&fakeOracle{}, "planner prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mem := memoryAtStage(t, statex.Stage2)
	prior := CatalogCard(mem)
	prior.Notes = "hand tuned"

	got := engine.EnsureCard(mem, &prior)
	if got.Notes != "hand tuned" {
		t.Fatalf("prior card replaced: %+v", got)
	}
}

func TestEnsureCardReplacesStaleOrMissing(t *testing.T) {
	t.Parallel()

	engine, err := New(&fakeOracle{}, "planner prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mem := memoryAtStage(t, statex.Stage3)

	got := engine.EnsureCard(mem, nil)
	if got.Stage != statex.Stage3 {
		t.Fatalf("bootstrap card stage = %s", got.Stage)
	}

	stale := CatalogCard(memoryAtStage(t, statex.Stage1))
	got = engine.EnsureCard(mem, &stale)
	if got.Stage != statex.Stage3 {
		t.Fatalf("stale card kept: stage = %s", got.Stage)
	}

	broken := CatalogCard(mem)
	broken.TodayKPI = nil
	got = engine.EnsureCard(mem, &broken)
	if err := got.Validate(); err != nil {
		t.Fatalf("broken prior not repaired: %v", err)
	}
}

func TestRegenerateAcceptsModelCard(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{out: `{
		"strategy_id": "custom_partial_recovery",
		"stage": "Stage2",
		"today_kpi": ["step1_acknowledge_obstacle", "step2_lock_partial_today"],
		"pressure_level": "polite_firm",
		"allowed_actions": ["negotiate_partial_today"],
		"guardrails": ["no_threats"]
	}`}
	engine, err := New(oracle, "planner prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mem := memoryAtStage(t, statex.Stage2)
	got := engine.Regenerate(context.Background(), mem, contractx.GateDecision{Decision: contractx.DecisionEscalateToMeta}, nil, "")
	if got.StrategyID != "custom_partial_recovery" {
		t.Fatalf("model card discarded: %+v", got)
	}
	if got.Stage != statex.Stage2 {
		t.Fatalf("stage = %s", got.Stage)
	}
}

func TestRegenerateForcesStageAlignment(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{out: `{
		"strategy_id": "overeager_escalation",
		"stage": "Stage4",
		"today_kpi": ["step1_final_notice"],
		"pressure_level": "firm",
		"allowed_actions": ["final_notice"],
		"notes": "model reasoning"
	}`}
	engine, err := New(oracle, "planner prompt")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mem := memoryAtStage(t, statex.Stage2)
	got := engine.Regenerate(context.Background(), mem, contractx.GateDecision{Decision: contractx.DecisionEscalateToMeta}, nil, "")
	if got.Stage != statex.Stage2 {
		t.Fatalf("stage not forced: %s", got.Stage)
	}
	if !strings.Contains(got.Notes, "stage forced Stage4 -> Stage2") {
		t.Fatalf("alignment not recorded in notes: %q", got.Notes)
	}
	if !strings.Contains(got.Notes, "model reasoning") {
		t.Fatalf("original notes lost: %q", got.Notes)
	}
}

func TestRegenerateFallsBackToCatalog(t *testing.T) {
	t.Parallel()

	mem := memoryAtStage(t, statex.Stage3)
	gate := contractx.GateDecision{Decision: contractx.DecisionEscalateToMeta}

	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{name: "oracle error", oracle: &fakeOracle{err: errors.New("upstream down")}},
		{name: "non json output", oracle: &fakeOracle{out: "I think a firmer tone would work"}},
		{name: "invalid card", oracle: &fakeOracle{out: `{"strategy_id": "x", "stage": "Stage3"}`}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			engine, err := New(tc.oracle, "planner prompt")
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got := engine.Regenerate(context.Background(), mem, gate, nil, "")
			if got.StrategyID != "stage3_firm_escalation" {
				t.Fatalf("expected catalog fallback, got %q", got.StrategyID)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("fallback card invalid: %v", err)
			}
		})
	}
}
