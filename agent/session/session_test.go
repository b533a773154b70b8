package session

import (
	"errors"
	"testing"
	"time"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewRequiresCustomerID(t *testing.T) {
	t.Parallel()

	if _, err := New("   ", testNow); !errors.Is(err, statex.ErrEmptyCustomer) {
		t.Fatalf("expected ErrEmptyCustomer, got %v", err)
	}

	sess, err := New("cust-1", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sess.CustomerID != "cust-1" || sess.Memory.CustomerID != "cust-1" {
		t.Fatalf("customer id not propagated: %+v", sess)
	}
	if sess.Version != 1 {
		t.Fatalf("version = %d, want 1", sess.Version)
	}
}

func TestBootstrapAppliesDigest(t *testing.T) {
	t.Parallel()

	sess, err := New("cust-1", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	sess.Bootstrap(contractx.HistoryDigest{
		Summary:        "two missed commitments, cites unemployment",
		BrokenPromises: 2,
		ReasonCategory: statex.ReasonUnemployment,
		AbilityScore:   statex.AbilityPartial,
		ReasonDetail:   "laid off in january",
	}, statex.DefaultWeights())

	if sess.Memory.BrokenPromises != 2 {
		t.Fatalf("broken promises = %d, want 2", sess.Memory.BrokenPromises)
	}
	if sess.Memory.HistorySummary == "" {
		t.Fatal("history summary not applied")
	}
	if sess.Memory.ReasonCategory != statex.ReasonUnemployment {
		t.Fatalf("reason category = %q", sess.Memory.ReasonCategory)
	}
	// dpd=1, bp=2 scores past the firm threshold
	if sess.Memory.Stage != statex.Stage3 {
		t.Fatalf("stage = %s, want %s", sess.Memory.Stage, statex.Stage3)
	}
}

func TestResetKeepsIdentityDropsTurnState(t *testing.T) {
	t.Parallel()

	sess, err := New("cust-1", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sess.Memory.DPD = 7
	sess.Memory.DebtAmount = 43210
	sess.Memory.BrokenPromises = 3
	sess.AppendTurn(statex.RoleUser, "hello")
	card := statex.StrategyCard{StrategyID: "x"}
	sess.Strategy = &card
	sess.LastGate = &contractx.GateDecision{Decision: contractx.DecisionContinue}

	sess.Reset(testNow.Add(time.Hour), statex.DefaultWeights())

	if sess.Memory.DPD != 7 || sess.Memory.DebtAmount != 43210 {
		t.Fatalf("identity inputs lost: dpd=%d amount=%v", sess.Memory.DPD, sess.Memory.DebtAmount)
	}
	if sess.Memory.BrokenPromises != 0 {
		t.Fatalf("counters survived reset: %d", sess.Memory.BrokenPromises)
	}
	if len(sess.Dialogue) != 0 || sess.Strategy != nil || sess.LastGate != nil {
		t.Fatal("turn state survived reset")
	}
}

func TestResetClassifiesWithGivenWeights(t *testing.T) {
	t.Parallel()

	sess, err := New("cust-1", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sess.Memory.DPD = 7

	// A softened dpd coefficient lands the same account two tiers below
	// where the default classification would place it.
	soft := statex.Weights{DPD: 1, BrokenPromise: 15, PaymentRefusal: 20, StageThreeMin: 30, StageFourMin: 60}
	sess.Reset(testNow.Add(time.Hour), soft)

	if sess.Memory.Stage != statex.Stage2 {
		t.Fatalf("stage = %s, want %s", sess.Memory.Stage, statex.Stage2)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	sess, err := New("cust-1", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	sess.AppendTurn(statex.RoleUser, "original")
	card := statex.StrategyCard{StrategyID: "s1", Stage: statex.Stage2, TodayKPI: []string{"k"}, PressureLevel: statex.PressurePolite}
	sess.Strategy = &card

	cp := sess.Clone()
	cp.Dialogue[0].Content = "mutated"
	cp.Strategy.StrategyID = "mutated"
	cp.Memory.BrokenPromises = 99

	if sess.Dialogue[0].Content != "original" {
		t.Fatal("dialogue aliased")
	}
	if sess.Strategy.StrategyID != "s1" {
		t.Fatal("strategy aliased")
	}
	if sess.Memory.BrokenPromises != 0 {
		t.Fatal("memory aliased")
	}
}
