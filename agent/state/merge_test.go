package state

import (
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func baseMemory(t *testing.T) MemoryState {
	t.Helper()
	return NewMemoryState("cust-1", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestMergeScalarsLastWriteWins(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.ReasonCategory = ReasonOther

	got := Merge(cur, MemoryPatch{
		ReasonCategory:         strPtr(ReasonUnemployment),
		AbilityScore:           strPtr(AbilityPartial),
		HasAbilityConfirmed:    boolPtr(true),
		PaymentDateConfirmed:   strPtr("2026-03-01"),
		PaymentAmountConfirmed: floatPtr(2500),
		PaymentTypeConfirmed:   strPtr(PaymentTypePartial),
	})

	if got.ReasonCategory != ReasonUnemployment {
		t.Fatalf("reason category = %q, want %q", got.ReasonCategory, ReasonUnemployment)
	}
	if got.AbilityScore != AbilityPartial {
		t.Fatalf("ability score = %q, want %q", got.AbilityScore, AbilityPartial)
	}
	if got.HasAbilityConfirmed == nil || !*got.HasAbilityConfirmed {
		t.Fatal("expected has_ability_confirmed true")
	}
	if got.PaymentAmountConfirmed != 2500 {
		t.Fatalf("payment amount = %v, want 2500", got.PaymentAmountConfirmed)
	}
	if got.PaymentTypeConfirmed != PaymentTypePartial {
		t.Fatalf("payment type = %q, want %q", got.PaymentTypeConfirmed, PaymentTypePartial)
	}
}

func TestMergeObstaclesDedupKeepsOrder(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.UnresolvedObstacles = []string{"no_income"}

	got := Merge(cur, MemoryPatch{
		UnresolvedObstacles: []string{"sick_family_member", "no_income", "  ", "sick_family_member"},
	})

	want := []string{"no_income", "sick_family_member"}
	if len(got.UnresolvedObstacles) != len(want) {
		t.Fatalf("obstacles = %v, want %v", got.UnresolvedObstacles, want)
	}
	for i := range want {
		if got.UnresolvedObstacles[i] != want[i] {
			t.Fatalf("obstacles[%d] = %q, want %q", i, got.UnresolvedObstacles[i], want[i])
		}
	}
}

func TestMergeCountersMonotonic(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.BrokenPromises = 2
	cur.PaymentRefusals = 1

	got := Merge(cur, MemoryPatch{BrokenPromises: intPtr(1), PaymentRefusals: intPtr(0)})
	if got.BrokenPromises != 2 || got.PaymentRefusals != 1 {
		t.Fatalf("counters moved backward: bp=%d pr=%d", got.BrokenPromises, got.PaymentRefusals)
	}

	got = Merge(cur, MemoryPatch{BrokenPromises: intPtr(3), PaymentRefusals: intPtr(2)})
	if got.BrokenPromises != 3 || got.PaymentRefusals != 2 {
		t.Fatalf("counters not advanced: bp=%d pr=%d", got.BrokenPromises, got.PaymentRefusals)
	}
}

func TestMergeReasonDetailAppendAndIdempotence(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	patch := MemoryPatch{ReasonDetail: "lost job in february"}

	once := Merge(cur, patch)
	if once.ReasonDetail != "lost job in february" {
		t.Fatalf("detail = %q", once.ReasonDetail)
	}

	twice := Merge(once, patch)
	if twice.ReasonDetail != once.ReasonDetail {
		t.Fatalf("same patch applied twice changed detail: %q", twice.ReasonDetail)
	}

	third := Merge(twice, MemoryPatch{ReasonDetail: "expects new job in april"})
	want := "lost job in february | expects new job in april"
	if third.ReasonDetail != want {
		t.Fatalf("detail = %q, want %q", third.ReasonDetail, want)
	}
}

func TestMergeReasonDetailCapKeepsNewest(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.ReasonDetail = strings.Repeat("x", ReasonDetailCap-10)

	got := Merge(cur, MemoryPatch{ReasonDetail: "newest excuse on record"})
	if runes := []rune(got.ReasonDetail); len(runes) > ReasonDetailCap {
		t.Fatalf("detail length = %d, cap %d", len(runes), ReasonDetailCap)
	}
	if !strings.HasSuffix(got.ReasonDetail, "newest excuse on record") {
		t.Fatalf("newest detail trimmed away: %q", got.ReasonDetail)
	}
}

func TestMergeExtraShallow(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.Extra = map[string]any{"channel": "line", "attempts": 2}

	got := Merge(cur, MemoryPatch{Extra: map[string]any{"attempts": 3, "last_device": "mobile"}})
	if got.Extra["channel"] != "line" {
		t.Fatalf("untouched key lost: %v", got.Extra)
	}
	if got.Extra["attempts"] != 3 {
		t.Fatalf("patched key not overwritten: %v", got.Extra["attempts"])
	}
	if got.Extra["last_device"] != "mobile" {
		t.Fatalf("new key missing: %v", got.Extra)
	}
}

func TestMergeDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.UnresolvedObstacles = []string{"no_income"}
	cur.Extra = map[string]any{"channel": "line"}

	got := Merge(cur, MemoryPatch{
		UnresolvedObstacles: []string{"gambling_debt"},
		Extra:               map[string]any{"flag": true},
	})

	got.UnresolvedObstacles[0] = "mutated"
	got.Extra["channel"] = "mutated"

	if cur.UnresolvedObstacles[0] != "no_income" {
		t.Fatalf("input obstacle slice aliased: %v", cur.UnresolvedObstacles)
	}
	if cur.Extra["channel"] != "line" {
		t.Fatalf("input extra map aliased: %v", cur.Extra)
	}
	if len(cur.UnresolvedObstacles) != 1 {
		t.Fatalf("input obstacles grew: %v", cur.UnresolvedObstacles)
	}
}

func TestMergeZeroPatchIsNoop(t *testing.T) {
	t.Parallel()

	cur := baseMemory(t)
	cur.ReasonDetail = "kept"
	cur.BrokenPromises = 2

	got := Merge(cur, MemoryPatch{})
	if got.ReasonDetail != "kept" || got.BrokenPromises != 2 {
		t.Fatalf("zero patch changed state: %+v", got)
	}
	if !(MemoryPatch{}).IsZero() {
		t.Fatal("empty patch should report IsZero")
	}
	if (MemoryPatch{ReasonDetail: "x"}).IsZero() {
		t.Fatal("non-empty patch should not report IsZero")
	}
}
