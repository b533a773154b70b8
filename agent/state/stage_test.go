package state

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()

	tests := []struct {
		name            string
		dpd             int
		brokenPromises  int
		paymentRefusals int
		want            Stage
	}{
		{name: "not yet due", dpd: -1, want: Stage0},
		{name: "not yet due ignores counters", dpd: -5, brokenPromises: 3, paymentRefusals: 3, want: Stage0},
		{name: "due today clean record", dpd: 0, want: Stage1},
		{name: "one day late", dpd: 1, want: Stage2},
		{name: "score just under stage three", dpd: 2, want: Stage2},
		{name: "score at stage three threshold", dpd: 3, want: Stage3},
		{name: "broken promise pushes past due account", dpd: 2, brokenPromises: 1, want: Stage3},
		{name: "refusal alone stays stage two", dpd: 0, paymentRefusals: 1, want: Stage2},
		{name: "two promises on due day", dpd: 0, brokenPromises: 2, want: Stage3},
		{name: "score just under stage four", dpd: 1, brokenPromises: 1, paymentRefusals: 1, want: Stage3},
		{name: "score at stage four threshold", dpd: 6, want: Stage4},
		{name: "compound severe", dpd: 5, brokenPromises: 1, paymentRefusals: 1, want: Stage4},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := w.Classify(tc.dpd, tc.brokenPromises, tc.paymentRefusals)
			if got != tc.want {
				t.Fatalf("Classify(%d,%d,%d) = %s, want %s",
					tc.dpd, tc.brokenPromises, tc.paymentRefusals, got, tc.want)
			}
		})
	}
}

func TestClassifyCustomWeights(t *testing.T) {
	t.Parallel()

	w := Weights{DPD: 1, BrokenPromise: 1, PaymentRefusal: 1, StageThreeMin: 3, StageFourMin: 6}

	if got := w.Classify(2, 0, 0); got != Stage2 {
		t.Fatalf("Classify(2,0,0) = %s, want %s", got, Stage2)
	}
	if got := w.Classify(3, 0, 0); got != Stage3 {
		t.Fatalf("Classify(3,0,0) = %s, want %s", got, Stage3)
	}
	if got := w.Classify(2, 2, 2); got != Stage4 {
		t.Fatalf("Classify(2,2,2) = %s, want %s", got, Stage4)
	}
}

func TestSOPTriggerNamedEscalation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		dpd            int
		brokenPromises int
		want           bool
	}{
		{name: "no promises broken", dpd: 10, brokenPromises: 0, want: false},
		{name: "promise broken but fresh", dpd: 3, brokenPromises: 2, want: false},
		{name: "both conditions met", dpd: 4, brokenPromises: 1, want: true},
		{name: "deep delinquency", dpd: 30, brokenPromises: 5, want: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SOPTriggerNamedEscalation(tc.dpd, tc.brokenPromises); got != tc.want {
				t.Fatalf("SOPTriggerNamedEscalation(%d,%d) = %v, want %v", tc.dpd, tc.brokenPromises, got, tc.want)
			}
		})
	}
}

func TestStageValid(t *testing.T) {
	t.Parallel()

	for _, s := range []Stage{Stage0, Stage1, Stage2, Stage3, Stage4} {
		if !s.Valid() {
			t.Fatalf("expected %s to be valid", s)
		}
	}
	if Stage("Stage9").Valid() {
		t.Fatal("expected Stage9 to be invalid")
	}
	if Stage("").Valid() {
		t.Fatal("expected empty stage to be invalid")
	}
}
