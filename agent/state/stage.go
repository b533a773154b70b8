package state

// Stage is the discrete risk tier derived from DPD and behavioral counters.
// Stage0 is friendliest (not yet due), Stage4 most severe.
type Stage string

const (
	Stage0 Stage = "Stage0"
	Stage1 Stage = "Stage1"
	Stage2 Stage = "Stage2"
	Stage3 Stage = "Stage3"
	Stage4 Stage = "Stage4"
)

func (s Stage) Valid() bool {
	switch s {
	case Stage0, Stage1, Stage2, Stage3, Stage4:
		return true
	}
	return false
}

// Weights holds the risk-score coefficients and thresholds. These are
// undocumented business constants kept as configuration, not law.
type Weights struct {
	DPD            int `envconfig:"DPD" split_words:"true" default:"10"`
	BrokenPromise  int `envconfig:"BROKEN_PROMISE" split_words:"true" default:"15"`
	PaymentRefusal int `envconfig:"PAYMENT_REFUSAL" split_words:"true" default:"20"`
	StageThreeMin  int `envconfig:"STAGE_THREE_MIN" split_words:"true" default:"30"`
	StageFourMin   int `envconfig:"STAGE_FOUR_MIN" split_words:"true" default:"60"`
}

func DefaultWeights() Weights {
	return Weights{
		DPD:            10,
		BrokenPromise:  15,
		PaymentRefusal: 20,
		StageThreeMin:  30,
		StageFourMin:   60,
	}
}

// Classify maps the account's risk inputs to a stage. Pure and total: a
// negative DPD means the debt is not yet due and always yields Stage0,
// regardless of counters.
func (w Weights) Classify(dpd, brokenPromises, paymentRefusals int) Stage {
	if dpd < 0 {
		return Stage0
	}

	score := dpd*w.DPD + brokenPromises*w.BrokenPromise + paymentRefusals*w.PaymentRefusal
	switch {
	case score == 0:
		return Stage1
	case score < w.StageThreeMin:
		return Stage2
	case score < w.StageFourMin:
		return Stage3
	default:
		return Stage4
	}
}

// SOPTriggerNamedEscalation gates whether named third-party escalation
// language is permitted at all.
func SOPTriggerNamedEscalation(dpd, brokenPromises int) bool {
	return brokenPromises >= 1 && dpd > 3
}
