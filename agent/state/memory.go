package state

import "time"

// Reason categories and ability scores the critic may extract. Empty string
// means not yet known.
const (
	ReasonUnemployment   = "unemployment"
	ReasonIllness        = "illness"
	ReasonForgot         = "forgot"
	ReasonMaliciousDelay = "malicious_delay"
	ReasonOther          = "other"
)

const (
	AbilityFull    = "full"
	AbilityPartial = "partial"
	AbilityZero    = "zero"
)

const (
	PaymentTypeFull    = "full"
	PaymentTypePartial = "partial"
)

// ReasonDetailCap bounds the accumulating reason_detail text, in runes.
// Merges truncate the oldest content, never the newest addition.
const ReasonDetailCap = 500

// MemoryState is the durable, incrementally-updated record of facts known
// about one customer. It is owned exclusively by that customer's turn
// sequence; created on first contact, mutated every turn, never deleted
// except by explicit reset.
type MemoryState struct {
	// Identity. Currency and amounts are display-only.
	CustomerID       string  `json:"customer_id"`
	OrganizationName string  `json:"organization_name"`
	ProductName      string  `json:"product_name"`
	DebtAmount       float64 `json:"debt_amount"`
	Currency         string  `json:"currency"`

	// Risk inputs. DPD is signed: negative means not yet due.
	DPD             int `json:"dpd"`
	BrokenPromises  int `json:"broken_promises"`
	PaymentRefusals int `json:"payment_refusals"`

	// Derived. Stage is always recomputed from the counters; it is hand-set
	// only through an explicit override.
	Stage                     Stage `json:"stage"`
	SOPTriggerNamedEscalation bool  `json:"sop_trigger_named_escalation"`

	// Qualitative facts.
	ReasonCategory      string   `json:"reason_category"`
	AbilityScore        string   `json:"ability_score"`
	ReasonDetail        string   `json:"reason_detail"`
	UnresolvedObstacles []string `json:"unresolved_obstacles,omitempty"`

	// Convergence facts: the five keys to a same-day resolution.
	HasAbilityConfirmed    *bool   `json:"has_ability_confirmed,omitempty"`
	PaymentDateConfirmed   string  `json:"payment_date_confirmed,omitempty"`
	PaymentAmountConfirmed float64 `json:"payment_amount_confirmed,omitempty"`
	PaymentTypeConfirmed   string  `json:"payment_type_confirmed,omitempty"`
	ExtensionRequested     bool    `json:"extension_requested"`
	ExtensionEligible      bool    `json:"extension_eligible"`

	// Context.
	HistorySummary      string         `json:"history_summary,omitempty"`
	ApprovalID          string         `json:"approval_id,omitempty"`
	AllowedContactHours string         `json:"allowed_contact_hours,omitempty"`
	NoResponseStreak    int            `json:"no_response_streak"`
	Extra               map[string]any `json:"extra,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMemoryState creates the first-contact record with the account defaults
// used before any onboarding data arrives.
func NewMemoryState(customerID string, now time.Time) MemoryState {
	m := MemoryState{
		CustomerID:          customerID,
		OrganizationName:    "Credit Center",
		ProductName:         "Consumer Loan",
		DebtAmount:          10000,
		Currency:            "USD",
		DPD:                 1,
		ApprovalID:          "APR-001",
		AllowedContactHours: "08:00-20:00",
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}
	m.RefreshDerived(DefaultWeights())
	return m
}

// RefreshDerived recomputes stage and the SOP escalation flag from the
// current risk inputs.
func (m *MemoryState) RefreshDerived(w Weights) {
	m.Stage = w.Classify(m.DPD, m.BrokenPromises, m.PaymentRefusals)
	m.SOPTriggerNamedEscalation = SOPTriggerNamedEscalation(m.DPD, m.BrokenPromises)
}

// OverrideCounters is the only path that may move the behavioral counters
// backward. Merge clamps decreases; manual corrections go through here.
func (m *MemoryState) OverrideCounters(brokenPromises, paymentRefusals int, w Weights) {
	if brokenPromises >= 0 {
		m.BrokenPromises = brokenPromises
	}
	if paymentRefusals >= 0 {
		m.PaymentRefusals = paymentRefusals
	}
	m.RefreshDerived(w)
}

// ApplyHistoryDigest seeds the record from the one-shot prior-period parse.
// Only fields the digest actually carries are written.
func (m *MemoryState) ApplyHistoryDigest(summary string, brokenPromises int, reasonCategory, abilityScore, reasonDetail string, w Weights) {
	if summary != "" {
		m.HistorySummary = summary
	}
	if brokenPromises > m.BrokenPromises {
		m.BrokenPromises = brokenPromises
	}
	if reasonCategory != "" {
		m.ReasonCategory = reasonCategory
	}
	if abilityScore != "" {
		m.AbilityScore = abilityScore
	}
	if reasonDetail != "" {
		m.ReasonDetail = appendDetail(m.ReasonDetail, reasonDetail)
	}
	m.RefreshDerived(w)
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (m MemoryState) Clone() MemoryState {
	out := m
	out.UnresolvedObstacles = append([]string(nil), m.UnresolvedObstacles...)
	if m.HasAbilityConfirmed != nil {
		v := *m.HasAbilityConfirmed
		out.HasAbilityConfirmed = &v
	}
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
