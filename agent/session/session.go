package session

import (
	"strings"
	"time"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
)

// Session is the per-customer unit of work: the durable memory record, the
// canonical dialogue log, the active strategy card, and the last gate
// decision. One session is owned by exactly one customer's turn sequence.
type Session struct {
	CustomerID string             `json:"customer_id"`
	Memory     statex.MemoryState `json:"memory"`

	Dialogue []statex.DialogueTurn `json:"dialogue,omitempty"`
	Strategy *statex.StrategyCard  `json:"strategy,omitempty"`

	LastGate      *contractx.GateDecision  `json:"last_gate,omitempty"`
	LastTelemetry *contractx.TurnTelemetry `json:"last_telemetry,omitempty"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a first-contact session with default memory.
func New(customerID string, now time.Time) (*Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, statex.ErrEmptyCustomer
	}
	return &Session{
		CustomerID: customerID,
		Memory:     statex.NewMemoryState(customerID, now),
		Version:    1,
		UpdatedAt:  now.UTC(),
	}, nil
}

// Bootstrap seeds a fresh session from the one-shot history digest.
func (s *Session) Bootstrap(digest contractx.HistoryDigest, w statex.Weights) {
	s.Memory.ApplyHistoryDigest(
		digest.Summary,
		digest.BrokenPromises,
		digest.ReasonCategory,
		digest.AbilityScore,
		digest.ReasonDetail,
		w,
	)
}

// Reset clears everything the turn loop accumulated but keeps identity and
// risk inputs. This is the only path that truncates the dialogue log.
func (s *Session) Reset(now time.Time, w statex.Weights) {
	mem := statex.NewMemoryState(s.CustomerID, now)
	mem.DPD = s.Memory.DPD
	mem.DebtAmount = s.Memory.DebtAmount
	mem.Currency = s.Memory.Currency
	mem.OrganizationName = s.Memory.OrganizationName
	mem.ProductName = s.Memory.ProductName
	mem.RefreshDerived(w)

	s.Memory = mem
	s.Dialogue = nil
	s.Strategy = nil
	s.LastGate = nil
	s.LastTelemetry = nil
	s.Touch(now)
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendTurn appends one entry to the canonical dialogue log.
func (s *Session) AppendTurn(role statex.DialogueRole, content string) {
	s.Dialogue = append(s.Dialogue, statex.DialogueTurn{Role: role, Content: content})
}

// Clone returns a deep copy sharing no mutable data with the receiver.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Memory = s.Memory.Clone()
	out.Dialogue = append([]statex.DialogueTurn(nil), s.Dialogue...)
	if s.Strategy != nil {
		card := s.Strategy.Clone()
		out.Strategy = &card
	}
	if s.LastGate != nil {
		gate := *s.LastGate
		out.LastGate = &gate
	}
	if s.LastTelemetry != nil {
		tel := *s.LastTelemetry
		out.LastTelemetry = &tel
	}
	return &out
}
