package orchestratornode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	sessionx "github.com/kritsada-w/collectra/agent/session"
	statex "github.com/kritsada-w/collectra/agent/state"
)

var (
	ErrInvalidMessage  = errors.New("message is empty")
	ErrInvalidCustomer = errors.New("customer id is empty")
)

type GraphInput struct {
	CustomerID string
	Text       string
}

type GraphOutput struct {
	Reply     string
	Decision  contractx.Decision
	Telemetry contractx.TurnTelemetry
}

// GraphState is the per-turn scratchpad threaded through the turn graph.
// Session is the durable record; everything else is derived for this turn
// and discarded after finalize.
type GraphState struct {
	CustomerID string
	Text       string
	Now        time.Time

	Session     *sessionx.Session
	StageBefore statex.Stage

	Card          statex.StrategyCard
	OldStrategyID string

	Gate      contractx.GateDecision
	MetaFired bool

	Reply           string
	ExecutorFailed  bool
	HandoffSignaled bool

	Telemetry contractx.TurnTelemetry
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, ErrInvalidCustomer
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		CustomerID: customerID,
		Text:       text,
		Now:        nowFn().UTC(),
	}, nil
}
