package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/kritsada-w/collectra/agent/contract"
	nodex "github.com/kritsada-w/collectra/agent/nodes/orchestrator"
	sessionx "github.com/kritsada-w/collectra/agent/session"
	statex "github.com/kritsada-w/collectra/agent/state"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidMessage  = nodex.ErrInvalidMessage
	ErrInvalidCustomer = nodex.ErrInvalidCustomer
)

// Orchestrator owns the per-turn control loop. Turns for the same customer
// run strictly one at a time; different customers proceed in parallel.
type Orchestrator struct {
	store     sessionx.Store
	gate      contractx.GateEvaluator
	engine    contractx.StrategyEngine
	generator contractx.ResponseGenerator
	historian contractx.HistoryIngestor
	notifier  contractx.HandoffNotifier

	weights statex.Weights

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

func New(
	store sessionx.Store,
	gate contractx.GateEvaluator,
	engine contractx.StrategyEngine,
	generator contractx.ResponseGenerator,
	historian contractx.HistoryIngestor,
	notifier contractx.HandoffNotifier,
	weights statex.Weights,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if gate == nil {
		return nil, errors.New("gate evaluator is required")
	}
	if engine == nil {
		return nil, errors.New("strategy engine is required")
	}
	if generator == nil {
		return nil, errors.New("response generator is required")
	}
	if notifier == nil {
		return nil, errors.New("handoff notifier is required")
	}

	o := &Orchestrator{
		store:     store,
		gate:      gate,
		engine:    engine,
		generator: generator,
		historian: historian,
		notifier:  notifier,
		weights:   weights,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one inbound customer message through the full turn
// pipeline and returns the reply with its telemetry trace.
func (o *Orchestrator) HandleTurn(ctx context.Context, customerID, text string) (nodex.GraphOutput, error) {
	lock := o.lockFor(strings.TrimSpace(customerID))
	lock.Lock()
	defer lock.Unlock()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		CustomerID: customerID,
		Text:       text,
	})
	if err != nil {
		return nodex.GraphOutput{}, err
	}

	log.Info().
		Str("customer_id", out.Telemetry.CustomerID).
		Str("turn_id", out.Telemetry.TurnID).
		Str("decision", string(out.Decision)).
		Bool("meta_fired", out.Telemetry.MetaFired).
		Str("stage", out.Telemetry.StageAfter).
		Msg("turn completed")
	return out, nil
}

// StartSession initializes (or re-initializes) a customer session, folding
// any prior-period records into the starting memory through the historian.
func (o *Orchestrator) StartSession(ctx context.Context, customerID, rawHistory string) (*sessionx.Session, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrInvalidCustomer
	}

	lock := o.lockFor(customerID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := sessionx.New(customerID, o.now())
	if err != nil {
		return nil, err
	}

	var digest contractx.HistoryDigest
	if o.historian != nil {
		digest = o.historian.Summarize(ctx, rawHistory)
	}
	sess.Bootstrap(digest, o.weights)

	if err := o.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess.Clone(), nil
}

func (o *Orchestrator) lockFor(customerID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[customerID] = lock
	}
	return lock
}
