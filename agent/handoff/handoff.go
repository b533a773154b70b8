package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	"github.com/kritsada-w/collectra/pkg/qstash"
	"github.com/rs/zerolog/log"
)

// QStashNotifier publishes HANDOFF events to a human-routing webhook
// through QStash. The publish is best effort; the orchestrator finishes
// the turn whether or not delivery succeeds.
type QStashNotifier struct {
	client      *qstash.Client
	destination string
}

func NewQStashNotifier(client *qstash.Client, destination string) (*QStashNotifier, error) {
	if client == nil {
		return nil, errors.New("handoff: qstash client is required")
	}
	if strings.TrimSpace(destination) == "" {
		return nil, errors.New("handoff: destination url is required")
	}
	return &QStashNotifier{client: client, destination: destination}, nil
}

func (n *QStashNotifier) NotifyHandoff(ctx context.Context, ev contractx.HandoffEvent) error {
	if err := n.client.PublishJSON(ctx, n.destination, ev); err != nil {
		return fmt.Errorf("handoff notify: %w", err)
	}
	log.Info().Str("customer_id", ev.CustomerID).Str("stage", ev.Stage).Msg("handoff event published")
	return nil
}

// LogNotifier records HANDOFF events to the structured log only. Used when
// no routing endpoint is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyHandoff(_ context.Context, ev contractx.HandoffEvent) error {
	log.Warn().
		Str("customer_id", ev.CustomerID).
		Str("stage", ev.Stage).
		Str("reason", ev.Reason).
		Strs("risk_flags", ev.RiskFlags).
		Msg("handoff requested, no routing endpoint configured")
	return nil
}
