package history

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	"github.com/kritsada-w/collectra/pkg/jsonx"
	"github.com/rs/zerolog/log"
)

// Ingestor condenses raw prior-period records into a bootstrap digest.
// It runs once per session, before the first turn.
type Ingestor struct {
	oracle       contractx.PolicyOracle
	systemPrompt string
}

func New(oracle contractx.PolicyOracle, systemPrompt string) (*Ingestor, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: history ingestor requires an oracle", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: history system prompt is empty", contractx.ErrPromptMissing)
	}
	return &Ingestor{oracle: oracle, systemPrompt: systemPrompt}, nil
}

// Summarize never fails. Empty input yields a zero digest; a model reply
// that cannot be parsed degrades to a plain-text summary with zero
// structured fields so session bootstrap still proceeds.
func (i *Ingestor) Summarize(ctx context.Context, raw string) contractx.HistoryDigest {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return contractx.HistoryDigest{}
	}

	out, err := i.oracle.GenerateStructured(ctx, i.systemPrompt, raw)
	if err != nil {
		log.Warn().Err(err).Msg("history: oracle invoke failed, starting without digest")
		return contractx.HistoryDigest{}
	}

	var digest contractx.HistoryDigest
	if err := jsonx.DecodeObject(out, &digest); err != nil {
		log.Warn().Err(err).Msg("history: digest decode failed, keeping raw summary only")
		return contractx.HistoryDigest{Summary: strings.TrimSpace(out)}
	}
	if digest.BrokenPromises < 0 {
		digest.BrokenPromises = 0
	}
	return digest
}
