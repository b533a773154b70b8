package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	statex "github.com/kritsada-w/collectra/agent/state"
	"github.com/rs/zerolog/log"
)

// FallbackReply is returned whenever the oracle path fails, so the turn
// still ends with exactly one assistant message.
const FallbackReply = contractx.FallbackReply

// Executor renders the active strategy card and customer profile into a
// system prompt and asks the oracle for one outbound message. It keeps no
// state between turns; everything it needs arrives as arguments.
type Executor struct {
	oracle contractx.PolicyOracle
	tmpl   *template.Template
	org    string
}

func New(oracle contractx.PolicyOracle, templateBody, organizationName string) (*Executor, error) {
	if oracle == nil {
		return nil, fmt.Errorf("%w: executor requires an oracle", contractx.ErrValidation)
	}
	if strings.TrimSpace(templateBody) == "" {
		return nil, fmt.Errorf("%w: executor template is empty", contractx.ErrPromptMissing)
	}
	tmpl, err := template.New("executor").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(templateBody)
	if err != nil {
		return nil, fmt.Errorf("%w: executor template: %v", contractx.ErrPromptMissing, err)
	}
	return &Executor{oracle: oracle, tmpl: tmpl, org: organizationName}, nil
}

type promptData struct {
	OrgName         string
	StrategyID      string
	Stage           statex.Stage
	PressureLevel   statex.PressureLevel
	PressureTactics []string
	TodayKPI        []string
	AllowedActions  []string
	Guardrails      []string
	Notes           string
	CustomerID      string
	DPD             int
	DebtAmount      float64
	Currency        string
	BrokenPromises  int
	PaymentRefusals int
	HistorySummary  string
}

type turnPayload struct {
	RecentDialogue []statex.DialogueTurn `json:"recent_dialogue"`
	MicroEdits     contractx.MicroEdits  `json:"micro_edits"`
}

// Generate produces the assistant's next message. It never returns an
// error: template or oracle failures degrade to FallbackReply so the
// orchestrator can finish the turn either way.
func (e *Executor) Generate(ctx context.Context, card statex.StrategyCard, mem statex.MemoryState, dialogue []statex.DialogueTurn, micro contractx.MicroEdits, historySummary string) string {
	org := e.org
	if mem.OrganizationName != "" {
		org = mem.OrganizationName
	}
	data := promptData{
		OrgName:         org,
		StrategyID:      card.StrategyID,
		Stage:           card.Stage,
		PressureLevel:   card.PressureLevel,
		PressureTactics: stringSlice(card.Params["pressure_tactics"]),
		TodayKPI:        card.TodayKPI,
		AllowedActions:  card.AllowedActions,
		Guardrails:      card.Guardrails,
		Notes:           card.Notes,
		CustomerID:      mem.CustomerID,
		DPD:             mem.DPD,
		DebtAmount:      mem.DebtAmount,
		Currency:        mem.Currency,
		BrokenPromises:  mem.BrokenPromises,
		PaymentRefusals: mem.PaymentRefusals,
		HistorySummary:  historySummary,
	}

	var sb strings.Builder
	if err := e.tmpl.Execute(&sb, data); err != nil {
		log.Error().Err(err).Str("customer_id", mem.CustomerID).Msg("executor: prompt render failed")
		return FallbackReply
	}

	payload, err := json.Marshal(turnPayload{
		RecentDialogue: statex.TailTurns(dialogue),
		MicroEdits:     micro,
	})
	if err != nil {
		log.Error().Err(err).Str("customer_id", mem.CustomerID).Msg("executor: payload marshal failed")
		return FallbackReply
	}

	reply, err := e.oracle.GenerateText(ctx, sb.String(), string(payload))
	if err != nil {
		log.Warn().Err(err).Str("customer_id", mem.CustomerID).Msg("executor: oracle invoke failed, using fallback reply")
		return FallbackReply
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return FallbackReply
	}
	return reply
}

// stringSlice coerces a card param into []string. Cards decoded from model
// JSON carry []any; catalog cards carry []string.
func stringSlice(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
