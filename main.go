package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	orchestratorx "github.com/kritsada-w/collectra/agent/agents/orchestrator"
	contractx "github.com/kritsada-w/collectra/agent/contract"
	criticx "github.com/kritsada-w/collectra/agent/critic"
	executorx "github.com/kritsada-w/collectra/agent/executor"
	handoffx "github.com/kritsada-w/collectra/agent/handoff"
	historyx "github.com/kritsada-w/collectra/agent/history"
	llmx "github.com/kritsada-w/collectra/agent/llm"
	metax "github.com/kritsada-w/collectra/agent/meta"
	promptx "github.com/kritsada-w/collectra/agent/prompt"
	sessionx "github.com/kritsada-w/collectra/agent/session"
	statex "github.com/kritsada-w/collectra/agent/state"
	configx "github.com/kritsada-w/collectra/pkg/config"
	_ "github.com/kritsada-w/collectra/pkg/logger/autoload"
	qstashx "github.com/kritsada-w/collectra/pkg/qstash"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	CustomerID        string `envconfig:"CUSTOMER_ID" default:"customer-001"`
	OrganizationName  string `envconfig:"ORGANIZATION_NAME" default:"Credit Center"`
	HandoffWebhookURL string `envconfig:"HANDOFF_WEBHOOK_URL"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("llm config invalid")
	}
	weights := configx.MustNew[statex.Weights]("SCORE")

	prompts := promptx.LoadPromptSet()

	criticOracle := mustOracle(ctx, *llmCfg, contractx.RoleCritic)
	metaOracle := mustOracle(ctx, *llmCfg, contractx.RoleMeta)
	executorOracle := mustOracle(ctx, *llmCfg, contractx.RoleExecutor)
	historianOracle, err := llmx.NewSDKOracle(llmCfg.OpenRouterFor(contractx.RoleHistorian))
	if err != nil {
		log.Fatal().Err(err).Msg("init historian oracle")
	}

	gate, err := criticx.New(criticOracle, prompts.Critic)
	if err != nil {
		log.Fatal().Err(err).Msg("init critic")
	}
	engine, err := metax.New(metaOracle, prompts.Meta)
	if err != nil {
		log.Fatal().Err(err).Msg("init strategy engine")
	}
	generator, err := executorx.New(executorOracle, prompts.Executor, appCfg.OrganizationName)
	if err != nil {
		log.Fatal().Err(err).Msg("init executor")
	}
	historian, err := historyx.New(historianOracle, prompts.History)
	if err != nil {
		log.Fatal().Err(err).Msg("init history ingestor")
	}

	store := buildStore(ctx)
	notifier := buildNotifier(appCfg.HandoffWebhookURL)

	orch, err := orchestratorx.New(store, gate, engine, generator, historian, notifier, *weights)
	if err != nil {
		log.Fatal().Err(err).Msg("init orchestrator")
	}

	runREPL(ctx, orch, appCfg.CustomerID)
}

func mustOracle(ctx context.Context, cfg llmx.Config, role contractx.AgentRole) *llmx.Oracle {
	orCfg := cfg.OpenRouterFor(role)
	chatModel, err := orCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("role", string(role)).Msg("init chat model")
	}
	oracle, err := llmx.NewOracle(ctx, chatModel, "oracle."+string(role))
	if err != nil {
		log.Fatal().Err(err).Str("role", string(role)).Msg("init oracle")
	}
	return oracle
}

func buildStore(ctx context.Context) sessionx.Store {
	pgCfg, err := configx.New[sessionx.PostgresConfig]("POSTGRES")
	if err != nil || strings.TrimSpace(pgCfg.DSN) == "" {
		log.Info().Msg("no postgres dsn configured, using in-memory session store")
		return sessionx.NewMemoryStore()
	}

	store, err := sessionx.NewPostgresStore(*pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init postgres session store")
	}
	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("migrate postgres session store")
	}
	return store
}

func buildNotifier(webhookURL string) contractx.HandoffNotifier {
	if strings.TrimSpace(webhookURL) == "" {
		return handoffx.LogNotifier{}
	}

	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		log.Warn().Err(err).Msg("qstash not configured, handoff events go to the log only")
		return handoffx.LogNotifier{}
	}
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		log.Warn().Err(err).Msg("qstash client init failed, handoff events go to the log only")
		return handoffx.LogNotifier{}
	}
	notifier, err := handoffx.NewQStashNotifier(client, webhookURL)
	if err != nil {
		log.Warn().Err(err).Msg("handoff notifier init failed, handoff events go to the log only")
		return handoffx.LogNotifier{}
	}
	return notifier
}

func runREPL(ctx context.Context, orch *orchestratorx.Orchestrator, customerID string) {
	fmt.Printf("collectra negotiation console, customer %s\n", customerID)
	fmt.Println("commands: /start [pasted history], /exit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/exit":
			return
		case strings.HasPrefix(line, "/start"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "/start"))
			sess, err := orch.StartSession(ctx, customerID, raw)
			if err != nil {
				fmt.Printf("start failed: %v\n", err)
				continue
			}
			fmt.Printf("session ready, stage %s, broken promises %d\n",
				sess.Memory.Stage, sess.Memory.BrokenPromises)
		default:
			out, err := orch.HandleTurn(ctx, customerID, line)
			if err != nil {
				fmt.Printf("turn failed: %v\n", err)
				continue
			}
			fmt.Printf("[%s] %s\n", out.Decision, out.Reply)
		}
	}
}
