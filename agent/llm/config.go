package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	openrouterx "github.com/kritsada-w/collectra/pkg/openrouter"
)

// Role temperature defaults. Gate and strategy generation want
// deterministic output; the executor keeps a little variety.
const (
	defaultCriticTemperature    float32 = 0.0
	defaultMetaTemperature      float32 = 0.0
	defaultExecutorTemperature  float32 = 0.2
	defaultHistorianTemperature float32 = 0.0
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	CriticModel    string `envconfig:"CRITIC_MODEL" split_words:"true"`
	MetaModel      string `envconfig:"META_MODEL" split_words:"true"`
	ExecutorModel  string `envconfig:"EXECUTOR_MODEL" split_words:"true"`
	HistorianModel string `envconfig:"HISTORIAN_MODEL" split_words:"true"`

	CriticTemperature    float32 `envconfig:"CRITIC_TEMPERATURE" split_words:"true" default:"-1"`
	MetaTemperature      float32 `envconfig:"META_TEMPERATURE" split_words:"true" default:"-1"`
	ExecutorTemperature  float32 `envconfig:"EXECUTOR_TEMPERATURE" split_words:"true" default:"-1"`
	HistorianTemperature float32 `envconfig:"HISTORIAN_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model and temperature for one agent role.
func (c Config) OpenRouterFor(role contractx.AgentRole) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	var temp float32

	switch role {
	case contractx.RoleCritic:
		temp = defaultCriticTemperature
		if v := strings.TrimSpace(c.CriticModel); v != "" {
			modelName = v
		}
		if c.CriticTemperature >= 0 {
			temp = c.CriticTemperature
		}
	case contractx.RoleMeta:
		temp = defaultMetaTemperature
		if v := strings.TrimSpace(c.MetaModel); v != "" {
			modelName = v
		}
		if c.MetaTemperature >= 0 {
			temp = c.MetaTemperature
		}
	case contractx.RoleExecutor:
		temp = defaultExecutorTemperature
		if v := strings.TrimSpace(c.ExecutorModel); v != "" {
			modelName = v
		}
		if c.ExecutorTemperature >= 0 {
			temp = c.ExecutorTemperature
		}
	case contractx.RoleHistorian:
		temp = defaultHistorianTemperature
		if v := strings.TrimSpace(c.HistorianModel); v != "" {
			modelName = v
		}
		if c.HistorianTemperature >= 0 {
			temp = c.HistorianTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
