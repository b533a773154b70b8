package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/critic.txt
	criticRaw string

	//go:embed template/meta.txt
	metaRaw string

	//go:embed template/executor.txt
	executorRaw string

	//go:embed template/history.txt
	historyRaw string
)

// PromptSet holds loaded prompt content. The executor entry is a
// text/template body; the others are used verbatim as system prompts.
type PromptSet struct {
	Critic   string
	Meta     string
	Executor string
	History  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Critic:   strings.TrimSpace(criticRaw),
		Meta:     strings.TrimSpace(metaRaw),
		Executor: strings.TrimSpace(executorRaw),
		History:  strings.TrimSpace(historyRaw),
	}
}
