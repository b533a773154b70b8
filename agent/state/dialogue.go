package state

type DialogueRole string

const (
	RoleUser      DialogueRole = "user"
	RoleAssistant DialogueRole = "assistant"
)

// DialogueTurn is one entry of the canonical, append-only conversation log.
// The log is never truncated except by explicit reset.
type DialogueTurn struct {
	Role    DialogueRole `json:"role"`
	Content string       `json:"content"`
}

// RecentWindow is how many dialogue turns are serialized into any oracle
// payload; older turns stay in the log but off the prompt.
const RecentWindow = 12

// TailTurns returns at most the RecentWindow most recent turns.
func TailTurns(dialogue []DialogueTurn) []DialogueTurn {
	if len(dialogue) <= RecentWindow {
		return dialogue
	}
	return dialogue[len(dialogue)-RecentWindow:]
}
