package domain

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation history, chronological order.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the immutable input of one workflow run.
type ChatRequest struct {
	Query        string    `json:"query"`
	History      []Message `json:"history"`
	OnlyRetrieve bool      `json:"only_retrieve"`
}

// ChatResult is the terminal output of one workflow run. FinalQuery is the
// query actually used for retrieval (after translation and rewrite), not the
// raw input. Contexts is empty on early-exit paths.
type ChatResult struct {
	Answer     string   `json:"answer"`
	FinalQuery string   `json:"final_query"`
	Contexts   []string `json:"contexts"`
}

// UserHistory extracts the user-side turns of a history, oldest first.
func UserHistory(history []Message) []string {
	out := make([]string, 0, len(history))
	for _, msg := range history {
		if msg.Role == RoleUser {
			out = append(out, msg.Content)
		}
	}
	return out
}
