package domain

// Message roles as they arrive from chat clients. Roles other than user and
// assistant are carried through untouched but never used for retrieval.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation scoped to a single document.
type Message struct {
	Role    string
	Content string
}

// LatestUserQuestion returns the content of the most recent user message.
// Only that message forms the retrieval query; earlier turns are not folded
// in.
func LatestUserQuestion(messages []Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && messages[i].Content != "" {
			return messages[i].Content, nil
		}
	}
	return "", ErrNoQuestion
}
