package models

// AppMode represents the current operating mode of the application
type AppMode int

const (
	ModeChat AppMode = iota // Direct conversation without documents
	ModeRAG                 // Knowledge-augmented querying over uploaded documents
)

func (m AppMode) String() string {
	if m == ModeRAG {
		return "RAG"
	}
	return "Chat"
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatListItem struct {
	ID             int64
	UpdatedAtUnix  int64
	LastUserPrompt string
	ModelName      string
}

type DBMessage struct {
	Role    string
	Content string
}
