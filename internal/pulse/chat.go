package pulse

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Greeting opens every assistant conversation.
const Greeting = "Hello! I'm your city assistant. Report an issue or ask me about your route."

// ChatFailure is shown in the conversation when the assistant call fails.
const ChatFailure = "Sorry, I encountered an error processing your report. Please try again."

// ChatMessage is one turn in the assistant conversation.
type ChatMessage struct {
	Sender Sender
	Text   string
	// Image is the attachment path shown with a user message, if any.
	Image string
}

// NewConversation returns a conversation holding only the greeting.
func NewConversation() []ChatMessage {
	return []ChatMessage{{Sender: SenderAI, Text: Greeting}}
}
