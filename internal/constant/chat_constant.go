package constant

const (
	ChatMessageRoleHuman = "human"
	ChatMessageRoleAI    = "ai"

	// SentinelTitle is what the title model returns for vague or greeting-only
	// input. A session carrying it is eligible for a rename once more context
	// has accumulated.
	SentinelTitle = "New Chat"

	// RenameContextMessageCount is how many of the most recent turns are
	// joined into the rename prompt context.
	RenameContextMessageCount = 4

	// Ollama role names differ from the roles we persist.
	OllamaRoleUser      = "user"
	OllamaRoleAssistant = "assistant"
	OllamaRoleSystem    = "system"

	ChatSystemPrompt = `You are a helpful assistant that answers general questions from the user. Your goal is to provide quick, accurate, and helpful answers.
Make your answers short and concise while making sure to provide all the information the user is looking for.`

	TitleSystemPrompt = `You are a helpful assistant that creates concise, descriptive titles for chat sessions. Create a title that captures the main topic or purpose of the conversation.
Create a short title (3-5 words) for a chat session that starts with the message given. Do not include any other text in your response.
If the message is vague -- no context or just a greeting, return 'New Chat'`
)
