package model

var (
	chatHistoryTable   = "chat_history"
	sessionTitlesTable = "session_titles"
)

// SetTableNames overrides the persisted table names. GORM parses each model's
// schema once and caches it, so this must run before the first query touches
// either model.
func SetTableNames(chatHistory, sessionTitles string) {
	if chatHistory != "" {
		chatHistoryTable = chatHistory
	}
	if sessionTitles != "" {
		sessionTitlesTable = sessionTitles
	}
}
