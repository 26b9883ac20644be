package tabletalk

import "strings"

// DefaultModel is used when a query does not select a model.
const DefaultModel = "gpt-4o"

// chatModels are the chat-class models with the larger context windows.
// Anything else is treated as a constrained completion-class backend and
// gets the smaller structured-document field budget.
var chatModels = []string{
	"gpt-4",
	"gpt-4o",
	"gpt-4-32k",
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-16k",
	"gpt-3.5-turbo-0613",
	"gpt-3.5-turbo-16k-0613",
}

// chatModelPrefixes match whole model families that are chat-class.
var chatModelPrefixes = []string{"gpt-4o-", "claude-", "gemini-"}

// IsChatModel reports whether the model supports chat-class context sizes.
func IsChatModel(model string) bool {
	for _, m := range chatModels {
		if model == m {
			return true
		}
	}
	for _, p := range chatModelPrefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

// Structured-document per-field budgets, in runes.
const (
	chatFieldBudget       = 13000
	completionFieldBudget = 4000
)

// FieldBudget returns the per-field truncation length the STRUCTURED
// variant uses for the given model.
func FieldBudget(model string) int {
	if IsChatModel(model) {
		return chatFieldBudget
	}
	return completionFieldBudget
}
