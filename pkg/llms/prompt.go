package llms

// PromptValue is the interface that all prompt values must implement.
// It allows a formatted prompt to be rendered either as a single string
// or as a list of chat messages.
type PromptValue interface {
	String() string
	Messages() []Message
}
