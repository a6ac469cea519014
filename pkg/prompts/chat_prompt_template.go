package prompts

import (
	"github.com/medassist-ai/medassist/pkg/llms"
)

// MessagePromptTemplate renders a single chat message with a fixed role.
type MessagePromptTemplate struct {
	Role   llms.Role
	Prompt PromptTemplate
}

var _ MessageFormatter = MessagePromptTemplate{}

// NewSystemMessagePromptTemplate creates a new system message prompt template.
func NewSystemMessagePromptTemplate(template string, inputVariables []string) MessagePromptTemplate {
	return MessagePromptTemplate{
		Role:   llms.RoleSystem,
		Prompt: NewPromptTemplate(template, inputVariables),
	}
}

// NewHumanMessagePromptTemplate creates a new human message prompt template.
func NewHumanMessagePromptTemplate(template string, inputVariables []string) MessagePromptTemplate {
	return MessagePromptTemplate{
		Role:   llms.RoleHuman,
		Prompt: NewPromptTemplate(template, inputVariables),
	}
}

// NewAIMessagePromptTemplate creates a new AI message prompt template.
func NewAIMessagePromptTemplate(template string, inputVariables []string) MessagePromptTemplate {
	return MessagePromptTemplate{
		Role:   llms.RoleAI,
		Prompt: NewPromptTemplate(template, inputVariables),
	}
}

// FormatMessages formats the message with the values given.
func (p MessagePromptTemplate) FormatMessages(values map[string]any) ([]llms.Message, error) {
	text, err := p.Prompt.Format(values)
	if err != nil {
		return nil, err
	}
	return []llms.Message{
		llms.MessageFromTextParts(p.Role, text),
	}, nil
}

// GetInputVariables returns the input variables the prompt expects.
func (p MessagePromptTemplate) GetInputVariables() []string {
	return p.Prompt.InputVariables
}

// ChatPromptTemplate is a prompt template for chat messages.
type ChatPromptTemplate struct {
	// Messages is the list of the messages to be formatted.
	Messages []MessageFormatter
}

var _ FormatPrompter = ChatPromptTemplate{}

// NewChatPromptTemplate creates a new chat prompt template from a list of
// message formatters.
func NewChatPromptTemplate(messages []MessageFormatter) ChatPromptTemplate {
	return ChatPromptTemplate{
		Messages: messages,
	}
}

// FormatPrompt formats the messages into a chat prompt value.
func (p ChatPromptTemplate) FormatPrompt(values map[string]any) (llms.PromptValue, error) {
	formattedMessages := make([]llms.Message, 0, len(p.Messages))
	for _, m := range p.Messages {
		curFormattedMessages, err := m.FormatMessages(values)
		if err != nil {
			return nil, err
		}
		formattedMessages = append(formattedMessages, curFormattedMessages...)
	}

	return ChatPromptValue(formattedMessages), nil
}

// GetInputVariables returns the combined input variables of all messages.
func (p ChatPromptTemplate) GetInputVariables() []string {
	inputVariablesMap := make(map[string]bool)
	for _, msg := range p.Messages {
		for _, variable := range msg.GetInputVariables() {
			inputVariablesMap[variable] = true
		}
	}
	inputVariables := make([]string, 0, len(inputVariablesMap))
	for variable := range inputVariablesMap {
		inputVariables = append(inputVariables, variable)
	}
	return inputVariables
}
