package prompts

import (
	"strings"

	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/llmutils"
)

var _ llms.PromptValue = ChatPromptValue{}

// ChatPromptValue is a formatted prompt as a list of chat messages.
type ChatPromptValue []llms.Message

// String renders the messages as "ROLE: text" lines.
func (v ChatPromptValue) String() string {
	var b strings.Builder
	llmutils.PrintMessages(&b, v)
	return b.String()
}

// Messages returns the message slice.
func (v ChatPromptValue) Messages() []llms.Message {
	return v
}
