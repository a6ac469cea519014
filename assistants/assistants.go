package assistants

import (
	"context"
	"fmt"
	"strings"

	"github.com/effective-security/xlog"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/tools"
)

var logger = xlog.NewPackageLogger("github.com/medassist-ai/medassist", "assistants")

//go:generate mockgen -destination=../mocks/mockllms/llm_mock.gen.go -package mockllms github.com/medassist-ai/medassist/pkg/llms Model,Embedder

const (
	// DefaultMaxRetries is the number of retries on an empty LLM response.
	DefaultMaxRetries = 3
	// DefaultMaxMessages is the maximum number of messages in a single run.
	DefaultMaxMessages = 100
	// DefaultMaxToolCalls is the maximum number of tool calls in a single run.
	DefaultMaxToolCalls = 10
	// DefaultMaxContentSize is the maximum content size in bytes sent to the LLM.
	DefaultMaxContentSize = 256 * 1024
)

// CallInput is the input for an assistant call.
type CallInput struct {
	// Input is the user input.
	Input string
	// PromptInputs are the values for the system prompt template.
	PromptInputs map[string]any
	// Messages are additional messages appended after the history.
	Messages []llms.Message
	// Options are per call options.
	Options []Option
}

// ProvidePromptInputsFunc provides extra prompt inputs for the system prompt,
// based on the user input.
type ProvidePromptInputsFunc func(ctx context.Context, input string) (map[string]any, error)

// IAssistant describes a chat assistant.
type IAssistant interface {
	// Name returns the name of the Assistant.
	Name() string
	// Description returns the description of the Assistant, to be used in the prompt of other Assistants or LLMs.
	// Should not exceed LLM model limit.
	Description() string
	// FormatPrompt formats the system prompt with the provided values.
	FormatPrompt(values map[string]any) (llms.PromptValue, error)
	// GetPromptInputVariables returns the input variables of the system prompt.
	GetPromptInputVariables() []string
	// GetTools returns the tools registered with the Assistant.
	GetTools() []tools.ITool

	// Call executes the assistant and returns the raw response.
	Call(ctx context.Context, input *CallInput) (*llms.ContentResponse, error)
}

// TypeableAssistant is an assistant with a typed output.
type TypeableAssistant[O chatmodel.ContentProvider] interface {
	IAssistant
	// Run executes the assistant and parses the response into the output type,
	// when optionalOutputType is provided.
	Run(ctx context.Context, input *CallInput, optionalOutputType *O) (*llms.ContentResponse, error)
}

// IAssistantTool is a tool backed by an assistant,
// allowing per call options to be passed through.
type IAssistantTool interface {
	tools.ITool
	CallAssistant(ctx context.Context, input string, options ...Option) (string, error)
}

// Callback receives the events of an assistant run.
type Callback interface {
	tools.Callback
	OnAssistantStart(ctx context.Context, assistant IAssistant, input string)
	OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message)
	OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message)
	OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error)
	OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, payload []llms.Message)
	OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse)
	OnToolNotFound(ctx context.Context, assistant IAssistant, tool string)
}

// GetDescriptions returns a markdown list of the assistants,
// to be used in the prompt of a routing assistant.
func GetDescriptions(list ...IAssistant) string {
	var ts strings.Builder
	for _, item := range list {
		ts.WriteString(fmt.Sprintf("- `%s`: %s\n", item.Name(), item.Description()))
	}
	return ts.String()
}

// MapAssistants returns a map of assistants by name.
func MapAssistants(list ...IAssistant) map[string]IAssistant {
	if len(list) == 0 {
		return nil
	}
	m := make(map[string]IAssistant, len(list))
	for _, a := range list {
		m[a.Name()] = a
	}
	return m
}
