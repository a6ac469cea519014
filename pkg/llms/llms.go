package llms

import (
	"context"
)

// ProviderType is the type of chat-completion provider.
type ProviderType string

const (
	// ProviderOpenAI is the OpenAI chat completions API.
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderAzure is the Azure OpenAI deployment API.
	ProviderAzure ProviderType = "AZURE"
	// ProviderAnthropic is the Anthropic messages API.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderPerplexity is the Perplexity OpenAI-compatible API.
	ProviderPerplexity ProviderType = "PERPLEXITY"
)

// Model is the interface chat models implement.
type Model interface {
	// GetName returns the configured model name.
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent asks the model to generate content from a sequence of
	// messages. It's the most general interface for chat-like interactions,
	// including tool calling.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Embedder is implemented by models that can produce vector embeddings.
type Embedder interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota

	// Structured response formats
	CapabilityJSONResponse
	CapabilityJSONSchema
	CapabilityJSONSchemaStrict

	// Function/tool calling
	CapabilityFunctionCalling
	CapabilityMultiToolCalling
	CapabilityToolCallStreaming

	// Embeddings
	CapabilityEmbeddings

	// System prompt support
	CapabilitySystemPrompt
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOpenAI: CapabilityText |
		CapabilityJSONResponse |
		CapabilityJSONSchema |
		CapabilityJSONSchemaStrict |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilityToolCallStreaming |
		CapabilityEmbeddings |
		CapabilitySystemPrompt,

	ProviderAzure: CapabilityText |
		CapabilityJSONResponse |
		CapabilityJSONSchema |
		CapabilityJSONSchemaStrict |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilityEmbeddings |
		CapabilitySystemPrompt,

	ProviderAnthropic: CapabilityText |
		CapabilityJSONResponse |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,

	ProviderPerplexity: CapabilityText |
		CapabilitySystemPrompt |
		CapabilityJSONResponse |
		CapabilityJSONSchema |
		CapabilityJSONSchemaStrict,
}

func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
