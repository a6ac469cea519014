package assistants

import (
	"context"

	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/encoding"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/schema"
	"github.com/medassist-ai/medassist/store"
)

// Option is a function that can be used to modify the behavior of the Assistant Config.
type Option func(*Config)

type Config struct {
	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// StopWords is a list of words to stop on to use in an LLM call.
	StopWords    []string
	stopWordsSet bool

	// TopK is the number of tokens to consider for top-k sampling in an LLM call.
	TopK    int
	topkSet bool

	// TopP is the cumulative probability for top-p sampling in an LLM call.
	TopP    float64
	toppSet bool

	// Seed is a seed for deterministic sampling in an LLM call.
	Seed    int
	seedSet bool

	// MaxLength is the maximum content size in bytes sent to the LLM.
	MaxLength    int
	maxLengthSet bool

	// Tools is a list of tools to use. Each tool can be a specific tool or a function.
	Tools    []llms.Tool
	toolsSet bool

	// ToolChoice is the choice of tool to use, it can either be "none", "auto"
	// (the default behavior), or a specific tool as described in the ToolChoice type.
	ToolChoice    any
	toolChoiceSet bool

	// CallbackHandler receives the events of the run.
	CallbackHandler Callback

	// StreamingFunc is a function to be called for each chunk of a streaming response.
	// Return an error to stop streaming early.
	StreamingFunc func(ctx context.Context, chunk []byte) error

	// ResponseFormat is the response format for providers with JSON schema support.
	ResponseFormat *schema.ResponseFormat

	// Store keeps the chat history for the session in the context.
	Store store.MessageStore

	// PromptInput provides default values for the system prompt template.
	PromptInput map[string]any
	// Examples are few-shot examples added after the system prompt.
	Examples chatmodel.FewShotExamples
	// Mode is the encoding mode for the typed output.
	Mode encoding.Mode

	// MaxMessages is the maximum number of messages in a single run.
	MaxMessages int
	// MaxToolCalls is the maximum number of tool calls in a single run.
	MaxToolCalls int

	// SkipMessageHistory skips adding the run messages to the store.
	SkipMessageHistory bool
	// SkipToolHistory skips adding tool calls and responses to the run messages.
	SkipToolHistory bool
	// IsGeneric marks the run messages with the generic role,
	// annotated with the assistant name.
	IsGeneric bool
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Mode:        encoding.ModeDefault,
		MaxMessages: DefaultMaxMessages,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Apply returns a copy of the config with the options applied.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMode is an option that allows to specify the encoding mode.
func WithMode(mode encoding.Mode) Option {
	return func(o *Config) {
		o.Mode = mode
	}
}

// WithStore is an option that allows to specify the chat history store.
func WithStore(s store.MessageStore) Option {
	return func(o *Config) {
		o.Store = s
	}
}

// WithExamples is an option that allows to specify the few-shot examples for the system prompt.
func WithExamples(examples chatmodel.FewShotExamples) Option {
	return func(o *Config) {
		o.Examples = examples
	}
}

// WithSkipMessageHistory is an option that allows to skip adding Assistant messages to History.
func WithSkipMessageHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipMessageHistory = skip
	}
}

// WithSkipToolHistory is an option that allows to skip adding tool calls to the run messages.
func WithSkipToolHistory(skip bool) Option {
	return func(o *Config) {
		o.SkipToolHistory = skip
	}
}

// WithGenericRole is an option that marks the run messages with the generic role.
func WithGenericRole(generic bool) Option {
	return func(o *Config) {
		o.IsGeneric = generic
	}
}

// WithPromptInput is an option that allows the user to specify the system prompt input.
func WithPromptInput(input map[string]any) Option {
	return func(o *Config) {
		o.PromptInput = input
	}
}

// WithMaxMessages is an option that limits the number of messages in a single run.
func WithMaxMessages(limit int) Option {
	return func(o *Config) {
		o.MaxMessages = limit
	}
}

// WithMaxToolCalls is an option that limits the number of tool calls in a single run.
func WithMaxToolCalls(limit int) Option {
	return func(o *Config) {
		o.MaxToolCalls = limit
	}
}

// WithModel is an option for LLM.Call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for LLM.Call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for LLM.Call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithStreamingFunc is an option for LLM.Call that allows streaming responses.
func WithStreamingFunc(streamingFunc func(ctx context.Context, chunk []byte) error) Option {
	return func(o *Config) {
		o.StreamingFunc = streamingFunc
	}
}

// WithTopK will add an option to use top-k sampling for LLM.Call.
func WithTopK(topK int) Option {
	return func(o *Config) {
		o.TopK = topK
		o.topkSet = true
	}
}

// WithTopP	will add an option to use top-p sampling for LLM.Call.
func WithTopP(topP float64) Option {
	return func(o *Config) {
		o.TopP = topP
		o.toppSet = true
	}
}

// WithSeed will add an option to use deterministic sampling for LLM.Call.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithMaxLength will add an option to set the maximum content size in bytes.
func WithMaxLength(maxLength int) Option {
	return func(o *Config) {
		o.MaxLength = maxLength
		o.maxLengthSet = true
	}
}

// WithStopWords is an option for setting the stop words for LLM.Call.
func WithStopWords(stopWords []string) Option {
	return func(o *Config) {
		o.StopWords = stopWords
		o.stopWordsSet = true
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// WithTools is an option for LLM.Call.
func WithTools(tools []llms.Tool) Option {
	return func(o *Config) {
		o.Tools = tools
		o.toolsSet = true
	}
}

// WithTool is an option for LLM.Call.
func WithTool(tool llms.Tool) Option {
	return func(o *Config) {
		o.Tools = append(o.Tools, tool)
		o.toolsSet = true
	}
}

// WithToolChoice is an option for LLM.Call.
func WithToolChoice(choice any) Option {
	return func(o *Config) {
		o.ToolChoice = choice
		o.toolChoiceSet = true
	}
}

// GetCallOptions converts the config, with extra options applied,
// into LLM call options.
func (c *Config) GetCallOptions(options ...Option) []llms.CallOption {
	cfg := c.Apply(options...)

	var callOptions []llms.CallOption
	if cfg.modelSet {
		callOptions = append(callOptions, llms.WithModel(cfg.Model))
	}
	if cfg.maxTokensSet {
		callOptions = append(callOptions, llms.WithMaxTokens(cfg.MaxTokens))
	}
	if cfg.temperatureSet {
		callOptions = append(callOptions, llms.WithTemperature(cfg.Temperature))
	}
	if cfg.stopWordsSet {
		callOptions = append(callOptions, llms.WithStopWords(cfg.StopWords))
	}
	if cfg.topkSet {
		callOptions = append(callOptions, llms.WithTopK(cfg.TopK))
	}
	if cfg.toppSet {
		callOptions = append(callOptions, llms.WithTopP(cfg.TopP))
	}
	if cfg.seedSet {
		callOptions = append(callOptions, llms.WithSeed(cfg.Seed))
	}
	if cfg.toolsSet {
		callOptions = append(callOptions, llms.WithTools(cfg.Tools))
	}
	if cfg.toolChoiceSet {
		callOptions = append(callOptions, llms.WithToolChoice(cfg.ToolChoice))
	}
	if cfg.ResponseFormat != nil {
		callOptions = append(callOptions, llms.WithResponseFormat(cfg.ResponseFormat))
	}
	if cfg.StreamingFunc != nil {
		callOptions = append(callOptions, llms.WithStreamingFunc(cfg.StreamingFunc))
	}

	return callOptions
}
