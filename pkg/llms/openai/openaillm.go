package openai

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/schema"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

var (
	ErrEmptyResponse            = errors.New("openai: no response")
	ErrMissingToken             = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
	ErrUnexpectedResponseLength = errors.New("openai: unexpected length of response")
	ErrUnsupportedMessageType   = errors.New("openai: unsupported message type")
)

// LLM is the OpenAI chat model client, also serving Azure OpenAI and
// other OpenAI-compatible endpoints.
type LLM struct {
	client  openaisdk.Client
	options *options
}

var (
	_ llms.Model    = (*LLM)(nil)
	_ llms.Embedder = (*LLM)(nil)
)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		token:          os.Getenv(tokenEnvVarName),
		model:          os.Getenv(modelEnvVarName),
		baseURL:        os.Getenv(baseURLEnvVarName),
		organization:   os.Getenv(orgEnvVarName),
		provider:       ProviderOpenAI,
		apiVersion:     DefaultAPIVersion,
		embeddingModel: DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.token) == 0 {
		return nil, ErrMissingToken
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(o.token),
		option.WithMaxRetries(2),
	}
	if o.provider == ProviderAzure {
		if o.baseURL == "" {
			return nil, errors.New("openai: base URL is required for Azure")
		}
		sdkOpts = append(sdkOpts, azure.WithEndpoint(o.baseURL, o.apiVersion))
	} else if o.baseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(o.baseURL))
	}
	if o.organization != "" {
		sdkOpts = append(sdkOpts, option.WithOrganization(o.organization))
	}
	if o.httpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(o.httpClient))
	}

	return &LLM{
		client:  openaisdk.NewClient(sdkOpts...),
		options: o,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.options.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	switch o.options.provider {
	case ProviderAzure:
		return llms.ProviderAzure
	case ProviderPerplexity:
		return llms.ProviderPerplexity
	default:
		return llms.ProviderOpenAI
	}
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model:          o.options.model,
		ResponseFormat: o.options.responseFormat,
	}
	for _, opt := range options {
		opt(&opts)
	}

	sdkMessages, err := processMessages(messages)
	if err != nil {
		return nil, err
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(values.StringsCoalesce(opts.Model, o.options.model)),
		Messages: sdkMessages,
	}

	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openaisdk.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openaisdk.Float(opts.TopP)
	}
	if opts.Seed > 0 {
		params.Seed = openaisdk.Int(int64(opts.Seed))
	}
	if opts.N > 0 {
		params.N = openaisdk.Int(int64(opts.N))
	}
	if opts.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openaisdk.Float(opts.FrequencyPenalty)
	}
	if opts.PresencePenalty != 0 {
		params.PresencePenalty = openaisdk.Float(opts.PresencePenalty)
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openaisdk.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.StopWords,
		}
	}

	tools, err := toTools(opts.Tools)
	if err != nil {
		return nil, err
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	if opts.ResponseFormat != nil {
		rf, err := toResponseFormat(opts.ResponseFormat)
		if err != nil {
			return nil, err
		}
		params.ResponseFormat = *rf
	}

	var completion *openaisdk.ChatCompletion
	if opts.StreamingFunc != nil {
		completion, err = o.generateStreaming(ctx, params, opts.StreamingFunc)
	} else {
		completion, err = o.client.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to create chat completion")
	}
	if len(completion.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(completion.Choices))
	for i, c := range completion.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				"InputTokens":     completion.Usage.PromptTokens,
				"OutputTokens":    completion.Usage.CompletionTokens,
				"TotalTokens":     completion.Usage.TotalTokens,
				"ReasoningTokens": completion.Usage.CompletionTokensDetails.ReasoningTokens,
				"ID":              completion.ID,
			},
		}

		for _, tool := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: string(tool.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
		// populate legacy single-function call field
		if len(choices[i].ToolCalls) > 0 {
			choices[i].FuncCall = choices[i].ToolCalls[0].FunctionCall
		}
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

func (o *LLM) generateStreaming(ctx context.Context, params openaisdk.ChatCompletionNewParams, streamingFunc func(context.Context, []byte) error) (*openaisdk.ChatCompletion, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var acc openaisdk.ChatCompletionAccumulator
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if err := streamingFunc(ctx, []byte(chunk.Choices[0].Delta.Content)); err != nil {
				return nil, errors.Wrap(err, "openai: streaming function error")
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, errors.Wrap(err, "openai: streaming error")
	}
	return &acc.ChatCompletion, nil
}

// CreateEmbedding creates embeddings for the given input texts.
func (o *LLM) CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(o.options.embeddingModel),
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: inputTexts,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to create embeddings")
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	if len(resp.Data) != len(inputTexts) {
		return nil, ErrUnexpectedResponseLength
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// processMessages converts chat messages to SDK message parameters.
func processMessages(messages []llms.Message) ([]openaisdk.ChatCompletionMessageParamUnion, error) {
	chatMsgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, mc := range messages {
		switch mc.Role {
		case llms.RoleSystem:
			chatMsgs = append(chatMsgs, openaisdk.SystemMessage(mc.GetContent()))
		case llms.RoleHuman, llms.RoleGeneric:
			chatMsgs = append(chatMsgs, openaisdk.UserMessage(mc.GetContent()))
		case llms.RoleAI:
			msg, err := handleAIMessage(mc)
			if err != nil {
				return nil, err
			}
			chatMsgs = append(chatMsgs, msg)
		case llms.RoleTool:
			if len(mc.Parts) != 1 {
				return nil, errors.Errorf("openai: expected exactly one part for role %v, got %v", mc.Role, len(mc.Parts))
			}
			p, ok := mc.Parts[0].(llms.ToolCallResponse)
			if !ok {
				return nil, errors.Errorf("openai: expected part of type ToolCallResponse for role %v, got %T", mc.Role, mc.Parts[0])
			}
			chatMsgs = append(chatMsgs, openaisdk.ToolMessage(p.Content, p.ToolCallID))
		default:
			return nil, errors.WithMessagef(ErrUnsupportedMessageType, "openai: %v", mc.Role)
		}
	}
	return chatMsgs, nil
}

func handleAIMessage(mc llms.Message) (openaisdk.ChatCompletionMessageParamUnion, error) {
	var text string
	var toolCalls []openaisdk.ChatCompletionMessageToolCallUnionParam
	for _, part := range mc.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			text += p.Text
		case llms.ToolCall:
			toolCalls = append(toolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
				OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
					ID: p.ID,
					Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
						Name:      p.FunctionCall.Name,
						Arguments: p.FunctionCall.Arguments,
					},
				},
			})
		default:
			return openaisdk.ChatCompletionMessageParamUnion{}, errors.Errorf("openai: unsupported AI message part type: %T", part)
		}
	}

	if len(toolCalls) == 0 {
		return openaisdk.AssistantMessage(text), nil
	}

	assistant := openaisdk.ChatCompletionAssistantMessageParam{
		ToolCalls: toolCalls,
	}
	if text != "" {
		assistant.Content.OfString = openaisdk.String(text)
	}
	return openaisdk.ChatCompletionMessageParamUnion{
		OfAssistant: &assistant,
	}, nil
}

// toTools converts tool definitions to SDK tool parameters.
func toTools(tools []llms.Tool) ([]openaisdk.ChatCompletionToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	sdkTools := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Type != "function" || tool.Function == nil {
			return nil, errors.Errorf("openai: tool type %q not supported", tool.Type)
		}
		params, err := schemaToMap(tool.Function.Parameters)
		if err != nil {
			return nil, err
		}
		fn := shared.FunctionDefinitionParam{
			Name:       tool.Function.Name,
			Parameters: params,
		}
		if tool.Function.Description != "" {
			fn.Description = openaisdk.String(tool.Function.Description)
		}
		if tool.Function.Strict {
			fn.Strict = openaisdk.Bool(true)
		}
		sdkTools = append(sdkTools, openaisdk.ChatCompletionFunctionTool(fn))
	}
	return sdkTools, nil
}

func toResponseFormat(rf *schema.ResponseFormat) (*openaisdk.ChatCompletionNewParamsResponseFormatUnion, error) {
	switch rf.Type {
	case "json_schema":
		if rf.JSONSchema == nil {
			return nil, errors.New("openai: json_schema response format requires a schema")
		}
		var schemaMap map[string]any
		bs, err := json.Marshal(rf.JSONSchema.Schema)
		if err != nil {
			return nil, errors.Wrap(err, "openai: failed to marshal response schema")
		}
		if err := json.Unmarshal(bs, &schemaMap); err != nil {
			return nil, errors.Wrap(err, "openai: failed to unmarshal response schema")
		}
		return &openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   rf.JSONSchema.Name,
					Strict: openaisdk.Bool(rf.JSONSchema.Strict),
					Schema: schemaMap,
				},
			},
		}, nil
	case "json_object":
		return &openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}, nil
	default:
		return &openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfText: &shared.ResponseFormatTextParam{},
		}, nil
	}
}

func schemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	if s == nil {
		return map[string]any{"type": "object"}, nil
	}
	bs, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to marshal tool parameters")
	}
	var m map[string]any
	if err := json.Unmarshal(bs, &m); err != nil {
		return nil, errors.Wrap(err, "openai: failed to unmarshal tool parameters")
	}
	return m, nil
}
