package assistants_test

import (
	"context"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/medassist-ai/medassist/assistants"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/encoding"
	"github.com/medassist-ai/medassist/mocks/mockllms"
	"github.com/medassist-ai/medassist/mocks/mocktools"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/prompts"
	"github.com/medassist-ai/medassist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func chatContext() context.Context {
	chatCtx := chatmodel.NewChatContext("t1", chatmodel.NewChatID(), "", nil)
	return chatmodel.WithChatContext(context.Background(), chatCtx)
}

func Test_Assistant_BuilderMethods(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()

	outputParser, err := encoding.NewTypedOutputParser(chatmodel.OutputResult{}, encoding.ModeJSON)
	require.NoError(t, err)

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt).
		WithOutputParser(outputParser).
		WithName("TestAssistant").
		WithDescription("Test Description")
	assert.Equal(t, "TestAssistant", assistant.Name())
	assert.Equal(t, "Test Description", assistant.Description())
	assert.Empty(t, assistant.GetTools())
	assert.Empty(t, assistant.LastRunMessages())
	assert.Empty(t, assistant.GetPromptInputVariables())

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("test_tool").AnyTimes()
	mockTool.EXPECT().Description().Return("Test tool description").AnyTimes()
	mockTool.EXPECT().Parameters().Return(&jsonschema.Schema{}).AnyTimes()

	assistant = assistant.WithTools(mockTool)
	tools := assistant.GetTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "test_tool", tools[0].Name())

	// adding the same tool again is a no-op
	assistant = assistant.WithTools(mockTool)
	assert.Len(t, assistant.GetTools(), 1)
}

func Test_Assistant_Run_RequiresChatContext(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt)
	_, err := assistant.Call(context.Background(), &assistants.CallInput{Input: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, chatmodel.ErrInvalidChatContext)
}

func Test_Assistant_Run_TypedOutput(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: `{"content":"the answer"}`},
			},
		}, nil).Times(1)

	memStore := store.NewMemoryStore()
	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt,
		assistants.WithStore(memStore),
	)

	ctx := chatContext()
	var out chatmodel.OutputResult
	resp, err := assistant.Run(ctx, &assistants.CallInput{Input: "question"}, &out)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "the answer", out.Content)

	// the run messages are persisted: human question and AI answer
	msgs := memStore.Messages(ctx)
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleHuman, msgs[0].Role)
	assert.Equal(t, llms.RoleAI, msgs[1].Role)
}

func Test_Assistant_Run_EmptyResponseRetries(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{Choices: []*llms.ContentChoice{}}, nil).Times(assistants.DefaultMaxRetries)

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt)
	_, err := assistant.Run(chatContext(), &assistants.CallInput{Input: "question"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func Test_Assistant_Run_ParseError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "not a json"}},
		}, nil).Times(1)

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt)
	var out chatmodel.OutputResult
	_, err := assistant.Run(chatContext(), &assistants.CallInput{Input: "question"}, &out)
	require.Error(t, err)
}

func Test_Assistant_Run_ToolCalls(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("lookup").AnyTimes()
	mockTool.EXPECT().Description().Return("Looks things up.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(&jsonschema.Schema{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), `{"q":"x"}`).Return("tool result", nil).Times(1)

	// first call requests the tool, second returns the answer
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:           "1",
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: "lookup", Arguments: `{"q":"x"}`},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: `{"content":"done"}`}},
		}, nil).Times(1)

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt).
		WithTools(mockTool)

	var out chatmodel.OutputResult
	_, err := assistant.Run(chatContext(), &assistants.CallInput{Input: "question"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "done", out.Content)

	// run messages include the tool call and its response
	var sawToolCall, sawToolResponse bool
	for _, msg := range assistant.LastRunMessages() {
		for _, part := range msg.Parts {
			switch part.(type) {
			case llms.ToolCall:
				sawToolCall = true
			case llms.ToolCallResponse:
				sawToolResponse = true
			}
		}
	}
	assert.True(t, sawToolCall)
	assert.True(t, sawToolResponse)
}

func Test_Assistant_Run_ToolNotFound(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("lookup").AnyTimes()
	mockTool.EXPECT().Description().Return("Looks things up.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(&jsonschema.Schema{}).AnyTimes()

	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:           "1",
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: "no_such_tool", Arguments: `{}`},
				}},
			}},
		}, nil).Times(1)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: `{"content":"recovered"}`}},
		}, nil).Times(1)

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt).
		WithTools(mockTool)

	var out chatmodel.OutputResult
	_, err := assistant.Run(chatContext(), &assistants.CallInput{Input: "question"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "recovered", out.Content)
}

func Test_Assistant_Run_ToolCallsLimit(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("You are helpful and friendly AI assistant.", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()

	mockTool := mocktools.NewMockTool[any, any](ctrl)
	mockTool.EXPECT().Name().Return("lookup").AnyTimes()
	mockTool.EXPECT().Description().Return("Looks things up.").AnyTimes()
	mockTool.EXPECT().Parameters().Return(&jsonschema.Schema{}).AnyTimes()
	mockTool.EXPECT().Call(gomock.Any(), gomock.Any()).Return("tool result", nil).AnyTimes()

	// the model keeps requesting the tool
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				ToolCalls: []llms.ToolCall{{
					ID:           "1",
					Type:         "function",
					FunctionCall: &llms.FunctionCall{Name: "lookup", Arguments: `{}`},
				}},
			}},
		}, nil).AnyTimes()

	assistant := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt,
		assistants.WithMaxToolCalls(2),
	).WithTools(mockTool)

	_, err := assistant.Run(chatContext(), &assistants.CallInput{Input: "question"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool calls limit")
}

func Test_GetDescriptions(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	systemPrompt := prompts.NewPromptTemplate("prompt", []string{})
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()

	a1 := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt).
		WithName("First").WithDescription("first assistant")
	a2 := assistants.NewAssistant[chatmodel.OutputResult](mockLLM, systemPrompt).
		WithName("Second").WithDescription("second assistant")

	exp := "- `First`: first assistant\n- `Second`: second assistant\n"
	assert.Equal(t, exp, assistants.GetDescriptions(a1, a2))

	m := assistants.MapAssistants(a1, a2)
	require.Len(t, m, 2)
	assert.Same(t, a1, m["First"].(*assistants.Assistant[chatmodel.OutputResult]))
}
