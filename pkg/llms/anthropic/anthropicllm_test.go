package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_New_Errors(t *testing.T) {
	t.Setenv(TokenEnvVarName, "")

	_, err := New()
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = New(WithToken("test-key"))
	assert.EqualError(t, err, "anthropic: model is required")
}

func Test_ProviderType(t *testing.T) {
	t.Parallel()

	llm, err := New(WithToken("test-key"), WithModel("claude-sonnet-4-20250514"))
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", llm.GetName())
	assert.Equal(t, llms.ProviderAnthropic, llm.GetProviderType())
}

func Test_GenerateContent(t *testing.T) {
	srv := newTestServer(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [{"type": "text", "text": "Rest, fluids and paracetamol as needed."}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 12, "output_tokens": 9}
	}`)

	llm, err := New(WithToken("test-key"), WithModel("claude-sonnet-4-20250514"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "You are a careful triage assistant."),
		llms.MessageFromTextParts(llms.RoleHuman, "I have a mild headache, what should I do?"),
	}
	resp, err := llm.GenerateContent(context.Background(), messages)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)

	c := resp.Choices[0]
	assert.Equal(t, "Rest, fluids and paracetamol as needed.", c.Content)
	assert.Equal(t, "end_turn", c.StopReason)
	assert.EqualValues(t, 12, c.GenerationInfo["InputTokens"])
	assert.EqualValues(t, 9, c.GenerationInfo["OutputTokens"])
	assert.EqualValues(t, 21, c.GenerationInfo["TotalTokens"])
	assert.Equal(t, "msg_1", c.GenerationInfo["ID"])
}

func Test_GenerateContent_ToolUse(t *testing.T) {
	srv := newTestServer(t, `{
		"id": "msg_2",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-20250514",
		"content": [
			{
				"type": "tool_use",
				"id": "toolu_1",
				"name": "check-drug-interactions",
				"input": {"Medications": ["warfarin", "aspirin"]}
			}
		],
		"stop_reason": "tool_use",
		"usage": {"input_tokens": 30, "output_tokens": 15}
	}`)

	llm, err := New(WithToken("test-key"), WithModel("claude-sonnet-4-20250514"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Can I take aspirin with warfarin?"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)

	c := resp.Choices[0]
	assert.Equal(t, "tool_use", c.StopReason)
	require.Len(t, c.ToolCalls, 1)
	assert.Equal(t, "toolu_1", c.ToolCalls[0].ID)
	assert.Equal(t, "check-drug-interactions", c.ToolCalls[0].FunctionCall.Name)
	assert.JSONEq(t, `{"Medications":["warfarin","aspirin"]}`, c.ToolCalls[0].FunctionCall.Arguments)
}

func Test_GenerateContent_RequestShape(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_3",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "ok"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	}))
	defer srv.Close()

	llm, err := New(WithToken("test-key"), WithModel("claude-sonnet-4-20250514"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "Be brief."),
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
		{
			Role: llms.RoleAI,
			Parts: []llms.ContentPart{
				llms.ToolCall{
					ID:   "toolu_1",
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      "patient-history",
						Arguments: `{"PatientID":"p1"}`,
					},
				},
			},
		},
		{
			Role: llms.RoleTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{ToolCallID: "toolu_1", Name: "patient-history", Content: "no known allergies"},
			},
		},
	}
	_, err = llm.GenerateContent(context.Background(), messages, llms.WithMaxTokens(200))
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", body["model"])
	assert.EqualValues(t, 200, body["max_tokens"])

	// the system prompt travels outside of the message list
	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "Be brief.", system[0].(map[string]any)["text"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	// tool results are sent back as user messages
	assert.Equal(t, "user", msgs[2].(map[string]any)["role"])
}

func Test_GenerateContent_EmptyResponse(t *testing.T) {
	srv := newTestServer(t, `{
		"id": "msg_4",
		"type": "message",
		"role": "assistant",
		"content": [],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 1, "output_tokens": 0}
	}`)

	llm, err := New(WithToken("test-key"), WithModel("claude-sonnet-4-20250514"), WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func Test_ProcessMessages_Errors(t *testing.T) {
	t.Parallel()

	_, _, err := processMessages([]llms.Message{
		{Role: llms.Role("unknown"), Parts: []llms.ContentPart{llms.TextContent{Text: "x"}}},
	})
	assert.ErrorIs(t, err, ErrUnsupportedMessageType)

	_, _, err = processMessages([]llms.Message{
		{Role: llms.RoleSystem, Parts: []llms.ContentPart{llms.ToolCall{ID: "x"}}},
	})
	assert.ErrorIs(t, err, ErrInvalidContentType)

	_, _, err = processMessages([]llms.Message{
		{Role: llms.RoleTool, Parts: []llms.ContentPart{llms.TextContent{Text: "not a tool response"}}},
	})
	assert.ErrorIs(t, err, ErrInvalidContentType)
}
