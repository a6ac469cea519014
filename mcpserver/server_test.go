package mcpserver_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/medassist-ai/medassist/mcpserver"
	"github.com/medassist-ai/medassist/mocks/mockllms"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/tools/interactions"
	"github.com/medassist-ai/medassist/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func startClient(t *testing.T, srv *mcpserver.Server) *client.Client {
	t.Helper()
	ctx := context.Background()

	cli, err := client.NewInProcessClient(srv.MCP())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	require.NoError(t, cli.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1.0"}
	_, err = cli.Initialize(ctx, initReq)
	require.NoError(t, err)
	return cli
}

func Test_Server_Tools(t *testing.T) {
	ctx := context.Background()

	tool, err := interactions.New()
	require.NoError(t, err)

	srv, err := mcpserver.New(mcpserver.Config{}, nil, tool)
	require.NoError(t, err)

	cli := startClient(t, srv)

	toolsRes, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, toolsRes.Tools, 1)
	assert.Equal(t, interactions.ToolName, toolsRes.Tools[0].Name)

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = interactions.ToolName
	callReq.Params.Arguments = map[string]any{
		"Medications": []string{"Warfarin 5mg", "Aspirin 81mg"},
	}
	res, err := cli.CallTool(ctx, callReq)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "bleeding")

	// tool errors are reported as tool results, not protocol errors
	callReq.Params.Arguments = map[string]any{
		"Medications": []string{"Warfarin 5mg"},
	}
	res, err = cli.CallTool(ctx, callReq)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func Test_Server_ChatTool(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-4o").AnyTimes()
	mockLLM.EXPECT().
		GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{Content: `{"advice":"rest and fluids","urgency":"routine","escalateToClinician":false}`},
			},
		}, nil).
		Times(1)

	router := triage.NewRouter(nil, triage.NewAgenticResponder(mockLLM, nil), triage.ModeAgentic)

	srv, err := mcpserver.New(mcpserver.Config{Tenant: "mcp"}, router)
	require.NoError(t, err)

	cli := startClient(t, srv)

	toolsRes, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, toolsRes.Tools, 1)
	assert.Equal(t, mcpserver.ChatToolName, toolsRes.Tools[0].Name)

	callReq := mcp.CallToolRequest{}
	callReq.Params.Name = mcpserver.ChatToolName
	callReq.Params.Arguments = map[string]any{
		"input": "I have a mild headache, what should I do?",
	}
	res, err := cli.CallTool(ctx, callReq)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"advice":"rest and fluids"`)

	// empty input is rejected before the assistant runs
	callReq.Params.Arguments = map[string]any{"input": ""}
	res, err = cli.CallTool(ctx, callReq)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
