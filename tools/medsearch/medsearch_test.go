package medsearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/medassist-ai/medassist/tools/medsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req tavilyModels.SearchRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		assert.NoError(t, err)

		assert.Equal(t, "latest hypertension treatment guidelines", req.Query)
		assert.Contains(t, req.IncludeDomains, "nih.gov")

		resp := medsearch.SearchResult{
			Results: []tavilyModels.SearchResult{
				{Title: "Hypertension Guideline Update", URL: "https://www.nih.gov/htn", Content: "Target below 130/80.", Score: 0.9},
			},
		}
		if req.IncludeAnswer {
			resp.Answer = "Target blood pressure is below 130/80."
		}

		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	ctx := context.Background()

	tool, err := medsearch.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).WithHTTPClient(server.Client())

	assert.Equal(t, medsearch.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "medical sources")

	params := llmutils.ToJSONIndent(tool.Parameters())
	expParams := `{
	"properties": {
		"Query": {
			"type": "string",
			"title": "Query",
			"description": "The medical question to search the web for."
		}
	},
	"type": "object",
	"required": [
		"Query"
	]
}`
	assert.Equal(t, expParams, params)

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))
	assert.EqualError(t, err, "failed to unmarshal input: check the schema and try again")

	_, err = tool.Run(ctx, &medsearch.SearchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")

	input := &medsearch.SearchRequest{
		Query: "latest hypertension treatment guidelines",
	}

	resp, err := tool.Run(ctx, input)
	require.NoError(t, err)
	exp := `ANSWER: Target blood pressure is below 130/80.
- URL: https://www.nih.gov/htn
  TITLE: Hypertension Guideline Update
  SCORE: 0.900000
  CONTENT: Target below 130/80.
`
	assert.Equal(t, exp, resp.String())

	resp2, err := tool.Call(ctx, llmutils.ToJSON(input))
	require.NoError(t, err)
	exp = `{"results":[{"title":"Hypertension Guideline Update","url":"https://www.nih.gov/htn","content":"Target below 130/80.","score":0.9}],"answer":"Target blood pressure is below 130/80."}`
	assert.Equal(t, exp, resp2)
}

func Test_Tool_NoAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := medsearch.New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func Test_Tool_CustomDomains(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "testkey")

	var gotDomains []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tavilyModels.SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotDomains = req.IncludeDomains
		_ = json.NewEncoder(w).Encode(medsearch.SearchResult{})
	}))
	defer server.Close()

	tool, err := medsearch.New()
	require.NoError(t, err)
	tool.WithBaseURL(server.URL).
		WithHTTPClient(server.Client()).
		WithDomains([]string{"uptodate.com"})

	_, err = tool.Run(context.Background(), &medsearch.SearchRequest{Query: "statin interactions"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uptodate.com"}, gotDomains)
}
