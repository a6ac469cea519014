package llmutils_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/pkg/llmutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CleanJSON(t *testing.T) {
	t.Parallel()
	tcases := []struct {
		in  string
		exp string
	}{
		{in: `{"a":1}`, exp: `{"a":1}`},
		{in: "Sure, here you go: {\"a\":1}", exp: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", exp: `{"a":1}`},
		{in: `[1,2,3] trailing`, exp: `[1,2,3]`},
		{in: `no json at all`, exp: `no json at all`},
	}
	for _, tc := range tcases {
		assert.Equal(t, tc.exp, string(llmutils.CleanJSON([]byte(tc.in))), "input: %q", tc.in)
	}
}

func Test_TrimBackticks(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"a":1}`, llmutils.TrimBackticks("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llmutils.TrimBackticks("```\n{\"a\":1}\n```"))
	assert.Equal(t, `plain`, llmutils.TrimBackticks("plain"))
}

func Test_Comments(t *testing.T) {
	t.Parallel()
	withComment := llmutils.AddComment("assistant", "triage", "question", "hello")
	assert.Contains(t, withComment, "@role=assistant")
	assert.Contains(t, withComment, "hello")

	assert.Equal(t, "hello", llmutils.RemoveAllComments(withComment))
	assert.Equal(t, "keep", llmutils.StripComments("keep"))
}

func Test_JSONHelpers(t *testing.T) {
	t.Parallel()
	val := map[string]string{"advice": "rest"}
	assert.Equal(t, `{"advice":"rest"}`, llmutils.ToJSON(val))
	assert.Contains(t, llmutils.ToJSONIndent(val), "\t\"advice\"")
	assert.Contains(t, llmutils.ToYAML(val), "advice: rest")
	assert.Equal(t, "\n```json\n{\"a\":1}\n```\n", llmutils.BackticksJSON(` {"a":1} `))
}

func Test_MergeInputs(t *testing.T) {
	t.Parallel()
	merged := llmutils.MergeInputs(
		map[string]any{"a": 1, "b": 2},
		map[string]any{"b": 3, "c": 4},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, merged)
}

func Test_CountMessagesContentSize(t *testing.T) {
	t.Parallel()
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:           "1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "tool", Arguments: "{}"},
		}),
	}
	size := llmutils.CountMessagesContentSize(msgs)
	assert.Greater(t, size, uint64(10))
}

func Test_FindLastUserQuestion(t *testing.T) {
	t.Parallel()
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "first"),
		llms.MessageFromTextParts(llms.RoleAI, "answer"),
		llms.MessageFromTextParts(llms.RoleHuman, "second"),
	}
	assert.Equal(t, "second", llmutils.FindLastUserQuestion(msgs))
	assert.Empty(t, llmutils.FindLastUserQuestion(nil))
}

func Test_ExtractTag(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "cardiology", llmutils.ExtractTag("see #cardiology for details", "#"))
	assert.Equal(t, "nurse", llmutils.ExtractTag("route to @nurse\nplease", "@"))
	assert.Empty(t, llmutils.ExtractTag("no tags here", "#"))
}

func Test_EnsureEndsWithNewline(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hi\n", llmutils.EnsureEndsWithNewline("  hi "))
	assert.Equal(t, "", llmutils.EnsureEndsWithNewline("   "))
}

func Test_PrintMessages(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	llmutils.PrintMessages(&buf, []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	out := buf.String()
	require.Contains(t, out, "HUMAN: hello")
}

func Test_RedactPHI(t *testing.T) {
	t.Parallel()

	js := `{"first_name":"Ada","last_name":"Smith","dob":"1960-03-10","input":"my chest hurts"}`
	redacted := llmutils.RedactPHI(js)
	assert.NotContains(t, redacted, "Ada")
	assert.NotContains(t, redacted, "Smith")
	assert.NotContains(t, redacted, "1960-03-10")
	assert.Contains(t, redacted, "my chest hurts")
	assert.Contains(t, redacted, "[REDACTED]")

	// non-JSON passes through unchanged
	assert.Equal(t, "plain text", llmutils.RedactPHI("plain text"))
}

func Test_RedactPHI_Nested(t *testing.T) {
	t.Parallel()

	js := `{"patient":{"first_name":"Ada","conditions":["hypertension"]},"encounters":[{"summary":"BP check","contact":{"phone":"555-0101"}}]}`
	redacted := llmutils.RedactPHI(js)
	assert.NotContains(t, redacted, "Ada")
	assert.NotContains(t, redacted, "555-0101")
	assert.Contains(t, redacted, "hypertension")
	assert.Contains(t, redacted, "BP check")
	assert.Equal(t, 2, strings.Count(redacted, "[REDACTED]"))
}
