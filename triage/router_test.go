package triage_test

import (
	"context"
	"testing"

	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/mocks/mockllms"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func chatContext() context.Context {
	chatCtx := chatmodel.NewChatContext("t1", chatmodel.NewChatID(), "", nil)
	return chatmodel.WithChatContext(context.Background(), chatCtx)
}

func Test_Router_ModeErrors(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	scripted := triage.NewScriptedResponder(mockLLM)

	router := triage.NewRouter(scripted, nil, triage.ModeAuto)
	_, err := router.Respond(context.Background(), triage.ModeAgentic, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agentic mode is not configured")

	_, err = router.Respond(context.Background(), "bogus", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown triage mode")

	router = triage.NewRouter(nil, nil, triage.ModeAuto)
	_, err = router.Respond(context.Background(), "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no responder is configured")
}

func Test_Router_AutoPrefersAgentic(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()
	// a single completion with the structured advice, no tool calls
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				Content: `{"advice":"rest and fluids","urgency":"routine","escalateToClinician":false}`,
			}},
		}, nil).Times(1)

	scripted := triage.NewScriptedResponder(mockLLM)
	agentic := triage.NewAgenticResponder(mockLLM, nil)
	require.True(t, agentic.SupportsFunctionCalling())

	router := triage.NewRouter(scripted, agentic, triage.ModeAuto)
	res, err := router.Respond(chatContext(), "", "I have a mild cold, what should I do?")
	require.NoError(t, err)
	assert.Equal(t, "rest and fluids", res.Advice)
	assert.Equal(t, triage.UrgencyRoutine, res.Urgency)
	assert.False(t, res.EscalateToClinician)
}

func Test_Router_AutoFallsBackToScripted(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Perplexity cannot drive tools, auto must route to the scripted branch
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderPerplexity).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "scripted answer"}},
		}, nil).Times(1)

	scripted := triage.NewScriptedResponder(mockLLM)
	agentic := triage.NewAgenticResponder(mockLLM, nil)
	require.False(t, agentic.SupportsFunctionCalling())

	router := triage.NewRouter(scripted, agentic, triage.ModeAuto)
	res, err := router.Respond(context.Background(), "", "what should I do about a mild headache")
	require.NoError(t, err)
	assert.Equal(t, "scripted answer", res.Advice)
}

func Test_Agentic_EmptyInput(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no GenerateContent expectation: a blank question must not reach the model
	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()

	responder := triage.NewAgenticResponder(mockLLM, nil)
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := responder.Respond(chatContext(), input)
		require.Error(t, err, "input: %q", input)
		assert.Contains(t, err.Error(), "empty input")
	}
}

func Test_Router_Agentic_Escalation(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GetName().Return("gpt-test").AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{
				Content: `{"advice":"see a clinician today","urgency":"urgent","escalateToClinician":true,"citations":["hypertension-management"]}`,
			}},
		}, nil).Times(1)

	agentic := triage.NewAgenticResponder(mockLLM, nil)
	router := triage.NewRouter(nil, agentic, triage.ModeAgentic)

	res, err := router.Respond(chatContext(), triage.ModeAgentic, "my blood pressure reading is 180 over 110")
	require.NoError(t, err)
	assert.Equal(t, triage.UrgencyUrgent, res.Urgency)
	assert.True(t, res.EscalateToClinician)
	assert.Equal(t, []string{"hypertension-management"}, res.Citations)
}
