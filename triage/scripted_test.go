package triage_test

import (
	"context"
	"testing"

	"github.com/medassist-ai/medassist/mocks/mockllms"
	"github.com/medassist-ai/medassist/pkg/llms"
	"github.com/medassist-ai/medassist/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_ParseMode(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		in   string
		exp  triage.Mode
		fail bool
	}{
		{in: "", exp: triage.ModeAuto},
		{in: "auto", exp: triage.ModeAuto},
		{in: "scripted", exp: triage.ModeScripted},
		{in: "agentic", exp: triage.ModeAgentic},
		{in: "AGENTIC", fail: true},
		{in: "other", fail: true},
	}
	for _, tc := range tcases {
		m, err := triage.ParseMode(tc.in)
		if tc.fail {
			assert.Error(t, err, "input: %q", tc.in)
		} else {
			require.NoError(t, err, "input: %q", tc.in)
			assert.Equal(t, tc.exp, m)
		}
	}
}

func Test_Scripted_EmergencyShortCircuit(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no GenerateContent expectation: the emergency rule must not call the model
	mockLLM := mockllms.NewMockModel(ctrl)
	responder := triage.NewScriptedResponder(mockLLM)

	for _, input := range []string{
		"I have crushing chest pain and sweating",
		"my father is unconscious and not breathing",
		"I think I took an overdose of my sleeping pills",
	} {
		res, err := responder.Respond(context.Background(), input)
		require.NoError(t, err, "input: %q", input)
		assert.Equal(t, triage.UrgencyEmergency, res.Urgency)
		assert.True(t, res.EscalateToClinician)
		assert.Contains(t, res.Advice, "emergency")
	}
}

func Test_Scripted_EmptyInput(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	responder := triage.NewScriptedResponder(mockllms.NewMockModel(ctrl))
	_, err := responder.Respond(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func Test_Scripted_KeywordBranches(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, messages []llms.Message, _ ...llms.CallOption) (*llms.ContentResponse, error) {
			require.Len(t, messages, 2)
			assert.Equal(t, llms.RoleSystem, messages[0].Role)
			assert.Equal(t, llms.RoleHuman, messages[1].Role)
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: "here is the answer"}},
			}, nil
		}).Times(3)

	responder := triage.NewScriptedResponder(mockLLM).WithMaxTokens(256)

	for _, input := range []string{
		"Can I take my blood pressure medication with ibuprofen?", // medication
		"I need to reschedule my appointment next week",           // appointment
		"what should I do about a mild headache",                  // general catch-all
	} {
		res, err := responder.Respond(context.Background(), input)
		require.NoError(t, err, "input: %q", input)
		assert.Equal(t, "here is the answer", res.Advice)
		assert.Equal(t, triage.UrgencyRoutine, res.Urgency)
		assert.False(t, res.EscalateToClinician)
	}
}

func Test_Scripted_EmptyModelResponse(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(
		&llms.ContentResponse{Choices: []*llms.ContentChoice{}}, nil).Times(1)

	responder := triage.NewScriptedResponder(mockLLM)
	_, err := responder.Respond(context.Background(), "question about my refill")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
