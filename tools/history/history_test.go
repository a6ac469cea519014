package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/medassist-ai/medassist/chatmodel"
	"github.com/medassist-ai/medassist/internal/adapters/storage/memory"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/medassist-ai/medassist/tools/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *patients.Service {
	t.Helper()
	repo := memory.NewPatientsRepo()
	ctx := context.Background()

	p := patients.Patient{
		ID:          "p1",
		TenantID:    "t1",
		FirstName:   "Ada",
		LastName:    "Smith",
		DateOfBirth: time.Date(1960, 3, 10, 0, 0, 0, 0, time.UTC),
		Sex:         patients.SexFemale,
		Conditions:  []string{"hypertension"},
		Allergies:   []string{"penicillin"},
		Medications: []patients.Medication{
			{Name: "lisinopril", Dose: "10mg", Frequency: "once daily"},
		},
	}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.AddEncounter(ctx, "t1", patients.Encounter{
		ID:        "e1",
		PatientID: "p1",
		Date:      time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		Kind:      "visit",
		Summary:   "Blood pressure follow-up.",
	}))
	return patients.NewService(repo)
}

func chatContext(patientID string) context.Context {
	chatCtx := chatmodel.NewChatContext("t1", chatmodel.NewChatID(), patientID, nil)
	return chatmodel.WithChatContext(context.Background(), chatCtx)
}

func Test_Tool(t *testing.T) {
	t.Parallel()
	tool, err := history.New(newService(t))
	require.NoError(t, err)
	assert.Equal(t, history.ToolName, tool.Name())
	assert.NotEmpty(t, tool.Description())
	require.NotNil(t, tool.Parameters())
}

func Test_Run_SessionPatient(t *testing.T) {
	t.Parallel()
	tool, err := history.New(newService(t))
	require.NoError(t, err)

	res, err := tool.Run(chatContext("p1"), &history.FetchRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.History)
	assert.Equal(t, "p1", res.History.Patient.ID)
	require.Len(t, res.History.Encounters, 1)
	assert.Equal(t, "visit", res.History.Encounters[0].Kind)

	summary := res.String()
	assert.Contains(t, summary, "hypertension")
	assert.Contains(t, summary, "lisinopril")
	// names are never rendered for the model
	assert.NotContains(t, summary, "Ada")
	assert.NotContains(t, summary, "Smith")
}

func Test_Run_ExplicitPatient(t *testing.T) {
	t.Parallel()
	tool, err := history.New(newService(t))
	require.NoError(t, err)

	// the explicit ID wins over the session patient
	res, err := tool.Run(chatContext(""), &history.FetchRequest{PatientID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.History.Patient.ID)
}

func Test_Run_Errors(t *testing.T) {
	t.Parallel()
	tool, err := history.New(newService(t))
	require.NoError(t, err)

	// no chat context
	_, err = tool.Run(context.Background(), &history.FetchRequest{PatientID: "p1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, chatmodel.ErrInvalidChatContext)

	// no patient in the session and no explicit ID
	_, err = tool.Run(chatContext(""), &history.FetchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PatientID is required")

	// unknown patient
	_, err = tool.Run(chatContext("nope"), &history.FetchRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, patients.ErrNotFound)
}

func Test_Call(t *testing.T) {
	t.Parallel()
	tool, err := history.New(newService(t))
	require.NoError(t, err)

	out, err := tool.Call(chatContext("p1"), `{}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"hypertension"`)

	_, err = tool.Call(chatContext("p1"), `not a json`)
	require.Error(t, err)
	assert.ErrorIs(t, err, chatmodel.ErrFailedUnmarshalInput)
}
