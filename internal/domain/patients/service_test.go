package patients_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/medassist-ai/medassist/internal/adapters/storage/memory"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*patients.Service, patients.Patient) {
	t.Helper()
	repo := memory.NewPatientsRepo()
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
			{Name: "lisinopril", Dose: "10mg", Frequency: "daily"},
		},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	require.NoError(t, repo.AddEncounter(context.Background(), "t1", patients.Encounter{
		ID:        "e1",
		PatientID: "p1",
		Date:      time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		Kind:      "visit",
		Summary:   "Blood pressure check, well controlled.",
	}))
	return patients.NewService(repo), p
}

func Test_Service_GetPatient(t *testing.T) {
	t.Parallel()
	svc, p := newService(t)
	ctx := context.Background()

	got, err := svc.GetPatient(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, p.FirstName, got.FirstName)

	_, err = svc.GetPatient(ctx, "t1", "unknown")
	assert.True(t, errors.Is(err, patients.ErrNotFound))

	// records are tenant scoped
	_, err = svc.GetPatient(ctx, "other", "p1")
	assert.True(t, errors.Is(err, patients.ErrNotFound))
}

func Test_Service_ListPatients(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	list, err := svc.ListPatients(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = svc.ListPatients(context.Background(), "other")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func Test_Service_GetHistory(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	h, err := svc.GetHistory(ctx, "t1", "p1")
	require.NoError(t, err)
	require.Len(t, h.Encounters, 1)
	assert.Equal(t, "e1", h.Encounters[0].ID)

	_, err = svc.GetHistory(ctx, "t1", "unknown")
	assert.True(t, errors.Is(err, patients.ErrNotFound))
}

func Test_Patient_Age(t *testing.T) {
	t.Parallel()
	p := patients.Patient{DateOfBirth: time.Date(1960, 3, 10, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 65, p.Age(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 65, p.Age(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 64, p.Age(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func Test_History_Summary(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	h, err := svc.GetHistory(context.Background(), "t1", "p1")
	require.NoError(t, err)

	sum := h.Summary()
	assert.Contains(t, sum, "Patient p1: female")
	assert.Contains(t, sum, "Conditions: hypertension")
	assert.Contains(t, sum, "Allergies: penicillin")
	assert.Contains(t, sum, "- lisinopril 10mg, daily")
	assert.Contains(t, sum, "- 2025-11-02 [visit]: Blood pressure check, well controlled.")

	// names never reach the model context
	assert.NotContains(t, sum, "Ada")
	assert.NotContains(t, sum, "Smith")
}
