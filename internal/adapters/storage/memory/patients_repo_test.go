package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/medassist-ai/medassist/internal/adapters/storage/memory"
	"github.com/medassist-ai/medassist/internal/domain/patients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PatientsRepo_CRUD(t *testing.T) {
	t.Parallel()
	repo := memory.NewPatientsRepo()
	ctx := context.Background()

	p := patients.Patient{
		ID:        "p1",
		TenantID:  "t1",
		FirstName: "Ada",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, p))

	err := repo.Create(ctx, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	err = repo.Create(ctx, patients.Patient{TenantID: "t1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id required")

	got, err := repo.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)

	// the same ID under another tenant is not visible
	_, err = repo.GetByID(ctx, "t2", "p1")
	assert.ErrorIs(t, err, patients.ErrNotFound)

	p.FirstName = "Grace"
	require.NoError(t, repo.Update(ctx, p))
	got, err = repo.GetByID(ctx, "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)

	err = repo.Update(ctx, patients.Patient{ID: "nope", TenantID: "t1"})
	assert.ErrorIs(t, err, patients.ErrNotFound)
}

func Test_PatientsRepo_List(t *testing.T) {
	t.Parallel()
	repo := memory.NewPatientsRepo()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, patients.Patient{ID: "p2", TenantID: "t1", CreatedAt: now.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, patients.Patient{ID: "p1", TenantID: "t1", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, patients.Patient{ID: "p3", TenantID: "t2", CreatedAt: now}))

	list, err := repo.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	// ordered by creation time
	assert.Equal(t, "p1", list[0].ID)
	assert.Equal(t, "p2", list[1].ID)

	list, err = repo.List(ctx, "t3")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func Test_PatientsRepo_Encounters(t *testing.T) {
	t.Parallel()
	repo := memory.NewPatientsRepo()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, patients.Patient{ID: "p1", TenantID: "t1"}))

	err := repo.AddEncounter(ctx, "t1", patients.Encounter{ID: "e1", PatientID: "nope"})
	assert.ErrorIs(t, err, patients.ErrNotFound)

	require.NoError(t, repo.AddEncounter(ctx, "t1", patients.Encounter{ID: "e2", PatientID: "p1", Date: now}))
	require.NoError(t, repo.AddEncounter(ctx, "t1", patients.Encounter{ID: "e1", PatientID: "p1", Date: now.Add(-time.Hour)}))

	list, err := repo.ListEncounters(ctx, "t1", "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	// ordered by date
	assert.Equal(t, "e1", list[0].ID)
	assert.Equal(t, "e2", list[1].ID)
}

func Test_Seed(t *testing.T) {
	t.Parallel()
	repo := memory.NewPatientsRepo()
	ctx := context.Background()

	require.NoError(t, memory.Seed(ctx, repo, "t1", 5))

	list, err := repo.List(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, list, 5)

	for _, p := range list {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.FirstName)
		assert.NotEmpty(t, p.Medications)
		assert.GreaterOrEqual(t, p.Age(time.Now()), 18)

		encounters, err := repo.ListEncounters(ctx, "t1", p.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, encounters)
	}
}
