package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/medassist-ai/medassist/internal/domain/patients"
)

type patientsRepo struct {
	mu         sync.RWMutex
	byID       map[string]patients.Patient
	encounters map[string][]patients.Encounter
}

// NewPatientsRepo returns an in-memory patients repository,
// intended for tests and demo deployments.
func NewPatientsRepo() patients.Repository {
	return &patientsRepo{
		byID:       make(map[string]patients.Patient),
		encounters: make(map[string][]patients.Encounter),
	}
}

func key(tenantID, id string) string {
	return tenantID + "/" + id
}

func (r *patientsRepo) Create(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		return errors.New("patient id required")
	}
	k := key(p.TenantID, p.ID)
	if _, exists := r.byID[k]; exists {
		return errors.New("patient already exists")
	}
	r.byID[k] = p
	return nil
}

func (r *patientsRepo) Update(ctx context.Context, p patients.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(p.TenantID, p.ID)
	if _, exists := r.byID[k]; !exists {
		return errors.WithStack(patients.ErrNotFound)
	}
	r.byID[k] = p
	return nil
}

func (r *patientsRepo) GetByID(ctx context.Context, tenantID, id string) (patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[key(tenantID, id)]
	if !ok {
		return patients.Patient{}, errors.WithStack(patients.ErrNotFound)
	}
	return p, nil
}

func (r *patientsRepo) List(ctx context.Context, tenantID string) ([]patients.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]patients.Patient, 0)
	for _, p := range r.byID {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *patientsRepo) AddEncounter(ctx context.Context, tenantID string, e patients.Encounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key(tenantID, e.PatientID)
	if _, exists := r.byID[k]; !exists {
		return errors.WithStack(patients.ErrNotFound)
	}
	r.encounters[k] = append(r.encounters[k], e)
	return nil
}

func (r *patientsRepo) ListEncounters(ctx context.Context, tenantID, patientID string) ([]patients.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]patients.Encounter(nil), r.encounters[key(tenantID, patientID)]...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
