package patients

import (
	"context"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned when a patient or encounter does not exist.
var ErrNotFound = errors.New("patient not found")

// Repository is the storage port for patient records.
type Repository interface {
	Create(ctx context.Context, p Patient) error
	Update(ctx context.Context, p Patient) error
	GetByID(ctx context.Context, tenantID, id string) (Patient, error)
	List(ctx context.Context, tenantID string) ([]Patient, error)

	AddEncounter(ctx context.Context, tenantID string, e Encounter) error
	ListEncounters(ctx context.Context, tenantID, patientID string) ([]Encounter, error)
}
