package patients

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Service provides read access to patient histories for the agent tools
// and the REST API.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetPatient(ctx context.Context, tenantID, id string) (Patient, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) ListPatients(ctx context.Context, tenantID string) ([]Patient, error) {
	return s.repo.List(ctx, tenantID)
}

// GetHistory returns the patient profile with the past encounters.
func (s *Service) GetHistory(ctx context.Context, tenantID, id string) (*History, error) {
	p, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	encounters, err := s.repo.ListEncounters(ctx, tenantID, id)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list encounters")
	}
	return &History{
		Patient:    p,
		Encounters: encounters,
	}, nil
}
