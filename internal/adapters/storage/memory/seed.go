package memory

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/medassist-ai/medassist/internal/domain/patients"
)

var (
	seedConditions = []string{
		"hypertension", "type 2 diabetes", "asthma", "hyperlipidemia",
		"chronic kidney disease", "atrial fibrillation", "hypothyroidism",
	}
	seedAllergies = []string{
		"penicillin", "sulfa drugs", "latex", "aspirin", "none known",
	}
	seedMedications = []patients.Medication{
		{Name: "lisinopril", Dose: "10mg", Frequency: "once daily"},
		{Name: "metformin", Dose: "500mg", Frequency: "twice daily"},
		{Name: "warfarin", Dose: "5mg", Frequency: "once daily"},
		{Name: "atorvastatin", Dose: "20mg", Frequency: "once daily"},
		{Name: "levothyroxine", Dose: "75mcg", Frequency: "once daily"},
		{Name: "albuterol", Dose: "90mcg", Frequency: "as needed"},
	}
	seedEncounterKinds = []string{"visit", "lab", "referral", "telehealth"}
)

// Seed populates the repository with generated demo patients for the tenant.
func Seed(ctx context.Context, repo patients.Repository, tenantID string, count int) error {
	faker := gofakeit.New(0)
	now := time.Now()

	for range count {
		sex := patients.SexFemale
		if faker.Bool() {
			sex = patients.SexMale
		}

		p := patients.Patient{
			ID:          uuid.NewString(),
			TenantID:    tenantID,
			FirstName:   faker.FirstName(),
			LastName:    faker.LastName(),
			DateOfBirth: faker.DateRange(now.AddDate(-90, 0, 0), now.AddDate(-18, 0, 0)),
			Sex:         sex,
			Allergies:   []string{pick(faker, seedAllergies)},
			Conditions:  []string{pick(faker, seedConditions)},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for range faker.Number(1, 3) {
			med := seedMedications[faker.Number(0, len(seedMedications)-1)]
			med.StartedAt = faker.DateRange(now.AddDate(-3, 0, 0), now)
			p.Medications = append(p.Medications, med)
		}

		if err := repo.Create(ctx, p); err != nil {
			return errors.WithMessage(err, "failed to seed patient")
		}

		for range faker.Number(1, 4) {
			e := patients.Encounter{
				ID:        uuid.NewString(),
				PatientID: p.ID,
				Date:      faker.DateRange(now.AddDate(-2, 0, 0), now),
				Kind:      pick(faker, seedEncounterKinds),
				Summary:   faker.Sentence(8),
			}
			if err := repo.AddEncounter(ctx, tenantID, e); err != nil {
				return errors.WithMessage(err, "failed to seed encounter")
			}
		}
	}
	return nil
}

func pick(faker *gofakeit.Faker, list []string) string {
	return list[faker.Number(0, len(list)-1)]
}
