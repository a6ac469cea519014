package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/medassist-ai/medassist/internal/domain/patients"
)

// PatientsRepo stores patient records in Postgres.
// The clinical lists are kept as JSONB columns.
type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

var _ patients.Repository = (*PatientsRepo)(nil)

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	allergies, conditions, medications, err := marshalLists(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, tenant_id,
			first_name, last_name, date_of_birth, sex,
			allergies, conditions, medications,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		p.ID,
		p.TenantID,
		p.FirstName,
		p.LastName,
		p.DateOfBirth,
		p.Sex,
		allergies,
		conditions,
		medications,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return errors.Wrap(err, "failed to insert patient")
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	allergies, conditions, medications, err := marshalLists(p)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			first_name = $3,
			last_name = $4,
			date_of_birth = $5,
			sex = $6,
			allergies = $7,
			conditions = $8,
			medications = $9,
			updated_at = $10
		WHERE tenant_id = $1 AND id = $2
	`,
		p.TenantID,
		p.ID,
		p.FirstName,
		p.LastName,
		p.DateOfBirth,
		p.Sex,
		allergies,
		conditions,
		medications,
		p.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update patient")
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.WithStack(patients.ErrNotFound)
	}
	return nil
}

func (r *PatientsRepo) GetByID(ctx context.Context, tenantID, id string) (patients.Patient, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, tenant_id,
			first_name, last_name, date_of_birth, sex,
			allergies, conditions, medications,
			created_at, updated_at
		FROM patients
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	p, err := scanPatient(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return patients.Patient{}, errors.WithStack(patients.ErrNotFound)
		}
		return patients.Patient{}, errors.Wrap(err, "failed to get patient")
	}
	return p, nil
}

func (r *PatientsRepo) List(ctx context.Context, tenantID string) ([]patients.Patient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, tenant_id,
			first_name, last_name, date_of_birth, sex,
			allergies, conditions, medications,
			created_at, updated_at
		FROM patients
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list patients")
	}
	defer rows.Close()

	out := make([]patients.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan patient")
		}
		out = append(out, p)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate patients")
}

func (r *PatientsRepo) AddEncounter(ctx context.Context, tenantID string, e patients.Encounter) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO encounters (
			id, tenant_id, patient_id, date, kind, summary
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		tenantID,
		e.PatientID,
		e.Date,
		e.Kind,
		e.Summary,
	)
	return errors.Wrap(err, "failed to insert encounter")
}

func (r *PatientsRepo) ListEncounters(ctx context.Context, tenantID, patientID string) ([]patients.Encounter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, patient_id, date, kind, summary
		FROM encounters
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY date ASC
	`, tenantID, patientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list encounters")
	}
	defer rows.Close()

	out := make([]patients.Encounter, 0)
	for rows.Next() {
		var e patients.Encounter
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Date, &e.Kind, &e.Summary); err != nil {
			return nil, errors.Wrap(err, "failed to scan encounter")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "failed to iterate encounters")
}

func marshalLists(p patients.Patient) (allergies, conditions, medications []byte, err error) {
	if allergies, err = json.Marshal(p.Allergies); err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to marshal allergies")
	}
	if conditions, err = json.Marshal(p.Conditions); err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to marshal conditions")
	}
	if medications, err = json.Marshal(p.Medications); err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to marshal medications")
	}
	return allergies, conditions, medications, nil
}

func scanPatient(scan func(dest ...any) error) (patients.Patient, error) {
	var p patients.Patient
	var allergies, conditions, medications []byte
	if err := scan(
		&p.ID,
		&p.TenantID,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.Sex,
		&allergies,
		&conditions,
		&medications,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return patients.Patient{}, err
	}

	if len(allergies) > 0 {
		if err := json.Unmarshal(allergies, &p.Allergies); err != nil {
			return patients.Patient{}, errors.Wrap(err, "failed to unmarshal allergies")
		}
	}
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &p.Conditions); err != nil {
			return patients.Patient{}, errors.Wrap(err, "failed to unmarshal conditions")
		}
	}
	if len(medications) > 0 {
		if err := json.Unmarshal(medications, &p.Medications); err != nil {
			return patients.Patient{}, errors.Wrap(err, "failed to unmarshal medications")
		}
	}
	return p, nil
}
