package patients

import (
	"fmt"
	"strings"
	"time"
)

// Sex of the patient record.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Medication is an active prescription on the patient record.
type Medication struct {
	Name      string    `json:"name"`
	Dose      string    `json:"dose"`
	Frequency string    `json:"frequency"`
	StartedAt time.Time `json:"started_at"`
}

// Encounter is a past visit or interaction with the clinic.
type Encounter struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patient_id"`
	Date      time.Time `json:"date"`
	Kind      string    `json:"kind"` // visit, lab, referral, telehealth
	Summary   string    `json:"summary"`
}

// Patient is the demographic and clinical profile of a patient.
type Patient struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Sex         Sex       `json:"sex"`

	Allergies   []string     `json:"allergies,omitempty"`
	Conditions  []string     `json:"conditions,omitempty"`
	Medications []Medication `json:"medications,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// History is a patient profile with the past encounters.
type History struct {
	Patient    Patient     `json:"patient"`
	Encounters []Encounter `json:"encounters,omitempty"`
}

// Age returns the patient age in full years at the given time.
func (p *Patient) Age(now time.Time) int {
	years := now.Year() - p.DateOfBirth.Year()
	anniversary := p.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Summary renders the history as plain text for the model context.
// Names are omitted, the record is identified by the patient ID.
func (h *History) Summary() string {
	var b strings.Builder
	p := h.Patient
	fmt.Fprintf(&b, "Patient %s: %s, age %d\n", p.ID, p.Sex, p.Age(time.Now()))
	if len(p.Conditions) > 0 {
		fmt.Fprintf(&b, "Conditions: %s\n", strings.Join(p.Conditions, ", "))
	}
	if len(p.Allergies) > 0 {
		fmt.Fprintf(&b, "Allergies: %s\n", strings.Join(p.Allergies, ", "))
	}
	if len(p.Medications) > 0 {
		b.WriteString("Medications:\n")
		for _, m := range p.Medications {
			fmt.Fprintf(&b, "- %s %s, %s\n", m.Name, m.Dose, m.Frequency)
		}
	}
	if len(h.Encounters) > 0 {
		b.WriteString("Encounters:\n")
		for _, e := range h.Encounters {
			fmt.Fprintf(&b, "- %s [%s]: %s\n", e.Date.Format("2006-01-02"), e.Kind, e.Summary)
		}
	}
	return b.String()
}
