package encounter

import (
	"time"

	"github.com/ehr/patientsvc/internal/platform/store"
)

// Encounter maps to the encounter table. PatientID is a lookup reference
// only; the patient is not required to exist.
type Encounter struct {
	ID             int64     `db:"id" json:"id"`
	PatientID      int64     `db:"patient_id" json:"patientId" validate:"required"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	VisitCode      string    `db:"visit_code" json:"visitCode" validate:"required"`
	Provider       string    `db:"provider" json:"provider" validate:"required"`
	BillingCode    string    `db:"billing_code" json:"billingCode" validate:"required"`
	ICD10          string    `db:"icd10" json:"icd10" validate:"required"`
	TotalCost      *float64  `db:"total_cost" json:"totalCost" validate:"required,gte=0"`
	Copay          *float64  `db:"copay" json:"copay" validate:"required,gte=0"`
	ChiefComplaint string    `db:"chief_complaint" json:"chiefComplaint" validate:"required"`
	Pulse          *int      `db:"pulse" json:"pulse,omitempty" validate:"omitempty,gte=0"`
	Systolic       *int      `db:"systolic" json:"systolic,omitempty" validate:"omitempty,gte=0"`
	Diastolic      *int      `db:"diastolic" json:"diastolic,omitempty" validate:"omitempty,gte=0"`
	Date           time.Time `db:"date" json:"date" validate:"required"`
}

func (e *Encounter) GetID() int64   { return e.ID }
func (e *Encounter) SetID(id int64) { e.ID = id }

func (e *Encounter) Clone() *Encounter {
	c := *e
	c.TotalCost = clonePtr(e.TotalCost)
	c.Copay = clonePtr(e.Copay)
	c.Pulse = clonePtr(e.Pulse)
	c.Systolic = clonePtr(e.Systolic)
	c.Diastolic = clonePtr(e.Diastolic)
	return &c
}

// storedDate is the form every adapter persists and returns: UTC at
// microsecond precision, the finest TIMESTAMPTZ keeps.
func storedDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// byPatient restricts a query to one patient's encounters.
func byPatient(q *store.ExampleQuery, patientID int64) {
	q.Eq("patient_id", patientID)
}

func clonePtr[V any](v *V) *V {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
