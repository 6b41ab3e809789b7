// Package seed loads the demo patients and encounters.
package seed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/domain/encounter"
	"github.com/ehr/patientsvc/internal/domain/patient"
	"github.com/ehr/patientsvc/internal/platform/apperr"
)

func ptr[V any](v V) *V { return &v }

// Patients returns the demo patients.
func Patients() []*patient.Patient {
	return []*patient.Patient{
		{
			FirstName: "Mark", LastName: "Marky", SSN: "111-11-1111",
			Email: "markmarky@email.com", City: "Marksville", Street: "Mark Street",
			State: "IL", Postal: "11111", Age: ptr(11), Height: ptr(111.0), Weight: ptr(111.0),
			Insurance: "Blue Cross Blue Shield", Gender: "Male",
		},
		{
			FirstName: "Matthew", LastName: "Matthias", SSN: "222-22-2222",
			Email: "matthewmatthias@email.com", City: "Matthewsville", Street: "Matthew Street",
			State: "IL", Postal: "22222", Age: ptr(22), Height: ptr(222.0), Weight: ptr(222.0),
			Insurance: "BCBS", Gender: "Female",
		},
	}
}

// Encounters returns the demo encounters for patientID dated at now.
func Encounters(patientID int64, now time.Time) []*encounter.Encounter {
	return []*encounter.Encounter{
		{
			PatientID: patientID, Notes: "new encounter", VisitCode: "N3W 3C3",
			Provider: "New Hospital", BillingCode: "123.456.789-00", ICD10: "Z99",
			TotalCost: ptr(100.0), Copay: ptr(10.0), ChiefComplaint: "chiefComplaint",
			Pulse: ptr(100), Systolic: ptr(100), Diastolic: ptr(100), Date: now,
		},
		{
			PatientID: patientID, Notes: "notes2", VisitCode: "N3W 2D2",
			Provider: "provider2", BillingCode: "123.456.789-00", ICD10: "I10",
			TotalCost: ptr(200.0), Copay: ptr(20.0), ChiefComplaint: "chief Complaint2",
			Pulse: ptr(200), Systolic: ptr(200), Diastolic: ptr(200), Date: now,
		},
	}
}

// Result counts what Load stored.
type Result struct {
	Patients   int
	Encounters int
}

// Load adds the demo data through the services. Patients whose email is
// already stored are skipped, and encounters are only added for a first
// patient created by this call, so repeated runs do not duplicate rows.
func Load(ctx context.Context, patients *patient.Service, encounters *encounter.Service, logger zerolog.Logger) (Result, error) {
	var (
		res   Result
		owner int64
	)
	for i, p := range Patients() {
		saved, err := patients.Add(ctx, p)
		if apperr.KindOf(err) == apperr.KindConflict {
			logger.Info().Str("email", p.Email).Msg("seed patient already present")
			continue
		}
		if err != nil {
			return res, err
		}
		res.Patients++
		if i == 0 {
			owner = saved.ID
		}
	}
	if owner == 0 {
		return res, nil
	}

	for _, e := range Encounters(owner, time.Now().UTC()) {
		if _, err := encounters.Add(ctx, e); err != nil {
			return res, err
		}
		res.Encounters++
	}
	logger.Info().Int("patients", res.Patients).Int("encounters", res.Encounters).Msg("seed data loaded")
	return res, nil
}
