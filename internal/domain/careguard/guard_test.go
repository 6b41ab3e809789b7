package careguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/domain/encounter"
	"github.com/ehr/patientsvc/internal/domain/patient"
	"github.com/ehr/patientsvc/internal/platform/apperr"
	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
)

type fixture struct {
	guard      *Guard
	patients   *patient.Service
	encounters *encounter.Service
}

func newMemoryFixture() fixture {
	ps := patient.NewService(patient.NewMemoryRepo())
	es := encounter.NewService(encounter.NewMemoryRepo())
	return fixture{
		guard:      New(ps, es, &store.Serializer{}, zerolog.Nop()),
		patients:   ps,
		encounters: es,
	}
}

func newSQLiteFixture(t *testing.T) fixture {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), sqlitedb.MemoryPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ps := patient.NewService(patient.NewSQLiteRepo(db))
	es := encounter.NewService(encounter.NewSQLiteRepo(db))
	return fixture{guard: New(ps, es, db, zerolog.Nop()), patients: ps, encounters: es}
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func addPatient(t *testing.T, f fixture) *patient.Patient {
	t.Helper()
	p, err := f.patients.Add(context.Background(), &patient.Patient{
		FirstName: "Matthew", LastName: "Matthias", SSN: "222-22-2222",
		Email: "matthewmatthias@email.com", City: "Matthewsville", Street: "Matthew Street",
		State: "IL", Postal: "22222", Age: intPtr(22), Height: floatPtr(222), Weight: floatPtr(222),
		Insurance: "BCBS", Gender: "Female",
	})
	if err != nil {
		t.Fatalf("add patient: %v", err)
	}
	return p
}

func addEncounter(t *testing.T, f fixture, patientID int64) *encounter.Encounter {
	t.Helper()
	e, err := f.encounters.Add(context.Background(), &encounter.Encounter{
		PatientID: patientID, VisitCode: "N3W 2D2", Provider: "provider2",
		BillingCode: "123.456.789-00", ICD10: "I10", TotalCost: floatPtr(200), Copay: floatPtr(20),
		ChiefComplaint: "chief Complaint2", Date: time.Now(),
	})
	if err != nil {
		t.Fatalf("add encounter: %v", err)
	}
	return e
}

func fixtures(t *testing.T) map[string]fixture {
	return map[string]fixture{
		"memory": newMemoryFixture(),
		"sqlite": newSQLiteFixture(t),
	}
}

func TestGuard_DeletePatient_NoEncounters(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			p := addPatient(t, f)

			if err := f.guard.DeletePatient(context.Background(), p.ID); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if _, err := f.patients.GetByID(context.Background(), p.ID); apperr.KindOf(err) != apperr.KindNotFound {
				t.Errorf("expected patient to be gone, got %v", err)
			}
		})
	}
}

func TestGuard_DeletePatient_WithEncounters(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := addPatient(t, f)
			enc := addEncounter(t, f, p.ID)

			err := f.guard.DeletePatient(ctx, p.ID)
			if apperr.KindOf(err) != apperr.KindConflict {
				t.Fatalf("expected conflict, got %v", err)
			}
			var ae *apperr.Error
			if errors.As(err, &ae) && ae.Reason != MsgHasEncounters {
				t.Errorf("unexpected reason %q", ae.Reason)
			}
			if _, err := f.patients.GetByID(ctx, p.ID); err != nil {
				t.Errorf("expected patient to remain, got %v", err)
			}

			if err := f.encounters.DeleteByID(ctx, enc.ID); err != nil {
				t.Fatalf("delete encounter: %v", err)
			}
			if err := f.guard.DeletePatient(ctx, p.ID); err != nil {
				t.Errorf("expected delete to succeed once encounters are gone, got %v", err)
			}
		})
	}
}

func TestGuard_DeletePatient_NotFound(t *testing.T) {
	for name, f := range fixtures(t) {
		t.Run(name, func(t *testing.T) {
			err := f.guard.DeletePatient(context.Background(), 404)
			if apperr.KindOf(err) != apperr.KindNotFound {
				t.Errorf("expected not found, got %v", err)
			}
		})
	}
}

type failingTx struct{ err error }

func (f failingTx) WithinTx(context.Context, func(context.Context) error) error { return f.err }

func TestGuard_DeletePatient_TxFailure(t *testing.T) {
	f := newMemoryFixture()
	down := errors.New("begin transaction: connection refused")
	f.guard.tx = failingTx{err: down}

	err := f.guard.DeletePatient(context.Background(), 1)
	if apperr.KindOf(err) != apperr.KindUnavailable || !errors.Is(err, down) {
		t.Errorf("expected unavailable wrapping cause, got %v", err)
	}
}

func TestGuard_DeletePatient_DuplicateFromTxIsNotReportedAsEncounters(t *testing.T) {
	f := newMemoryFixture()
	f.guard.tx = failingTx{err: store.ErrDuplicateValue}

	err := f.guard.DeletePatient(context.Background(), 1)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ae.Reason == MsgHasEncounters {
		t.Errorf("duplicate value reported as %q", ae.Reason)
	}
	if ae.Reason != patient.MsgEmailConflict {
		t.Errorf("unexpected reason %q", ae.Reason)
	}
}
