package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/domain/encounter"
	"github.com/ehr/patientsvc/internal/domain/patient"
	"github.com/ehr/patientsvc/internal/platform/validation"
)

func TestFixturesAreValid(t *testing.T) {
	for _, p := range Patients() {
		if err := validation.Validate(p); err != nil {
			t.Errorf("patient %s: %v", p.Email, err)
		}
	}
	for _, e := range Encounters(1, time.Now()) {
		if err := validation.Validate(e); err != nil {
			t.Errorf("encounter %s: %v", e.VisitCode, err)
		}
	}
}

func TestLoad_Idempotent(t *testing.T) {
	ctx := context.Background()
	ps := patient.NewService(patient.NewMemoryRepo())
	es := encounter.NewService(encounter.NewMemoryRepo())

	res, err := Load(ctx, ps, es, zerolog.Nop())
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if res.Patients != 2 || res.Encounters != 2 {
		t.Errorf("unexpected first result %+v", res)
	}

	res, err = Load(ctx, ps, es, zerolog.Nop())
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if res != (Result{}) {
		t.Errorf("expected nothing new on second load, got %+v", res)
	}

	all, _ := ps.Query(ctx, patient.Example{})
	if len(all) != 2 {
		t.Errorf("expected 2 patients, got %d", len(all))
	}
	encs, _ := es.QueryByPatientID(ctx, all[0].ID)
	if len(encs) != 2 {
		t.Errorf("expected 2 encounters for the first patient, got %d", len(encs))
	}
}
