// Package careguard holds rules that span patients and their encounters.
package careguard

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ehr/patientsvc/internal/domain/encounter"
	"github.com/ehr/patientsvc/internal/domain/patient"
	"github.com/ehr/patientsvc/internal/platform/apperr"
	"github.com/ehr/patientsvc/internal/platform/store"
)

const MsgHasEncounters = "Cannot remove a patient that still has encounters"

// Guard deletes patients only when no encounter references them.
type Guard struct {
	patients   *patient.Service
	encounters *encounter.Service
	tx         store.Transactor
	logger     zerolog.Logger
}

func New(patients *patient.Service, encounters *encounter.Service, tx store.Transactor, logger zerolog.Logger) *Guard {
	return &Guard{patients: patients, encounters: encounters, tx: tx, logger: logger}
}

// DeletePatient checks for dependent encounters and deletes the patient in
// one unit of work. A patient with encounters is left untouched and the
// call fails with Conflict.
func (g *Guard) DeletePatient(ctx context.Context, id int64) error {
	err := g.tx.WithinTx(ctx, func(ctx context.Context) error {
		encs, err := g.encounters.QueryByPatientID(ctx, id)
		if err != nil {
			return err
		}
		if len(encs) > 0 {
			g.logger.Debug().Int64("patient_id", id).Int("encounters", len(encs)).Msg("patient delete refused")
			return apperr.Conflict(MsgHasEncounters)
		}
		return g.patients.DeleteByID(ctx, id)
	})
	if err != nil {
		return apperr.FromStore(err, patient.MsgNotFound, patient.MsgEmailConflict)
	}
	return nil
}
