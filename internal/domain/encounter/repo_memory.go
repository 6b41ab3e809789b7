package encounter

import (
	"context"

	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoMemory struct {
	rows *store.Table[*Encounter]
}

func NewMemoryRepo() Repository {
	return &repoMemory{rows: store.NewTable[*Encounter]()}
}

func (r *repoMemory) FindByID(_ context.Context, id int64) (*Encounter, error) {
	enc, ok := r.rows.Get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return enc, nil
}

func (r *repoMemory) FindByPatientID(_ context.Context, patientID int64) ([]*Encounter, error) {
	return r.rows.Filter(func(enc *Encounter) bool { return enc.PatientID == patientID }), nil
}

func (r *repoMemory) ExistsByID(_ context.Context, id int64) (bool, error) {
	return r.rows.Has(id), nil
}

func (r *repoMemory) Save(_ context.Context, enc *Encounter) (*Encounter, error) {
	row := enc.Clone()
	row.Date = storedDate(row.Date)
	return r.rows.Save(row), nil
}

func (r *repoMemory) DeleteByID(_ context.Context, id int64) error {
	if !r.rows.Delete(id) {
		return store.ErrNotFound
	}
	return nil
}
