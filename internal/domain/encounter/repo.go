package encounter

import "context"

// Repository is the record store contract for encounters. Lookups of a
// missing id return store.ErrNotFound.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Encounter, error)
	FindByPatientID(ctx context.Context, patientID int64) ([]*Encounter, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, enc *Encounter) (*Encounter, error)
	DeleteByID(ctx context.Context, id int64) error
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
