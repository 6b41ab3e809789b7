package patient

import "context"

// Repository is the record store contract for patients. Lookups of a
// missing id return store.ErrNotFound; a write that collides on email may
// return store.ErrDuplicateValue.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Patient, error)
	FindAll(ctx context.Context) ([]*Patient, error)
	FindByExample(ctx context.Context, ex Example) ([]*Patient, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, p *Patient) (*Patient, error)
	DeleteByID(ctx context.Context, id int64) error
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
