package patient

import (
	"context"

	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoMemory struct {
	rows *store.Table[*Patient]
}

// NewMemoryRepo returns a process-local Repository. Results come back in
// insertion order.
func NewMemoryRepo() Repository {
	return &repoMemory{rows: store.NewTable[*Patient]()}
}

func (r *repoMemory) FindByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := r.rows.Get(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (r *repoMemory) FindAll(_ context.Context) ([]*Patient, error) {
	return r.rows.Filter(nil), nil
}

func (r *repoMemory) FindByExample(_ context.Context, ex Example) ([]*Patient, error) {
	return r.rows.Filter(ex.Matches), nil
}

func (r *repoMemory) ExistsByID(_ context.Context, id int64) (bool, error) {
	return r.rows.Has(id), nil
}

func (r *repoMemory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return r.rows.Any(func(p *Patient) bool { return p.Email == email }), nil
}

func (r *repoMemory) Save(_ context.Context, p *Patient) (*Patient, error) {
	return r.rows.Save(p), nil
}

func (r *repoMemory) DeleteByID(_ context.Context, id int64) error {
	if !r.rows.Delete(id) {
		return store.ErrNotFound
	}
	return nil
}
