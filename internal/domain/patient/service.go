package patient

import (
	"context"

	"github.com/ehr/patientsvc/internal/platform/apperr"
	"github.com/ehr/patientsvc/internal/platform/validation"
)

const (
	MsgNotFound      = "The patient does not exist in the database"
	MsgEmailConflict = "The email address is already associated with another patient"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func storeErr(err error) error {
	return apperr.FromStore(err, MsgNotFound, MsgEmailConflict)
}

// Query returns every patient when ex is empty, otherwise the patients that
// match all populated fields.
func (s *Service) Query(ctx context.Context, ex Example) ([]*Patient, error) {
	var (
		patients []*Patient
		err      error
	)
	if ex.IsEmpty() {
		patients, err = s.repo.FindAll(ctx)
	} else {
		patients, err = s.repo.FindByExample(ctx, ex)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return patients, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return p, nil
}

func (s *Service) Add(ctx context.Context, p *Patient) (*Patient, error) {
	if err := validation.Validate(p); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByEmail(ctx, p.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, apperr.Conflict(MsgEmailConflict)
	}
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return nil, storeErr(err)
	}
	return saved, nil
}

// UpdateByID replaces the patient stored under id. The body id must equal
// id; a mismatch is rejected before the store is touched. The email check
// only runs when the email actually changes.
func (s *Service) UpdateByID(ctx context.Context, id int64, p *Patient) (*Patient, error) {
	if err := validation.Validate(p); err != nil {
		return nil, err
	}
	if p.ID != id {
		return nil, apperr.BadRequest(apperr.MsgIDMismatch)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing.Email != p.Email {
		taken, err := s.repo.ExistsByEmail(ctx, p.Email)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, apperr.Conflict(MsgEmailConflict)
		}
	}
	saved, err := s.repo.Save(ctx, p)
	if err != nil {
		return nil, storeErr(err)
	}
	return saved, nil
}

// DeleteByID removes the patient without looking at its encounters. Callers
// that must keep encounters consistent go through careguard.Guard.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return apperr.NotFound(MsgNotFound)
	}
	return storeErr(s.repo.DeleteByID(ctx, id))
}
