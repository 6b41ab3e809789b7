package encounter

import (
	"context"

	"github.com/ehr/patientsvc/internal/platform/apperr"
	"github.com/ehr/patientsvc/internal/platform/validation"
)

const MsgNotFound = "The encounter does not exist in the database"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func storeErr(err error) error {
	return apperr.FromStore(err, MsgNotFound, MsgNotFound)
}

// QueryByPatientID returns the encounters that reference patientID. An
// unknown patient yields an empty list.
func (s *Service) QueryByPatientID(ctx context.Context, patientID int64) ([]*Encounter, error) {
	encs, err := s.repo.FindByPatientID(ctx, patientID)
	if err != nil {
		return nil, storeErr(err)
	}
	return encs, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Encounter, error) {
	enc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return enc, nil
}

func (s *Service) Add(ctx context.Context, enc *Encounter) (*Encounter, error) {
	if err := validation.Validate(enc); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, enc)
	if err != nil {
		return nil, storeErr(err)
	}
	return saved, nil
}

// UpdateByID overwrites the encounter stored under id with enc.
func (s *Service) UpdateByID(ctx context.Context, id int64, enc *Encounter) (*Encounter, error) {
	if err := validation.Validate(enc); err != nil {
		return nil, err
	}
	if enc.ID != id {
		return nil, apperr.BadRequest(apperr.MsgIDMismatch)
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !exists {
		return nil, apperr.NotFound(MsgNotFound)
	}
	saved, err := s.repo.Save(ctx, enc)
	if err != nil {
		return nil, storeErr(err)
	}
	return saved, nil
}

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
