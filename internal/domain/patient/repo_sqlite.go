package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoSQLite struct {
	db *sqlitedb.DB
}

func NewSQLiteRepo(db *sqlitedb.DB) Repository {
	return &repoSQLite{db: db}
}

func (r *repoSQLite) FindByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.db.Conn(ctx).QueryRowContext(ctx, `SELECT `+patientCols+` FROM patient WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

func (r *repoSQLite) FindAll(ctx context.Context) ([]*Patient, error) {
	return r.FindByExample(ctx, Example{})
}

func (r *repoSQLite) FindByExample(ctx context.Context, ex Example) ([]*Patient, error) {
	q := store.NewExampleQuery("patient", patientCols, store.Question)
	ex.apply(q)

	rows, err := r.db.Conn(ctx).QueryContext(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *repoSQLite) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

func (r *repoSQLite) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE email = ?)`, email).Scan(&exists)
	return exists, err
}

func (r *repoSQLite) Save(ctx context.Context, p *Patient) (*Patient, error) {
	saved := p.Clone()
	args := []interface{}{
		saved.FirstName, saved.LastName, saved.SSN, saved.Email,
		saved.City, saved.Street, saved.State, saved.Postal,
		saved.Age, saved.Height, saved.Weight, saved.Insurance, saved.Gender,
	}

	var err error
	if saved.ID == 0 {
		var res sql.Result
		res, err = r.db.Conn(ctx).ExecContext(ctx, `
			INSERT INTO patient (
				first_name, last_name, ssn, email, city, street, state, postal,
				age, height, weight, insurance, gender
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
		if err == nil {
			saved.ID, err = res.LastInsertId()
		}
	} else {
		_, err = r.db.Conn(ctx).ExecContext(ctx, `
			INSERT INTO patient (
				first_name, last_name, ssn, email, city, street, state, postal,
				age, height, weight, insurance, gender, id
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT (id) DO UPDATE SET
				first_name=excluded.first_name, last_name=excluded.last_name,
				ssn=excluded.ssn, email=excluded.email, city=excluded.city,
				street=excluded.street, state=excluded.state, postal=excluded.postal,
				age=excluded.age, height=excluded.height, weight=excluded.weight,
				insurance=excluded.insurance, gender=excluded.gender`,
			append(args, saved.ID)...)
	}
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return nil, fmt.Errorf("save patient: %w", store.ErrDuplicateValue)
		}
		return nil, fmt.Errorf("save patient: %w", err)
	}
	return saved, nil
}

func (r *repoSQLite) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM patient WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
