package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patientsvc/internal/platform/db"
	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, ssn, email, city, street, state, postal,
	age, height, weight, insurance, gender`

func (r *repoPG) FindByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

func (r *repoPG) FindAll(ctx context.Context) ([]*Patient, error) {
	return r.FindByExample(ctx, Example{})
}

func (r *repoPG) FindByExample(ctx context.Context, ex Example) ([]*Patient, error) {
	q := store.NewExampleQuery("patient", patientCols, store.Dollar)
	ex.apply(q)

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func (r *repoPG) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *repoPG) Save(ctx context.Context, p *Patient) (*Patient, error) {
	saved := p.Clone()
	args := []interface{}{
		saved.FirstName, saved.LastName, saved.SSN, saved.Email,
		saved.City, saved.Street, saved.State, saved.Postal,
		saved.Age, saved.Height, saved.Weight, saved.Insurance, saved.Gender,
	}

	var err error
	if saved.ID == 0 {
		err = r.conn(ctx).QueryRow(ctx, `
			INSERT INTO patient (
				first_name, last_name, ssn, email, city, street, state, postal,
				age, height, weight, insurance, gender
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id`, args...).Scan(&saved.ID)
	} else {
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO patient (
				id, first_name, last_name, ssn, email, city, street, state, postal,
				age, height, weight, insurance, gender
			) VALUES ($14,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				first_name=$1, last_name=$2, ssn=$3, email=$4, city=$5, street=$6,
				state=$7, postal=$8, age=$9, height=$10, weight=$11,
				insurance=$12, gender=$13`,
			append(args, saved.ID)...)
		if err == nil {
			err = db.SyncSequence(ctx, r.conn(ctx), "patient")
		}
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("save patient: %w", store.ErrDuplicateValue)
		}
		return nil, fmt.Errorf("save patient: %w", err)
	}
	return saved, nil
}

func (r *repoPG) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.SSN, &p.Email, &p.City, &p.Street, &p.State, &p.Postal,
		&p.Age, &p.Height, &p.Weight, &p.Insurance, &p.Gender,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
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
